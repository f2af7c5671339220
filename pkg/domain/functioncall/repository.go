package functioncall

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=function_call_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, call *FunctionCall) error
	Update(ctx context.Context, call *FunctionCall) error
	GetByCallID(ctx context.Context, sessionID uuid.UUID, callID string) (*FunctionCall, error)
}
