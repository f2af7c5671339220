package ratelimit

import (
	"context"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=rate_limit_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Upsert(ctx context.Context, limit *RateLimit) error
	ListByClient(ctx context.Context, clientID string) ([]*RateLimit, error)
}
