package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrFunctionCallNotFound = errors.New("function call not found")

type FunctionCallRepository struct {
	db *gorm.DB
}

func NewFunctionCallRepository(db *gorm.DB) functioncall.Repository {
	return &FunctionCallRepository{
		db: db,
	}
}

func (r *FunctionCallRepository) Save(ctx context.Context, call *functioncall.FunctionCall) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *FunctionCallRepository) Update(ctx context.Context, call *functioncall.FunctionCall) error {
	return r.db.WithContext(ctx).Save(call).Error
}

func (r *FunctionCallRepository) GetByCallID(
	ctx context.Context,
	sessionID uuid.UUID,
	callID string,
) (*functioncall.FunctionCall, error) {
	var entity functioncall.FunctionCall
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND call_id = ?", sessionID, callID).
		Order("created_at DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFunctionCallNotFound, callID)
		}
		return nil, err
	}
	return &entity, nil
}
