package orderrepo

import (
	"context"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormEditingProjector writes the edit lock projection columns of orders.
// It never touches version or lastModifiedAt: editing is not a modification.
type GormEditingProjector struct {
	db *gorm.DB
}

func NewGormEditingProjector(db *gorm.DB) *GormEditingProjector {
	return &GormEditingProjector{db: db}
}

func (p *GormEditingProjector) ProjectEditing(ctx context.Context, orderID kernel.UUID, state order.EditingState) error {
	result := p.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", orderID.Bytes()).
		Updates(editingColumns(state))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", orderID.String())
	}
	return nil
}

func (p *GormEditingProjector) ResetAll(ctx context.Context) error {
	return p.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("is_editing = ?", true).
		Updates(editingColumns(order.EditingState{})).Error
}
