package orderrepo

import (
	"context"
	"errors"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository. db is either
// the plain connection or the transaction of a unit of work.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order and its lines.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	items := dto.Items
	dto.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}

	aggregate.MarkStored(dto.Version)
	return nil
}

// Update saves status, references, lines and lastModifiedAt if nobody wrote
// the order since it was read. The editing projection is left untouched.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	next := dto.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&OrderDTO{}).
			Where("id = ? AND version = ?", dto.ID, dto.Version).
			Updates(map[string]any{
				"status":           dto.Status,
				"total_ht":         dto.TotalHT,
				"bl_number":        dto.BLNumber,
				"invoice_number":   dto.InvoiceNumber,
				"last_modified_at": dto.LastModifiedAt,
				"version":          next,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, aggregate)
		}

		if err := tx.Where("order_id = ?", dto.ID).Delete(&OrderItemDTO{}).Error; err != nil {
			return err
		}
		if len(dto.Items) == 0 {
			return nil
		}
		return tx.Create(&dto.Items).Error
	})
	if err != nil {
		return err
	}

	aggregate.MarkStored(next)
	return nil
}

func (r *GormOrderRepository) missingOrStale(tx *gorm.DB, aggregate *order.Order) error {
	var count int64
	if err := tx.Model(&OrderDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return errs.NewVersionIsInvalidError("order", aggregate.Version())
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an order and locks its row until the surrounding
// transaction ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) get(db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	if err := r.loadItems(db.Session(&gorm.Session{NewDB: true}), []*OrderDTO{&dto}); err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// ListReconcilable retrieves the Validated and Preparation orders of the
// given companies, oldest first.
func (r *GormOrderRepository) ListReconcilable(ctx context.Context, companyIDs []kernel.UUID) ([]*order.Order, error) {
	if len(companyIDs) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]uuid.UUID, 0, len(companyIDs))
	for _, id := range companyIDs {
		ids = append(ids, id.Bytes())
	}

	db := r.db.WithContext(ctx)

	var dtos []OrderDTO
	if err := db.
		Where("company_id IN ? AND status IN ?", ids, []int{int(order.Validated), int(order.Preparation)}).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	refs := make([]*OrderDTO, 0, len(dtos))
	for i := range dtos {
		refs = append(refs, &dtos[i])
	}
	if err := r.loadItems(db, refs); err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) loadItems(db *gorm.DB, dtos []*OrderDTO) error {
	if len(dtos) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(dtos))
	byID := make(map[uuid.UUID]*OrderDTO, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
		byID[dto.ID] = dto
		dto.Items = nil
	}

	var items []OrderItemDTO
	if err := db.Where("order_id IN ?", ids).Order("order_id, position").Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if dto, ok := byID[item.OrderID]; ok {
			dto.Items = append(dto.Items, item)
		}
	}
	return nil
}
