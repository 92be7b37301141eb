// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and the orders and order_items tables.
package orderrepo

import (
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// total_ht is denormalized from the lines so list queries need no join.
// The editing_* columns belong to the edit lock projection and are written
// only by GormEditingProjector.
type OrderDTO struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID         uuid.UUID       `gorm:"column:company_id;type:uuid"`
	DMSRef            string          `gorm:"column:dms_ref"`
	Status            int             `gorm:"column:status;type:smallint"`
	TotalHT           decimal.Decimal `gorm:"column:total_ht;type:numeric(14,2)"`
	BLNumber          *string         `gorm:"column:bl_number"`
	InvoiceNumber     *string         `gorm:"column:invoice_number"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	LastModifiedAt    time.Time       `gorm:"column:last_modified_at"`
	Version           int64           `gorm:"column:version"`
	IsEditing         bool            `gorm:"column:is_editing"`
	EditingByUserID   *uuid.UUID      `gorm:"column:editing_by_user_id;type:uuid"`
	EditingByUserName *string         `gorm:"column:editing_by_user_name"`
	EditingStartedAt  *time.Time      `gorm:"column:editing_started_at"`

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one line of an order. Position keeps the line order stable.
type OrderItemDTO struct {
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;primaryKey"`
	Position     int                 `gorm:"column:position;primaryKey"`
	ProductRef   string              `gorm:"column:product_ref"`
	Designation  string              `gorm:"column:designation"`
	Quantity     int                 `gorm:"column:quantity"`
	UnitPrice    decimal.Decimal     `gorm:"column:unit_price;type:numeric(14,4)"`
	TVARate      decimal.NullDecimal `gorm:"column:tva_rate;type:numeric(5,2)"`
	Availability string              `gorm:"column:availability"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order aggregate to its database representation.
// The editing projection is not part of the aggregate's own state and is
// left to the projector.
func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:             o.ID().Bytes(),
		CompanyID:      o.CompanyID().Bytes(),
		DMSRef:         o.DMSRef(),
		Status:         int(o.Status()),
		TotalHT:        o.TotalHT(),
		BLNumber:       o.BLNumber(),
		InvoiceNumber:  o.InvoiceNumber(),
		CreatedAt:      o.CreatedAt(),
		LastModifiedAt: o.LastModifiedAt(),
		Version:        o.Version(),
		Items:          itemsFromDomain(o.ID(), o.Items()),
	}
}

func itemsFromDomain(orderID kernel.UUID, items []order.Item) []OrderItemDTO {
	dtos := make([]OrderItemDTO, 0, len(items))
	for i, item := range items {
		dto := OrderItemDTO{
			OrderID:      orderID.Bytes(),
			Position:     i,
			ProductRef:   item.ProductRef(),
			Designation:  item.Designation(),
			Quantity:     item.Quantity(),
			UnitPrice:    item.UnitPrice(),
			Availability: string(item.Availability()),
		}
		if rate := item.TVARate(); rate != nil {
			dto.TVARate = decimal.NewNullDecimal(*rate)
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

// toDomain converts a database DTO, with its Items loaded, to an order aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	companyID, err := kernel.UUIDFromBytes(dto.CompanyID[:])
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		var rate *decimal.Decimal
		if itemDTO.TVARate.Valid {
			r := itemDTO.TVARate.Decimal
			rate = &r
		}
		availability, availErr := order.ParseAvailability(itemDTO.Availability)
		if availErr != nil {
			return nil, availErr
		}
		item, itemErr := order.NewItem(itemDTO.ProductRef, itemDTO.Designation, itemDTO.Quantity,
			itemDTO.UnitPrice, rate, availability)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	editing, err := editingFromDTO(dto)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:             id,
		CompanyID:      companyID,
		DMSRef:         dto.DMSRef,
		Items:          items,
		Status:         order.Status(dto.Status),
		BLNumber:       dto.BLNumber,
		InvoiceNumber:  dto.InvoiceNumber,
		CreatedAt:      dto.CreatedAt.UTC(),
		LastModifiedAt: dto.LastModifiedAt.UTC(),
		Version:        dto.Version,
		Editing:        editing,
	})
}

func editingFromDTO(dto OrderDTO) (order.EditingState, error) {
	if !dto.IsEditing || dto.EditingByUserID == nil {
		return order.EditingState{}, nil
	}

	userID, err := kernel.UUIDFromBytes(dto.EditingByUserID[:])
	if err != nil {
		return order.EditingState{}, err
	}

	state := order.EditingState{UserID: &userID}
	if dto.EditingByUserName != nil {
		state.UserName = *dto.EditingByUserName
	}
	if dto.EditingStartedAt != nil {
		started := dto.EditingStartedAt.UTC()
		state.StartedAt = &started
	}
	return state, nil
}

// editingColumns maps an editing state onto the projection columns.
func editingColumns(state order.EditingState) map[string]any {
	if !state.IsEditing() {
		return map[string]any{
			"is_editing":           false,
			"editing_by_user_id":   nil,
			"editing_by_user_name": nil,
			"editing_started_at":   nil,
		}
	}

	columns := map[string]any{
		"is_editing":           true,
		"editing_by_user_id":   state.UserID.Bytes(),
		"editing_by_user_name": state.UserName,
		"editing_started_at":   nil,
	}
	if state.StartedAt != nil {
		columns["editing_started_at"] = *state.StartedAt
	}
	return columns
}
