// Package realtime is the in-process connection registry behind the live
// order views. It fans events out to connected clients by user, by order and
// by company. Delivery is best effort and at most once per connected client.
package realtime

import (
	"time"

	"ordering/internal/core/ports"

	"github.com/shopspring/decimal"
)

const (
	EventOrderUpdated              = "orderUpdated"
	EventOrderEditingStatusChanged = "orderEditingStatusChanged"
)

// Event is the envelope written to a connection.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type OrderUpdatedPayload struct {
	OrderID        string          `json:"orderId"`
	Status         string          `json:"status"`
	TotalHT        decimal.Decimal `json:"totalHt"`
	LastModifiedAt time.Time       `json:"lastModifiedAt"`
	BLNumber       *string         `json:"blNumber"`
	InvoiceNumber  *string         `json:"invoiceNumber"`
}

type EditingStatusChangedPayload struct {
	OrderID           string     `json:"orderId"`
	IsEditing         bool       `json:"isEditing"`
	EditingByUserID   *string    `json:"editingByUserId"`
	EditingByUserName *string    `json:"editingByUserName"`
	EditingStartedAt  *time.Time `json:"editingStartedAt"`
}

func orderUpdated(e ports.OrderUpdatedEvent) Event {
	return Event{
		Type: EventOrderUpdated,
		Payload: OrderUpdatedPayload{
			OrderID:        e.OrderID.String(),
			Status:         e.Status,
			TotalHT:        e.TotalHT,
			LastModifiedAt: e.LastModifiedAt,
			BLNumber:       e.BLNumber,
			InvoiceNumber:  e.InvoiceNumber,
		},
	}
}

func editingStatusChanged(e ports.EditingStatusChangedEvent) Event {
	payload := EditingStatusChangedPayload{
		OrderID:   e.OrderID.String(),
		IsEditing: e.IsEditing,
	}
	if e.IsEditing {
		if e.UserID != nil {
			id := e.UserID.String()
			payload.EditingByUserID = &id
		}
		name := e.UserName
		payload.EditingByUserName = &name
		payload.EditingStartedAt = e.StartedAt
	}
	return Event{Type: EventOrderEditingStatusChanged, Payload: payload}
}
