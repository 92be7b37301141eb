package http

import (
	"errors"
	"math"
	"time"

	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	RemainingSeconds  *int   `json:"remainingSeconds,omitempty"`
	EditingByUserName string `json:"editingByUserName,omitempty"`
	HolderName        string `json:"holderName,omitempty"`
}

type Item struct {
	ProductRef   string           `json:"productRef"`
	Designation  string           `json:"designation"`
	Quantity     int              `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unitPrice" swaggertype:"string" example:"12.50"`
	TVARate      *decimal.Decimal `json:"tvaRate" swaggertype:"string" example:"20"`
	Availability string           `json:"availability"`
}

type NewOrder struct {
	CompanyID kernel.UUID `json:"companyId" swaggertype:"string" format:"uuid"`
	DMSRef    string      `json:"dmsRef"`
	Items     []Item      `json:"items"`
}

type OrderItems struct {
	Items []Item `json:"items"`
}

type StatusChange struct {
	Status string `json:"status"`
}

type EditingChange struct {
	IsEditing *bool `json:"isEditing"`
}

// Editing is the flat editing badge shown with every order.
type Editing struct {
	IsEditing         bool       `json:"isEditing"`
	EditingByUserID   *string    `json:"editingByUserId"`
	EditingByUserName *string    `json:"editingByUserName"`
	EditingStartedAt  *time.Time `json:"editingStartedAt"`
}

type OrderSummary struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"companyId"`
	DMSRef         string          `json:"dmsRef"`
	Status         string          `json:"status"`
	TotalHT        decimal.Decimal `json:"totalHt" swaggertype:"string"`
	BLNumber       *string         `json:"blNumber"`
	InvoiceNumber  *string         `json:"invoiceNumber"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastModifiedAt time.Time       `json:"lastModifiedAt"`
	Editing
}

type OrderLine struct {
	Item
	TotalHT decimal.Decimal `json:"totalHt" swaggertype:"string"`
}

type Order struct {
	OrderSummary
	Items    []OrderLine     `json:"items"`
	TotalTVA decimal.Decimal `json:"totalTva" swaggertype:"string"`
	TotalTTC decimal.Decimal `json:"totalTtc" swaggertype:"string"`

	CooldownRemainingSeconds int `json:"cooldownRemainingSeconds"`
}

func (i Item) toDomain() (order.Item, error) {
	availability, err := order.ParseAvailability(i.Availability)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(i.ProductRef, i.Designation, i.Quantity, i.UnitPrice, i.TVARate, availability)
}

func itemsToDomain(items []Item) ([]order.Item, error) {
	result := make([]order.Item, 0, len(items))
	problems := make([]error, 0)
	for _, item := range items {
		converted, err := item.toDomain()
		if err != nil {
			problems = append(problems, err)
			continue
		}
		result = append(result, converted)
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}
	return result, nil
}

func editingFromState(state order.EditingState) Editing {
	if !state.IsEditing() {
		return Editing{}
	}
	id := state.UserID.String()
	name := state.UserName
	return Editing{
		IsEditing:         true,
		EditingByUserID:   &id,
		EditingByUserName: &name,
		EditingStartedAt:  state.StartedAt,
	}
}

func summaryFromView(s queries.OrderSummary) OrderSummary {
	return OrderSummary{
		ID:             s.ID.String(),
		CompanyID:      s.CompanyID.String(),
		DMSRef:         s.DMSRef,
		Status:         s.Status.String(),
		TotalHT:        s.TotalHT,
		BLNumber:       s.BLNumber,
		InvoiceNumber:  s.InvoiceNumber,
		CreatedAt:      s.CreatedAt,
		LastModifiedAt: s.LastModifiedAt,
		Editing:        editingFromState(s.Editing),
	}
}

func orderFromView(v queries.OrderView) Order {
	lines := make([]OrderLine, 0, len(v.Items))
	for _, item := range v.Items {
		lines = append(lines, OrderLine{
			Item: Item{
				ProductRef:   item.ProductRef,
				Designation:  item.Designation,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
				TVARate:      item.TVARate,
				Availability: string(item.Availability),
			},
			TotalHT: item.TotalHT,
		})
	}

	return Order{
		OrderSummary:             summaryFromView(v.OrderSummary),
		Items:                    lines,
		TotalTVA:                 v.TotalTVA,
		TotalTTC:                 v.TotalTTC,
		CooldownRemainingSeconds: ceilSeconds(v.CooldownRemaining),
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
