package queries

import (
	"context"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads an order with its lines. An order the caller
// may not see is reported as not found.
type GetOrderQueryHandler struct {
	db       *gorm.DB
	locks    LockInspector
	clock    kernel.Clock
	cooldown time.Duration
}

func NewGetOrderQueryHandler(db *gorm.DB, locks LockInspector, clock kernel.Clock, cooldown time.Duration) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db, locks: locks, clock: clock, cooldown: cooldown}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	db := h.db.WithContext(ctx)

	var row summaryRow
	err := db.Raw(`SELECT`+summaryColumns+`
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row().Scan(row.targets()...)
	if err != nil {
		if isNoRows(err) {
			return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return OrderView{}, err
	}

	summary, err := row.toSummary(h.locks)
	if err != nil {
		return OrderView{}, err
	}
	if !query.Caller().CanSee(summary.CompanyID) {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	items, totalTVA, err := h.items(db, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}

	view := OrderView{
		OrderSummary: summary,
		Items:        items,
		TotalTVA:     totalTVA,
		TotalTTC:     summary.TotalHT.Add(totalTVA),
	}
	if summary.Status == order.Pending {
		remaining := summary.LastModifiedAt.Add(h.cooldown).Sub(h.clock.Now())
		if remaining > 0 {
			view.CooldownRemaining = remaining
		}
	}

	return view, nil
}

func (h GetOrderQueryHandler) items(db *gorm.DB, orderID kernel.UUID) ([]OrderItemView, decimal.Decimal, error) {
	rows, err := db.Raw(`
		SELECT
			product_ref,
			designation,
			quantity,
			unit_price,
			tva_rate,
			availability
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer rows.Close()

	items := make([]OrderItemView, 0)
	totalTVA := decimal.Zero
	for rows.Next() {
		var (
			productRef, designation, availability string
			quantity                              int
			unitPrice                             decimal.Decimal
			tvaRate                               decimal.NullDecimal
		)
		if err = rows.Scan(&productRef, &designation, &quantity, &unitPrice, &tvaRate, &availability); err != nil {
			return nil, decimal.Zero, err
		}

		var rate *decimal.Decimal
		if tvaRate.Valid {
			rate = &tvaRate.Decimal
		}
		parsed, parseErr := order.ParseAvailability(availability)
		if parseErr != nil {
			return nil, decimal.Zero, parseErr
		}
		item, itemErr := order.NewItem(productRef, designation, quantity, unitPrice, rate, parsed)
		if itemErr != nil {
			return nil, decimal.Zero, itemErr
		}

		totalTVA = totalTVA.Add(item.TotalTVA())
		items = append(items, OrderItemView{
			ProductRef:   item.ProductRef(),
			Designation:  item.Designation(),
			Quantity:     item.Quantity(),
			UnitPrice:    item.UnitPrice(),
			TVARate:      item.TVARate(),
			Availability: item.Availability(),
			TotalHT:      item.TotalHT(),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, decimal.Zero, err
	}

	return items, totalTVA, nil
}
