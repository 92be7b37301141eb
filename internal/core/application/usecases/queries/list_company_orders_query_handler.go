package queries

import (
	"context"
	"database/sql"
	"errors"

	"ordering/internal/pkg/errs"

	"gorm.io/gorm"
)

type ListCompanyOrdersQueryHandler struct {
	db    *gorm.DB
	locks LockInspector
}

func NewListCompanyOrdersQueryHandler(db *gorm.DB, locks LockInspector) ListCompanyOrdersQueryHandler {
	return ListCompanyOrdersQueryHandler{db: db, locks: locks}
}

// Handle returns the company's orders sorted by creation time, newest first.
// A caller outside the company is refused.
func (h ListCompanyOrdersQueryHandler) Handle(ctx context.Context, query ListCompanyOrdersQuery) ([]OrderSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !query.Caller().CanSee(query.CompanyID()) {
		return nil, errs.NewForbiddenError("list orders", query.Caller().ID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`SELECT`+summaryColumns+`
		FROM orders
		WHERE company_id = ?
		  AND (? = 0 OR status = ?)
		ORDER BY created_at DESC, id
	`, query.CompanyID().Bytes(), int(query.Status()), int(query.Status())).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderSummary, 0)
	for rows.Next() {
		var row summaryRow
		if err = rows.Scan(row.targets()...); err != nil {
			return nil, err
		}

		summary, convErr := row.toSummary(h.locks)
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
