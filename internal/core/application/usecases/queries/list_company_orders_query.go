package queries

import (
	"errors"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/guard"
)

var ErrListCompanyOrdersQueryIsNotConstructed = errors.New(
	"ListCompanyOrdersQuery must be created via NewListCompanyOrdersQuery constructor",
)

// ListCompanyOrdersQuery lists the orders of one company, newest first,
// optionally restricted to one status. Each row carries the live editing
// badge.
type ListCompanyOrdersQuery struct { //nolint:recvcheck //using for validation
	companyID kernel.UUID
	status    order.Status
	caller    actor.Actor

	guard guard.ConstructorGuard
}

// NewListCompanyOrdersQuery builds the query. status order.Unknown means
// every status.
func NewListCompanyOrdersQuery(companyID kernel.UUID, status order.Status, caller actor.Actor) (ListCompanyOrdersQuery, error) {
	q := ListCompanyOrdersQuery{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		q.setCompanyID(companyID),
		q.setStatus(status),
		q.setCaller(caller),
	); err != nil {
		return ListCompanyOrdersQuery{}, err
	}

	return q, nil
}

func (q ListCompanyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListCompanyOrdersQueryIsNotConstructed)
}

func (q ListCompanyOrdersQuery) CompanyID() kernel.UUID { return q.companyID }
func (q ListCompanyOrdersQuery) Status() order.Status   { return q.status }
func (q ListCompanyOrdersQuery) Caller() actor.Actor    { return q.caller }

func (q *ListCompanyOrdersQuery) setCompanyID(companyID kernel.UUID) error {
	if err := companyID.Validate(); err != nil {
		return err
	}
	q.companyID = companyID
	return nil
}

func (q *ListCompanyOrdersQuery) setStatus(status order.Status) error {
	if status != order.Unknown {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	q.status = status
	return nil
}

func (q *ListCompanyOrdersQuery) setCaller(caller actor.Actor) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	q.caller = caller
	return nil
}
