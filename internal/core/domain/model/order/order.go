package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderIsNotEditable is returned when content changes are attempted
	// outside of Pending. It classifies as an invalid transition.
	ErrOrderIsNotEditable = fmt.Errorf("%w: order content can only change while pending", errs.ErrInvalidTransition)
)

// EditingState is the persisted projection of the edit lock held on an order.
// The live lock lives in the edit lock coordinator; this copy exists so list
// views can show who is editing without asking it.
type EditingState struct {
	UserID    *kernel.UUID
	UserName  string
	StartedAt *time.Time
}

// IsEditing reports whether someone holds the edit lock.
func (e EditingState) IsEditing() bool {
	return e.UserID != nil
}

// Order is the aggregate root of a customer order. It owns its lines and
// its position in the lifecycle state machine.
//
// Order follows these invariants:
//   - Must have a valid identifier and owning company
//   - Has at least one line
//   - Status only changes along an edge of the state machine
//   - Content only changes while Pending
//   - A delivery note and an invoice reference, once attached, never change
//
// Every mutation moves lastModifiedAt forward, which is what the validation
// cooldown is measured against.
type Order struct {
	id             kernel.UUID
	companyID      kernel.UUID
	dmsRef         string
	items          []Item
	status         Status
	blNumber       *string
	invoiceNumber  *string
	createdAt      time.Time
	lastModifiedAt time.Time
	version        int64
	editing        EditingState

	isConstructed bool
}

// NewOrder creates a Pending order.
//
// Parameters:
//   - id: order identifier
//   - companyID: the owning client company
//   - dmsRef: customer reference printed on DMS documents, may be empty
//   - items: at least one line
//   - now: creation instant, also the first lastModifiedAt
//
// Example:
//
//	item, _ := order.NewItem("P-1", "Brake pad", 2, decimal.RequireFromString("12.50"), nil, order.Available)
//	o, err := order.NewOrder(kernel.NewUUID(), companyID, "CMD-0042", []order.Item{item}, clock.Now())
func NewOrder(id, companyID kernel.UUID, dmsRef string, items []Item, now time.Time) (*Order, error) {
	o := &Order{
		status:         Pending,
		dmsRef:         strings.TrimSpace(dmsRef),
		createdAt:      now,
		lastModifiedAt: now,
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCompanyID(companyID),
		o.setItems(items),
		validateInstant("createdAt", now),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot carries the persisted state of an order into RestoreOrder.
type Snapshot struct {
	ID             kernel.UUID
	CompanyID      kernel.UUID
	DMSRef         string
	Items          []Item
	Status         Status
	BLNumber       *string
	InvoiceNumber  *string
	CreatedAt      time.Time
	LastModifiedAt time.Time
	Version        int64
	Editing        EditingState
}

// RestoreOrder rebuilds an order from storage. Field values are validated but
// no lifecycle rule is replayed.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		dmsRef:         s.DMSRef,
		createdAt:      s.CreatedAt,
		lastModifiedAt: s.LastModifiedAt,
		version:        s.Version,
		editing:        s.Editing,
		blNumber:       copyString(s.BLNumber),
		invoiceNumber:  copyString(s.InvoiceNumber),
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setCompanyID(s.CompanyID),
		o.setItems(s.Items),
		s.Status.Validate(),
		validateInstant("createdAt", s.CreatedAt),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID           { return o.id }
func (o *Order) CompanyID() kernel.UUID    { return o.companyID }
func (o *Order) DMSRef() string            { return o.dmsRef }
func (o *Order) Status() Status            { return o.status }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) LastModifiedAt() time.Time { return o.lastModifiedAt }
func (o *Order) BLNumber() *string         { return copyString(o.blNumber) }
func (o *Order) InvoiceNumber() *string    { return copyString(o.invoiceNumber) }
func (o *Order) Editing() EditingState     { return o.editing }
func (o *Order) HasDeliveryNote() bool     { return o.blNumber != nil }
func (o *Order) HasInvoice() bool          { return o.invoiceNumber != nil }

// Version is the optimistic concurrency token read from storage. Repositories
// compare it on update and report the stored value back through MarkStored.
func (o *Order) Version() int64 {
	return o.version
}

// MarkStored records the version a repository has just written.
func (o *Order) MarkStored(version int64) {
	o.version = version
}

// Snapshot returns the full state of the order, the inverse of RestoreOrder.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:             o.id,
		CompanyID:      o.companyID,
		DMSRef:         o.dmsRef,
		Items:          o.Items(),
		Status:         o.status,
		BLNumber:       copyString(o.blNumber),
		InvoiceNumber:  copyString(o.invoiceNumber),
		CreatedAt:      o.createdAt,
		LastModifiedAt: o.lastModifiedAt,
		Version:        o.version,
		Editing:        o.editing,
	}
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// TotalHT is the sum of line totals excluding VAT.
func (o *Order) TotalHT() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalHT())
	}
	return total
}

// TotalTVA is the sum of line VAT amounts.
func (o *Order) TotalTVA() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalTVA())
	}
	return total
}

// TotalTTC is TotalHT plus TotalTVA.
func (o *Order) TotalTTC() decimal.Decimal {
	return o.TotalHT().Add(o.TotalTVA())
}

// CooldownRemaining returns how long until cooldown has elapsed since the last
// modification. Zero once elapsed.
func (o *Order) CooldownRemaining(now time.Time, cooldown time.Duration) time.Duration {
	remaining := o.lastModifiedAt.Add(cooldown).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TransitionTo moves the order along a single edge of the state machine.
// Capability and timing rules are enforced by the caller; this only refuses
// edges that do not exist.
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if err := o.status.ValidateTransition(target); err != nil {
		return err
	}
	o.status = target
	o.touch(now)
	return nil
}

// AdvanceTo walks forward edge by edge until target is reached and returns
// the statuses passed through, target included. Used by reconciliation, which
// may learn about a delivery note or invoice before intermediate steps were
// recorded manually.
func (o *Order) AdvanceTo(target Status, now time.Time) ([]Status, error) {
	path, err := o.status.PathTo(target)
	if err != nil {
		return nil, err
	}
	for _, next := range path {
		if err := o.TransitionTo(next, now); err != nil {
			return nil, err
		}
	}
	return path, nil
}

// AttachDeliveryNote records the DMS delivery note number. Attaching the same
// number twice is a no-op; a different number is rejected.
func (o *Order) AttachDeliveryNote(ref string, now time.Time) error {
	updated, err := attachRef("blNumber", o.blNumber, ref)
	if err != nil {
		return err
	}
	if updated != nil {
		o.blNumber = updated
		o.touch(now)
	}
	return nil
}

// AttachInvoice records the DMS invoice number with the same rules as
// AttachDeliveryNote.
func (o *Order) AttachInvoice(ref string, now time.Time) error {
	updated, err := attachRef("invoiceNumber", o.invoiceNumber, ref)
	if err != nil {
		return err
	}
	if updated != nil {
		o.invoiceNumber = updated
		o.touch(now)
	}
	return nil
}

// ReplaceItems swaps all lines. Only allowed while Pending; totals follow
// from the new lines and the validation cooldown restarts.
func (o *Order) ReplaceItems(items []Item, now time.Time) error {
	if o.status != Pending {
		return fmt.Errorf("%w (status is %s)", ErrOrderIsNotEditable, o.status)
	}
	if err := o.setItems(items); err != nil {
		return err
	}
	o.touch(now)
	return nil
}

// ProjectEditing overlays the live edit lock state. It does not count as a
// modification.
func (o *Order) ProjectEditing(state EditingState) {
	o.editing = state
}

func (o *Order) touch(now time.Time) {
	if now.After(o.lastModifiedAt) {
		o.lastModifiedAt = now
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCompanyID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("companyID", err)
	}
	o.companyID = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func validateInstant(name string, t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

func attachRef(name string, current *string, ref string) (*string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errs.NewValueIsRequiredError(name)
	}
	if current != nil {
		if *current == ref {
			return nil, nil
		}
		return nil, errs.NewValueIsInvalidErrorWithCause(name,
			fmt.Errorf("already set to %s, refusing %s", *current, ref))
	}
	return &ref, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
