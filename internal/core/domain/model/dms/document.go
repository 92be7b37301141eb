// Package dms models documents read from the external document management
// system: delivery notes (BL) and invoices. The DMS is the source of truth
// for them; this service only reads.
package dms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Kind is the type of an external document.
type Kind string

const (
	DeliveryNote Kind = "BL"
	Invoice      Kind = "INVOICE"
)

// ParseKind accepts the DMS codes. "FA" and "FACTURE" are read as Invoice.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BL":
		return DeliveryNote, nil
	case "INVOICE", "FA", "FACTURE":
		return Invoice, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not a document kind", s))
	}
}

func (k Kind) String() string { return string(k) }

// Document is a BL or invoice issued for a client code.
type Document struct {
	Kind        Kind
	ExternalRef string
	ClientCode  string
	Date        time.Time
	TotalHT     decimal.Decimal

	// OrderRef is the customer order reference printed on the document,
	// empty when the DMS did not record one.
	OrderRef string
}

// Validate checks the fields reconciliation relies on.
func (d Document) Validate() error {
	var problems []error
	if d.Kind != DeliveryNote && d.Kind != Invoice {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not a document kind", d.Kind)))
	}
	if strings.TrimSpace(d.ExternalRef) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("externalRef"))
	}
	if strings.TrimSpace(d.ClientCode) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("clientCode"))
	}
	if d.Date.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("date"))
	}
	return errors.Join(problems...)
}

// Day returns the calendar day of the document in UTC.
func (d Document) Day() time.Time {
	y, m, day := d.Date.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Mapping links a client company of this service to its client code in the DMS.
type Mapping struct {
	CompanyID  kernel.UUID
	ClientCode string
	Active     bool
}

// MatchRecord remembers that a document was applied to an order. A document
// is applied at most once, ever.
type MatchRecord struct {
	ExternalRef string
	Kind        Kind
	OrderID     kernel.UUID
	MatchedAt   time.Time
}

// ErrDocumentAlreadyMatched is returned when recording a match for an
// externalRef that was applied before.
var ErrDocumentAlreadyMatched = errors.New("document already matched")
