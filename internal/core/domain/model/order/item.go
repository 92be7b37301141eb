package order

import (
	"errors"
	"fmt"
	"strings"

	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Availability is the stock state of an order line at the time it was written.
type Availability string

const (
	Available  Availability = "DISPONIBLE"
	OutOfStock Availability = "RUPTURE"
)

// ParseAvailability accepts the persisted names. An empty string means Available.
func ParseAvailability(s string) (Availability, error) {
	switch Availability(strings.ToUpper(strings.TrimSpace(s))) {
	case "", Available:
		return Available, nil
	case OutOfStock:
		return OutOfStock, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("availability", fmt.Errorf("%q is not a valid availability", s))
	}
}

var (
	maxTVARate = decimal.NewFromInt(100)
	hundred    = decimal.NewFromInt(100)
)

// Item is an order line. It is a value object; replace it instead of mutating.
type Item struct {
	productRef   string
	designation  string
	quantity     int
	unitPrice    decimal.Decimal
	tvaRate      *decimal.Decimal
	availability Availability
}

// NewItem validates and builds an order line.
//
// Rules:
//   - productRef is required
//   - quantity must be greater than 0
//   - unitPrice must not be negative
//   - tvaRate, when present, is a percentage in [0, 100]
func NewItem(
	productRef, designation string,
	quantity int,
	unitPrice decimal.Decimal,
	tvaRate *decimal.Decimal,
	availability Availability,
) (Item, error) {
	if availability == "" {
		availability = Available
	}

	var problems []error
	if strings.TrimSpace(productRef) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("productRef"))
	}
	if quantity <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not greater than 0", quantity)))
	}
	if unitPrice.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"unitPrice", fmt.Errorf("%s is negative", unitPrice)))
	}
	if tvaRate != nil && (tvaRate.IsNegative() || tvaRate.GreaterThan(maxTVARate)) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("tvaRate", tvaRate.String(), 0, 100))
	}
	if availability != Available && availability != OutOfStock {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"availability", fmt.Errorf("%q is not a valid availability", availability)))
	}
	if err := errors.Join(problems...); err != nil {
		return Item{}, err
	}

	var rate *decimal.Decimal
	if tvaRate != nil {
		r := *tvaRate
		rate = &r
	}

	return Item{
		productRef:   strings.TrimSpace(productRef),
		designation:  designation,
		quantity:     quantity,
		unitPrice:    unitPrice,
		tvaRate:      rate,
		availability: availability,
	}, nil
}

func (i Item) ProductRef() string         { return i.productRef }
func (i Item) Designation() string        { return i.designation }
func (i Item) Quantity() int              { return i.quantity }
func (i Item) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i Item) Availability() Availability { return i.availability }

// TVARate returns a copy of the VAT percentage, nil when the line carries none.
func (i Item) TVARate() *decimal.Decimal {
	if i.tvaRate == nil {
		return nil
	}
	r := *i.tvaRate
	return &r
}

// TotalHT is quantity * unitPrice, excluding VAT.
func (i Item) TotalHT() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// TotalTVA is the VAT amount of the line rounded to cents. Zero without a rate.
func (i Item) TotalTVA() decimal.Decimal {
	if i.tvaRate == nil {
		return decimal.Zero
	}
	return i.TotalHT().Mul(*i.tvaRate).Div(hundred).Round(2)
}
