package services

import (
	"sort"
	"strings"
	"time"

	"ordering/internal/core/domain/model/dms"
	"ordering/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

var (
	minAmountTolerance = decimal.RequireFromString("0.01")
	relAmountTolerance = decimal.RequireFromString("0.005")
)

// Candidate is an order that reconciliation may apply a document to, together
// with the DMS client code of its company.
type Candidate struct {
	Order      *order.Order
	ClientCode string
}

// Match pairs a document with the order it belongs to.
type Match struct {
	Document    dms.Document
	Order       *order.Order
	ByReference bool
}

// DocumentMatcher correlates DMS documents with orders. It is pure: the same
// inputs always give the same matches, whatever their order.
//
// Business rules:
//   - Documents are considered oldest first (date, then external reference)
//   - A document only matches orders of the same client code that are
//     Validated or in Preparation, carry no reference of that kind yet and
//     were created no later than the document day
//   - An order receives at most one document of each kind per run
//   - A document whose order reference equals the order's DMS reference
//     matches regardless of amount; otherwise the totals must agree within
//     max(0.01, 0.5%)
//   - Ties break on reference match, then smaller amount difference, then
//     smaller date distance, then older order, then order id
//
// Documents that match nothing are simply absent from the result.
type DocumentMatcher struct{}

func NewDocumentMatcher() DocumentMatcher {
	return DocumentMatcher{}
}

type scored struct {
	candidate   Candidate
	byReference bool
	amountDelta decimal.Decimal
	dateDelta   time.Duration
}

// Match returns the matches in document processing order.
func (m DocumentMatcher) Match(candidates []Candidate, documents []dms.Document) []Match {
	docs := make([]dms.Document, 0, len(documents))
	for _, d := range documents {
		if d.Validate() == nil {
			docs = append(docs, d)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.Before(docs[j].Date)
		}
		return docs[i].ExternalRef < docs[j].ExternalRef
	})

	byClient := make(map[string][]Candidate)
	for _, c := range candidates {
		if c.Order == nil || c.Order.Validate() != nil {
			continue
		}
		key := normalizeCode(c.ClientCode)
		byClient[key] = append(byClient[key], c)
	}

	used := make(map[string]bool)
	seenRefs := make(map[string]bool)
	matches := make([]Match, 0)

	for _, doc := range docs {
		if seenRefs[doc.ExternalRef] {
			continue
		}
		seenRefs[doc.ExternalRef] = true

		var best *scored
		for _, c := range byClient[normalizeCode(doc.ClientCode)] {
			if used[usedKey(c.Order, doc.Kind)] || !m.accepts(c.Order, doc) {
				continue
			}
			s, ok := score(c, doc)
			if !ok {
				continue
			}
			if best == nil || better(s, *best) {
				s := s
				best = &s
			}
		}
		if best == nil {
			continue
		}

		used[usedKey(best.candidate.Order, doc.Kind)] = true
		matches = append(matches, Match{
			Document:    doc,
			Order:       best.candidate.Order,
			ByReference: best.byReference,
		})
	}

	return matches
}

func (DocumentMatcher) accepts(o *order.Order, doc dms.Document) bool {
	if o.Status() != order.Validated && o.Status() != order.Preparation {
		return false
	}
	switch doc.Kind {
	case dms.DeliveryNote:
		if o.HasDeliveryNote() {
			return false
		}
	case dms.Invoice:
		if o.HasInvoice() {
			return false
		}
	default:
		return false
	}
	return !dayOf(o.CreatedAt()).After(doc.Day())
}

func score(c Candidate, doc dms.Document) (scored, bool) {
	ref := strings.TrimSpace(doc.OrderRef)
	byReference := ref != "" && strings.EqualFold(ref, c.Order.DMSRef())

	delta := c.Order.TotalHT().Sub(doc.TotalHT).Abs()
	tolerance := doc.TotalHT.Abs().Mul(relAmountTolerance)
	if tolerance.LessThan(minAmountTolerance) {
		tolerance = minAmountTolerance
	}
	if !byReference && delta.GreaterThan(tolerance) {
		return scored{}, false
	}

	dateDelta := doc.Date.Sub(c.Order.CreatedAt())
	if dateDelta < 0 {
		dateDelta = -dateDelta
	}

	return scored{
		candidate:   c,
		byReference: byReference,
		amountDelta: delta,
		dateDelta:   dateDelta,
	}, true
}

func better(a, b scored) bool {
	if a.byReference != b.byReference {
		return a.byReference
	}
	if cmp := a.amountDelta.Cmp(b.amountDelta); cmp != 0 {
		return cmp < 0
	}
	if a.dateDelta != b.dateDelta {
		return a.dateDelta < b.dateDelta
	}
	ac, bc := a.candidate.Order.CreatedAt(), b.candidate.Order.CreatedAt()
	if !ac.Equal(bc) {
		return ac.Before(bc)
	}
	return a.candidate.Order.ID().String() < b.candidate.Order.ID().String()
}

func usedKey(o *order.Order, kind dms.Kind) string {
	return o.ID().String() + "/" + string(kind)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
