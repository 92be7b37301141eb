package ports

import (
	"context"
	"time"

	"ordering/internal/core/domain/model/dms"
)

// DMSClient reads documents from the external document management system.
// It never writes to it.
type DMSClient interface {
	// FetchDocuments returns the delivery notes and invoices issued for the
	// given client codes on or after since. Implementations bound the call
	// with their own timeout and report failures as errs.ErrExternalUnavailable.
	FetchDocuments(ctx context.Context, clientCodes []string, since time.Time) ([]dms.Document, error)
}

// DMSRepository stores the company to client code mappings and the record
// of documents already applied to orders.
type DMSRepository interface {
	// ActiveMappings returns the mappings of companies taking part in reconciliation.
	ActiveMappings(ctx context.Context) ([]dms.Mapping, error)

	// MatchedRefs returns the subset of externalRefs already applied to an order.
	MatchedRefs(ctx context.Context, externalRefs []string) (map[string]bool, error)

	// RecordMatch stores that a document was applied. It fails with
	// dms.ErrDocumentAlreadyMatched when the externalRef was applied before.
	RecordMatch(ctx context.Context, record dms.MatchRecord) error
}
