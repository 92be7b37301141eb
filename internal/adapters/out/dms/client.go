// Package dms reads delivery notes and invoices from the SQL database of the
// external document management system. It never writes to it.
package dms

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ordering/internal/core/domain/model/dms"
	"ordering/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // registers the postgres driver
	"github.com/shopspring/decimal"
)

const (
	system = "dms"

	// DefaultTimeout bounds one FetchDocuments call.
	DefaultTimeout = 20 * time.Second

	// DefaultTable is the view exposing BL and invoice headers.
	DefaultTable = "dms_documents"
)

// Open connects to the DMS database. dsn is a lib/pq connection string.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open dms database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// SQLClient implements ports.DMSClient over database/sql.
type SQLClient struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSQLClient(db *sql.DB, table string, timeout time.Duration, logger *slog.Logger) *SQLClient {
	if table == "" {
		table = DefaultTable
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SQLClient{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		table:   table,
		timeout: timeout,
		logger:  logger.With("component", "dms_client"),
	}
}

// FetchDocuments returns the documents of clientCodes dated on or after
// since, ordered by date then externalRef. Rows the DMS holds in an unknown
// shape are logged and skipped.
func (c *SQLClient) FetchDocuments(ctx context.Context, clientCodes []string, since time.Time) ([]dms.Document, error) {
	if len(clientCodes) == 0 {
		return []dms.Document{}, nil
	}

	query, args, err := c.builder.
		Select("doc_type", "external_ref", "client_code", "doc_date", "total_ht", "order_ref").
		From(c.table).
		Where(sq.Eq{"client_code": clientCodes}).
		Where(sq.GtOrEq{"doc_date": since}).
		OrderBy("doc_date", "external_ref").
		ToSql()
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(callCtx, query, args...)
	if err != nil {
		return nil, c.failure(ctx, err)
	}
	defer rows.Close()

	documents := make([]dms.Document, 0)
	for rows.Next() {
		var (
			kind, ref, code string
			date            time.Time
			total           decimal.Decimal
			orderRef        sql.NullString
		)
		if err = rows.Scan(&kind, &ref, &code, &date, &total, &orderRef); err != nil {
			return nil, c.failure(ctx, err)
		}

		doc, convErr := toDocument(kind, ref, code, date, total, orderRef)
		if convErr != nil {
			c.logger.WarnContext(ctx, "Skipping malformed DMS document",
				"external_ref", ref,
				"client_code", code,
				"error", convErr)
			continue
		}
		documents = append(documents, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, c.failure(ctx, err)
	}

	return documents, nil
}

// failure reports a cancelled caller as such and every other error as the
// DMS being unavailable.
func (c *SQLClient) failure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errs.NewExternalUnavailableError(system, err)
}

func toDocument(kind, ref, code string, date time.Time, total decimal.Decimal, orderRef sql.NullString) (dms.Document, error) {
	parsed, err := dms.ParseKind(kind)
	if err != nil {
		return dms.Document{}, err
	}

	doc := dms.Document{
		Kind:        parsed,
		ExternalRef: ref,
		ClientCode:  code,
		Date:        date.UTC(),
		TotalHT:     total,
	}
	if orderRef.Valid {
		doc.OrderRef = orderRef.String
	}

	if err = doc.Validate(); err != nil {
		return dms.Document{}, err
	}
	return doc, nil
}
