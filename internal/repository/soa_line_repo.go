package repository

import (
	"context"

	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

const listPendingSOALinesSQL = `
SELECT id, vendor_id, invoice_number, amount::text, currency_code, invoice_date, allow_partial
FROM soa_lines
WHERE vendor_id = $1
  AND status = 'pending'
ORDER BY created_at, id`

// PostgresSOALineRepository reads ingested statement-of-account lines from
// Postgres for the reconciliation trigger endpoint
type PostgresSOALineRepository struct {
	db  DB
	log logger.Logger
}

// NewPostgresSOALineRepository creates a Postgres-backed SOA line repository
func NewPostgresSOALineRepository(db DB, log logger.Logger) *PostgresSOALineRepository {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PostgresSOALineRepository{db: db, log: log.WithComponent("soa-line-repo")}
}

// ListPendingByVendor returns the vendor's SOA lines still awaiting
// reconciliation, in ingestion order
func (r *PostgresSOALineRepository) ListPendingByVendor(ctx context.Context, vendorID string) ([]*models.SOALine, error) {
	rows, err := r.db.Query(ctx, listPendingSOALinesSQL, vendorID)
	if err != nil {
		return nil, errors.NewRepositoryError("failed to query SOA lines for vendor "+vendorID, err)
	}
	defer rows.Close()

	var lines []*models.SOALine
	for rows.Next() {
		var (
			line      models.SOALine
			amountStr string
		)
		if err := rows.Scan(&line.ID, &line.VendorID, &line.InvoiceNumber, &amountStr, &line.CurrencyCode, &line.InvoiceDate, &line.AllowPartial); err != nil {
			return nil, errors.NewRepositoryError("failed to scan SOA line row", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, errors.NewRepositoryError("invalid SOA line amount: "+amountStr, err)
		}
		line.Amount = amount
		line.Status = models.SOALinePending

		lines = append(lines, &line)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewRepositoryError("failed to read SOA line rows for vendor "+vendorID, err)
	}

	r.log.WithFields(logger.Fields{
		"vendor_id": vendorID,
		"count":     len(lines),
	}).Debug("listed pending SOA lines")

	return lines, nil
}
