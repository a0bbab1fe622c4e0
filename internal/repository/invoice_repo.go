package repository

import (
	"context"

	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const listEligibleInvoicesSQL = `
SELECT id, vendor_id, invoice_number, total_amount::text, currency_code, invoice_date, status
FROM invoices
WHERE vendor_id = $1
  AND status NOT IN ('void', 'cancelled')
ORDER BY created_at, id`

// PostgresInvoiceRepository reads the invoice ledger from Postgres
type PostgresInvoiceRepository struct {
	db  DB
	log logger.Logger
}

// NewPostgresInvoiceRepository creates a Postgres-backed invoice repository
func NewPostgresInvoiceRepository(db DB, log logger.Logger) *PostgresInvoiceRepository {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PostgresInvoiceRepository{db: db, log: log.WithComponent("invoice-repo")}
}

// ListEligibleInvoices returns the vendor's invoices that are not void or
// cancelled, ordered by creation so the selector's final tie-break stays
// stable across calls.
func (r *PostgresInvoiceRepository) ListEligibleInvoices(ctx context.Context, vendorID string) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, listEligibleInvoicesSQL, vendorID)
	if err != nil {
		return nil, errors.NewRepositoryError("failed to query invoices for vendor "+vendorID, err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewRepositoryError("failed to read invoice rows for vendor "+vendorID, err)
	}

	r.log.WithFields(logger.Fields{
		"vendor_id": vendorID,
		"count":     len(invoices),
	}).Debug("listed eligible invoices")

	return invoices, nil
}

func scanInvoice(rows pgx.Rows) (*models.Invoice, error) {
	var (
		inv       models.Invoice
		amountStr string
		status    string
	)

	if err := rows.Scan(&inv.ID, &inv.VendorID, &inv.InvoiceNumber, &amountStr, &inv.CurrencyCode, &inv.InvoiceDate, &status); err != nil {
		return nil, errors.NewRepositoryError("failed to scan invoice row", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewRepositoryError("invalid invoice amount in ledger: "+amountStr, err)
	}
	inv.TotalAmount = amount
	inv.Status = models.InvoiceStatus(status)

	return &inv, nil
}
