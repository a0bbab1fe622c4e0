// Package repository provides implementations of the matching engine's
// invoice lookup collaborator: a Postgres-backed repository for the service
// deployment and an in-memory snapshot repository for the CLI path, where the
// invoice pool comes from a parsed ledger export.
package repository

import (
	"context"

	"soa-reconciliation-service/internal/models"
)

// MemoryInvoiceRepository serves invoices from an in-memory snapshot.
// Insertion order is preserved, which the match selector relies on as its
// deterministic creation-order fallback.
type MemoryInvoiceRepository struct {
	invoices []*models.Invoice
}

// NewMemoryInvoiceRepository creates a repository over the given snapshot
func NewMemoryInvoiceRepository(invoices []*models.Invoice) *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{invoices: invoices}
}

// ListEligibleInvoices returns the vendor's invoices that are not void or
// cancelled, in insertion order
func (r *MemoryInvoiceRepository) ListEligibleInvoices(ctx context.Context, vendorID string) ([]*models.Invoice, error) {
	var eligible []*models.Invoice
	for _, inv := range r.invoices {
		if inv == nil || !inv.IsEligible() {
			continue
		}
		if inv.VendorID != "" && inv.VendorID != vendorID {
			continue
		}
		eligible = append(eligible, inv)
	}
	return eligible, nil
}
