package matcher

import (
	"context"
	"strings"

	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"
)

// InvoiceRepository is the engine's single external collaborator: a read-only
// lookup of a vendor's invoices that are not void or cancelled. Pagination and
// limits are the implementation's concern, not the engine's.
type InvoiceRepository interface {
	ListEligibleInvoices(ctx context.Context, vendorID string) ([]*models.Invoice, error)
}

// Engine matches SOA lines against a vendor's invoice ledger. It holds no
// locks, opens no transactions and performs no writes; matching is a read-only
// classification whose only side effect is the returned result.
type Engine struct {
	repo   InvoiceRepository
	config *ToleranceConfig
	log    logger.Logger
}

// NewEngine creates a matching engine over the given invoice repository.
// A nil config falls back to DefaultToleranceConfig; a nil logger is replaced
// with a no-op logger.
func NewEngine(repo InvoiceRepository, config *ToleranceConfig, log logger.Logger) *Engine {
	if config == nil {
		config = DefaultToleranceConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		repo:   repo,
		config: config.Clone(),
		log:    log.WithComponent("matcher"),
	}
}

// Config returns a copy of the engine's tolerance configuration
func (e *Engine) Config() *ToleranceConfig {
	return e.config.Clone()
}

// MatchSOALine evaluates the five-pass cascade for one SOA line against the
// vendor's eligible invoice pool and returns the first successful pass, or a
// pass-0 result carrying the reason no pairing was made.
//
// Malformed input never produces an error; it produces a pass-0 result with a
// human-readable reason, so the engine stays safe to call speculatively. A
// repository failure does return an error here: without a batch context there
// is nothing to isolate it into, and the caller decides how to react.
func (e *Engine) MatchSOALine(ctx context.Context, line *models.SOALine, vendorID string) (*models.MatchResult, error) {
	if reason := validateMatchInput(line, vendorID); reason != "" {
		e.log.WithField("soa_line_id", lineID(line)).Debugf("rejecting match request: %s", reason)
		return failedResult(lineID(line), reason), nil
	}

	invoices, err := e.repo.ListEligibleInvoices(ctx, vendorID)
	if err != nil {
		return nil, errors.NewRepositoryError("failed to list invoices for vendor "+vendorID, err)
	}

	// The repository contract already excludes void/cancelled invoices and
	// other vendors' ledgers; re-check so a sloppy implementation cannot
	// widen the pool.
	pool := make([]*models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv == nil || !inv.IsEligible() {
			continue
		}
		if inv.VendorID != "" && inv.VendorID != vendorID {
			continue
		}
		pool = append(pool, inv)
	}

	if len(pool) == 0 {
		return failedResult(line.ID, "No invoices available for this vendor"), nil
	}

	for _, rule := range passCascade {
		var candidates []candidate
		for i, inv := range pool {
			if rule.predicate(e.config, line, inv) {
				candidates = append(candidates, candidate{invoice: inv, position: i})
			}
		}

		if len(candidates) == 0 {
			continue
		}

		winner := selectBestCandidate(line, candidates)

		e.log.WithFields(logger.Fields{
			"soa_line_id": line.ID,
			"invoice_id":  winner.invoice.ID,
			"pass":        int(rule.pass),
			"candidates":  len(candidates),
		}).Debugf("pass %q accepted line", rule.name)

		return &models.MatchResult{
			SOALineID:     line.ID,
			Invoice:       winner.invoice,
			Pass:          int(rule.pass),
			IsExactMatch:  rule.pass == PassExact,
			Confidence:    rule.confidence,
			MatchScore:    rule.score,
			MatchCriteria: rule.criteria(e.config, line, winner.invoice),
			MatchedBy:     models.MatchedBySystem,
		}, nil
	}

	return failedResult(line.ID, "No candidate satisfied any matching pass"), nil
}

// validateMatchInput returns a human-readable rejection reason, or the empty
// string when the input is well-formed.
func validateMatchInput(line *models.SOALine, vendorID string) string {
	if strings.TrimSpace(vendorID) == "" {
		return "Vendor ID is required"
	}

	if line == nil {
		return "SOA line is required"
	}

	if strings.TrimSpace(line.InvoiceNumber) == "" {
		return "SOA line is missing an invoice number"
	}

	if line.Amount.IsZero() {
		return "SOA line is missing an amount"
	}

	if strings.TrimSpace(line.CurrencyCode) == "" {
		return "SOA line is missing a currency code"
	}

	return ""
}

// failedResult builds the pass-0 shape shared by validation failures, empty
// pools, collaborator failures and genuine discrepancies.
func failedResult(soaLineID, reason string) *models.MatchResult {
	return &models.MatchResult{
		SOALineID: soaLineID,
		Invoice:   nil,
		Pass:      int(PassNone),
		Reason:    reason,
		MatchedBy: models.MatchedBySystem,
	}
}

func lineID(line *models.SOALine) string {
	if line == nil {
		return ""
	}
	return line.ID
}
