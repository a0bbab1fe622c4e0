// Package reconciler orchestrates a full statement-of-account reconciliation
// run for the CLI path: parse the SOA and ledger files, build the vendor's
// invoice snapshot, fan the matching engine across the lines and summarize
// the outcome. The engine itself persists nothing; the result is handed to
// whatever consumes it (report writer, HTTP response, downstream workflow).
package reconciler

import (
	"context"
	"fmt"
	"time"

	"soa-reconciliation-service/internal/matcher"
	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/internal/parsers"
	"soa-reconciliation-service/internal/repository"
	"soa-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Service runs file-based reconciliation batches
type Service struct {
	soaParser     *parsers.SOALineParser
	invoiceParser *parsers.InvoiceParser
	tolerances    *matcher.ToleranceConfig
	log           logger.Logger
}

// Request describes one reconciliation run
type Request struct {
	SOAFile     string
	InvoiceFile string
	VendorID    string

	// Parallel enables the worker-pool batch matcher with Workers workers.
	Parallel bool
	Workers  int
}

// Validate validates the reconciliation request
func (r *Request) Validate() error {
	if r.SOAFile == "" {
		return fmt.Errorf("SOA file path is required")
	}

	if r.InvoiceFile == "" {
		return fmt.Errorf("invoice file path is required")
	}

	if r.VendorID == "" {
		return fmt.Errorf("vendor ID is required")
	}

	if r.Parallel && r.Workers <= 0 {
		return fmt.Errorf("parallel matching requires a positive worker count, got %d", r.Workers)
	}

	return nil
}

// Result contains the complete outcome of one reconciliation run
type Result struct {
	VendorID string                `json:"vendorId"`
	Results  []*models.MatchResult `json:"results"`
	Summary  *Summary              `json:"summary"`

	SOAStats     *parsers.ParseStats `json:"-"`
	InvoiceStats *parsers.ParseStats `json:"-"`

	ProcessedAt time.Time     `json:"processedAt"`
	Duration    time.Duration `json:"duration"`
}

// Summary aggregates a batch's match results for reporting
type Summary struct {
	TotalLines     int `json:"totalLines"`
	MatchedLines   int `json:"matchedLines"`
	UnmatchedLines int `json:"unmatchedLines"`
	ExactMatches   int `json:"exactMatches"`

	// MatchesByPass counts winning lines per pass (1-5).
	MatchesByPass map[int]int `json:"matchesByPass"`

	TotalMatchedAmount   decimal.Decimal `json:"totalMatchedAmount"`
	TotalUnmatchedAmount decimal.Decimal `json:"totalUnmatchedAmount"`
}

// NewService creates a reconciliation service. Nil tolerances fall back to
// the engine defaults.
func NewService(tolerances *matcher.ToleranceConfig, log logger.Logger) *Service {
	if tolerances == nil {
		tolerances = matcher.DefaultToleranceConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Service{
		soaParser:     parsers.NewSOALineParser(nil, log),
		invoiceParser: parsers.NewInvoiceParser(nil, log),
		tolerances:    tolerances,
		log:           log.WithComponent("reconciler"),
	}
}

// Run executes one reconciliation batch
func (s *Service) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := time.Now()

	lines, soaStats, err := s.soaParser.ParseFile(req.SOAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SOA file: %w", err)
	}

	invoices, invoiceStats, err := s.invoiceParser.ParseFile(req.InvoiceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice file: %w", err)
	}

	repo := repository.NewMemoryInvoiceRepository(invoices)
	engine := matcher.NewEngine(repo, s.tolerances, s.log)

	var results []*models.MatchResult
	if req.Parallel {
		results, err = engine.BatchMatchSOALinesParallel(ctx, lines, req.VendorID, req.Workers)
		if err != nil {
			return nil, fmt.Errorf("parallel matching failed: %w", err)
		}
	} else {
		results = engine.BatchMatchSOALines(ctx, lines, req.VendorID)
	}

	summary := Summarize(lines, results)

	s.log.WithFields(logger.Fields{
		"vendor_id": req.VendorID,
		"lines":     summary.TotalLines,
		"matched":   summary.MatchedLines,
		"unmatched": summary.UnmatchedLines,
	}).Info("reconciliation batch complete")

	return &Result{
		VendorID:     req.VendorID,
		Results:      results,
		Summary:      summary,
		SOAStats:     soaStats,
		InvoiceStats: invoiceStats,
		ProcessedAt:  start,
		Duration:     time.Since(start),
	}, nil
}

// Summarize aggregates match results against their source lines. Results are
// positionally aligned with lines, as produced by the batch matcher.
func Summarize(lines []*models.SOALine, results []*models.MatchResult) *Summary {
	summary := &Summary{
		TotalLines:           len(results),
		MatchesByPass:        make(map[int]int),
		TotalMatchedAmount:   decimal.Zero,
		TotalUnmatchedAmount: decimal.Zero,
	}

	for i, result := range results {
		var amount decimal.Decimal
		if i < len(lines) && lines[i] != nil {
			amount = lines[i].Amount
		}

		if result.IsMatched() {
			summary.MatchedLines++
			summary.MatchesByPass[result.Pass]++
			summary.TotalMatchedAmount = summary.TotalMatchedAmount.Add(amount.Abs())
			if result.IsExactMatch {
				summary.ExactMatches++
			}
		} else {
			summary.UnmatchedLines++
			summary.TotalUnmatchedAmount = summary.TotalUnmatchedAmount.Add(amount.Abs())
		}
	}

	return summary
}
