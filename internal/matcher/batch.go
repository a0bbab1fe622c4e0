package matcher

import (
	"context"
	"fmt"
	"sync"

	"soa-reconciliation-service/internal/models"

	"github.com/panjf2000/ants/v2"
)

// BatchMatchSOALines runs the single-line matcher over a list of SOA lines
// with per-line fault isolation: an error or panic raised for one line is
// converted into a pass-0 result and never aborts processing of sibling
// lines. The output preserves input order and length; empty input yields an
// empty slice.
func (e *Engine) BatchMatchSOALines(ctx context.Context, lines []*models.SOALine, vendorID string) []*models.MatchResult {
	results := make([]*models.MatchResult, len(lines))
	for i, line := range lines {
		results[i] = e.matchLineIsolated(ctx, line, vendorID)
	}
	return results
}

// BatchMatchSOALinesParallel is the worker-pool variant of BatchMatchSOALines.
// Lines in a batch share no mutable state and each depends only on its own
// fields and the vendor-scoped invoice snapshot, so parallel evaluation
// produces exactly the sequential results. Order and length are preserved.
func (e *Engine) BatchMatchSOALinesParallel(ctx context.Context, lines []*models.SOALine, vendorID string, workers int) ([]*models.MatchResult, error) {
	if workers <= 1 || len(lines) <= 1 {
		return e.BatchMatchSOALines(ctx, lines, vendorID), nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create matching worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]*models.MatchResult, len(lines))
	var wg sync.WaitGroup

	for i, line := range lines {
		i, line := i, line
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = e.matchLineIsolated(ctx, line, vendorID)
		}); submitErr != nil {
			// Pool saturated or released: evaluate inline rather than drop
			// the line.
			results[i] = e.matchLineIsolated(ctx, line, vendorID)
			wg.Done()
		}
	}

	wg.Wait()
	return results, nil
}

// matchLineIsolated is the batch-boundary wrapper around MatchSOALine: every
// failure mode for one line, including a panic from a misbehaving
// collaborator, becomes that line's pass-0 result.
func (e *Engine) matchLineIsolated(ctx context.Context, line *models.SOALine, vendorID string) (result *models.MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("soa_line_id", lineID(line)).Errorf("recovered panic while matching line: %v", r)
			result = failedResult(lineID(line), fmt.Sprintf("matching failed: %v", r))
		}
	}()

	res, err := e.MatchSOALine(ctx, line, vendorID)
	if err != nil {
		e.log.WithField("soa_line_id", lineID(line)).WithError(err).Warn("line failed during matching")
		return failedResult(lineID(line), err.Error())
	}
	return res
}
