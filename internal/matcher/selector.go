package matcher

import (
	"soa-reconciliation-service/internal/models"
)

// candidate is one invoice that satisfied a pass predicate, tagged with its
// stable position in the vendor's invoice pool.
type candidate struct {
	invoice  *models.Invoice
	position int
}

// selectBestCandidate picks exactly one winner from the invoices satisfying a
// pass, via lexicographic tie-break: smallest absolute date difference, then
// smallest absolute amount difference, then earliest pool position. The pool
// position fallback keeps selection deterministic for identical inputs.
func selectBestCandidate(line *models.SOALine, candidates []candidate) candidate {
	best := candidates[0]
	bestDateDiff := absDaysBetween(line.InvoiceDate, best.invoice.InvoiceDate)
	bestAmountDiff := line.Amount.Sub(best.invoice.TotalAmount).Abs()

	for _, c := range candidates[1:] {
		dateDiff := absDaysBetween(line.InvoiceDate, c.invoice.InvoiceDate)
		if dateDiff > bestDateDiff {
			continue
		}
		if dateDiff < bestDateDiff {
			best, bestDateDiff, bestAmountDiff = c, dateDiff, line.Amount.Sub(c.invoice.TotalAmount).Abs()
			continue
		}

		amountDiff := line.Amount.Sub(c.invoice.TotalAmount).Abs()
		if amountDiff.LessThan(bestAmountDiff) {
			best, bestAmountDiff = c, amountDiff
		}
		// Equal on both: candidates arrive in pool order, so the earlier
		// position already held wins.
	}

	return best
}
