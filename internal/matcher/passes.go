package matcher

import (
	"fmt"
	"strings"

	"soa-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Pass identifies one tier of matching strictness in the cascade.
// Zero means no pass accepted the line.
type Pass int

const (
	PassNone           Pass = 0
	PassExact          Pass = 1
	PassDateTolerant   Pass = 2
	PassFuzzyDocument  Pass = 3
	PassAmountTolerant Pass = 4
	PassPartialPayment Pass = 5
)

// String returns the name of the pass
func (p Pass) String() string {
	switch p {
	case PassExact:
		return "Exact"
	case PassDateTolerant:
		return "Date-Tolerant"
	case PassFuzzyDocument:
		return "Fuzzy Document"
	case PassAmountTolerant:
		return "Amount-Tolerant"
	case PassPartialPayment:
		return "Partial Payment"
	case PassNone:
		return "None"
	default:
		return "Unknown"
	}
}

// passRule is one immutable rule record in the cascade: a predicate plus the
// fixed confidence tier it awards. The cascade is a plain ordered list, not
// dynamic dispatch, so each pass stays auditable and unit-testable on its own.
type passRule struct {
	pass       Pass
	name       string
	confidence float64
	score      int
	predicate  func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool
	criteria   func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string
}

// passCascade is the five-pass matching cascade in its fixed evaluation order.
// Evaluation is strictly sequential: the first pass with at least one
// satisfying invoice wins, even if a later, looser pass would also match.
// Reordering this list changes the matching distribution; treat it as a
// contract.
var passCascade = []passRule{
	{
		pass:       PassExact,
		name:       "Exact",
		confidence: 1.00,
		score:      100,
		predicate: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool {
			return rawNumberEqual(line, inv) &&
				amountEqual(line, inv) &&
				currencyEqual(line, inv) &&
				sameCalendarDate(line.InvoiceDate, inv.InvoiceDate)
		},
		criteria: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string {
			return map[string]string{
				"invoiceNumber": "exact",
				"amount":        "exact",
				"currency":      "exact",
				"date":          "exact",
			}
		},
	},
	{
		pass:       PassDateTolerant,
		name:       "Date-Tolerant",
		confidence: 0.95,
		score:      95,
		predicate: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool {
			return rawNumberEqual(line, inv) &&
				amountEqual(line, inv) &&
				currencyEqual(line, inv) &&
				cfg.WithinDateWindow(line.InvoiceDate, inv.InvoiceDate)
		},
		criteria: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string {
			return map[string]string{
				"invoiceNumber": "exact",
				"amount":        "exact",
				"currency":      "exact",
				"date":          describeDateWindow(line, inv),
			}
		},
	},
	{
		pass:       PassFuzzyDocument,
		name:       "Fuzzy Document",
		confidence: 0.90,
		score:      90,
		predicate: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool {
			return normalizedNumberEqual(line, inv) &&
				amountEqual(line, inv) &&
				currencyEqual(line, inv)
		},
		criteria: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string {
			return map[string]string{
				"invoiceNumber": describeNumberMatch(line, inv),
				"amount":        "exact",
				"currency":      "exact",
				"date":          "unconstrained",
			}
		},
	},
	{
		pass:       PassAmountTolerant,
		name:       "Amount-Tolerant",
		confidence: 0.85,
		score:      85,
		predicate: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool {
			return normalizedNumberEqual(line, inv) &&
				currencyEqual(line, inv) &&
				cfg.WithinAmountTolerance(line.Amount, inv.TotalAmount)
		},
		criteria: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string {
			return map[string]string{
				"invoiceNumber": describeNumberMatch(line, inv),
				"amount":        describeAmountDelta("tolerant", line.Amount, inv.TotalAmount),
				"currency":      "exact",
				"date":          "unconstrained",
			}
		},
	},
	{
		pass:       PassPartialPayment,
		name:       "Partial Payment",
		confidence: 0.75,
		score:      75,
		predicate: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) bool {
			return line.AllowPartial &&
				normalizedNumberEqual(line, inv) &&
				currencyEqual(line, inv) &&
				line.Amount.LessThan(inv.TotalAmount)
		},
		criteria: func(cfg *ToleranceConfig, line *models.SOALine, inv *models.Invoice) map[string]string {
			return map[string]string{
				"invoiceNumber": describeNumberMatch(line, inv),
				"amount":        describeAmountDelta("partial", line.Amount, inv.TotalAmount),
				"currency":      "exact",
				"date":          "unconstrained",
			}
		},
	},
}

// Field predicates shared by the cascade rules.

func rawNumberEqual(line *models.SOALine, inv *models.Invoice) bool {
	return strings.TrimSpace(line.InvoiceNumber) == strings.TrimSpace(inv.InvoiceNumber)
}

func normalizedNumberEqual(line *models.SOALine, inv *models.Invoice) bool {
	norm := NormalizeInvoiceNumber(line.InvoiceNumber)
	return norm != "" && norm == NormalizeInvoiceNumber(inv.InvoiceNumber)
}

func amountEqual(line *models.SOALine, inv *models.Invoice) bool {
	return line.Amount.Equal(inv.TotalAmount)
}

func currencyEqual(line *models.SOALine, inv *models.Invoice) bool {
	return models.NormalizeCurrencyCode(line.CurrencyCode) == models.NormalizeCurrencyCode(inv.CurrencyCode)
}

// Criteria descriptions shown to human reviewers.

func describeNumberMatch(line *models.SOALine, inv *models.Invoice) string {
	if rawNumberEqual(line, inv) {
		return "exact"
	}
	return "normalized"
}

func describeDateWindow(line *models.SOALine, inv *models.Invoice) string {
	if sameCalendarDate(line.InvoiceDate, inv.InvoiceDate) {
		return "exact"
	}
	return fmt.Sprintf("window:%dd", absDaysBetween(line.InvoiceDate, inv.InvoiceDate))
}

func describeAmountDelta(kind string, soaAmount, invoiceAmount decimal.Decimal) string {
	delta := soaAmount.Sub(invoiceAmount)
	sign := ""
	if delta.Sign() >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s:%s%s", kind, sign, delta.StringFixed(2))
}
