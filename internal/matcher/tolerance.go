// Package matcher implements the statement-of-account reconciliation matching
// engine: a deterministic five-pass cascade that pairs vendor-reported SOA
// lines against a company's own invoice ledger, assigning a fixed confidence
// tier to each pairing so that only low-confidence or unmatched lines require
// human review.
//
// The cascade runs strictly in order from exact to partial-payment tolerant;
// the first pass with at least one satisfying invoice wins. Precision is
// always preferred over tolerance, and the ordering is a hard contract.
//
// Example usage:
//
//	cfg := matcher.DefaultToleranceConfig()
//	engine := matcher.NewEngine(invoiceRepo, cfg, log)
//
//	result, err := engine.MatchSOALine(ctx, line, vendorID)
//	results := engine.BatchMatchSOALines(ctx, lines, vendorID)
package matcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ToleranceConfig holds the tolerance parameters injected into the engine at
// construction time. Keeping these on an explicit value rather than package
// constants allows per-tenant tuning and deterministic tests without global
// state.
type ToleranceConfig struct {
	// DateWindowDays is the maximum absolute calendar-day difference accepted
	// by the date-tolerant pass.
	DateWindowDays int `json:"date_window_days"`

	// AmountToleranceAbsolute is the flat amount deviation always accepted by
	// the amount-tolerant pass, in the line's own currency.
	AmountToleranceAbsolute decimal.Decimal `json:"amount_tolerance_absolute"`

	// AmountToleranceRelative is the fraction of the invoice total accepted as
	// deviation (0.005 = 0.5%). The larger of the absolute and relative bounds
	// applies.
	AmountToleranceRelative decimal.Decimal `json:"amount_tolerance_relative"`
}

// DefaultToleranceConfig returns the standard production tolerances:
// a 7-day date window, $1.00 absolute and 0.5% relative amount bounds.
func DefaultToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		DateWindowDays:          7,
		AmountToleranceAbsolute: decimal.NewFromFloat(1.00),
		AmountToleranceRelative: decimal.NewFromFloat(0.005),
	}
}

// StrictToleranceConfig returns a configuration with no tolerance at all:
// only same-day, to-the-cent pairings get past the tolerant passes.
func StrictToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		DateWindowDays:          0,
		AmountToleranceAbsolute: decimal.Zero,
		AmountToleranceRelative: decimal.Zero,
	}
}

// RelaxedToleranceConfig returns a configuration for exploratory matching
// with a wider date window and looser amount bounds.
func RelaxedToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		DateWindowDays:          14,
		AmountToleranceAbsolute: decimal.NewFromFloat(5.00),
		AmountToleranceRelative: decimal.NewFromFloat(0.01),
	}
}

// Validate checks if the tolerance configuration is valid
func (tc *ToleranceConfig) Validate() error {
	if tc.DateWindowDays < 0 {
		return fmt.Errorf("date window days cannot be negative: %d", tc.DateWindowDays)
	}

	if tc.AmountToleranceAbsolute.IsNegative() {
		return fmt.Errorf("absolute amount tolerance cannot be negative: %s", tc.AmountToleranceAbsolute)
	}

	if tc.AmountToleranceRelative.IsNegative() || tc.AmountToleranceRelative.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("relative amount tolerance must be between 0 and 1: %s", tc.AmountToleranceRelative)
	}

	return nil
}

// Clone creates a copy of the tolerance configuration
func (tc *ToleranceConfig) Clone() *ToleranceConfig {
	if tc == nil {
		return nil
	}

	return &ToleranceConfig{
		DateWindowDays:          tc.DateWindowDays,
		AmountToleranceAbsolute: tc.AmountToleranceAbsolute,
		AmountToleranceRelative: tc.AmountToleranceRelative,
	}
}

// String returns a human-readable description of the configuration
func (tc *ToleranceConfig) String() string {
	return fmt.Sprintf("ToleranceConfig{DateWindow: %d days, AmountAbs: %s, AmountRel: %s}",
		tc.DateWindowDays, tc.AmountToleranceAbsolute, tc.AmountToleranceRelative)
}

// WithinDateWindow reports whether two dates fall within the configured
// calendar-day window of each other. Time-of-day and timezone offsets within
// the same calendar date are ignored.
func (tc *ToleranceConfig) WithinDateWindow(a, b time.Time) bool {
	return absDaysBetween(a, b) <= tc.DateWindowDays
}

// WithinAmountTolerance reports whether a SOA amount is close enough to an
// invoice total: the absolute difference must not exceed the larger of the
// flat bound and the relative bound computed from the invoice total.
//
// Both amounts must already be in the same currency; no conversion happens
// here and the passes never invoke it across differing currency codes.
func (tc *ToleranceConfig) WithinAmountTolerance(soaAmount, invoiceAmount decimal.Decimal) bool {
	diff := soaAmount.Sub(invoiceAmount).Abs()

	bound := tc.AmountToleranceAbsolute
	relative := invoiceAmount.Abs().Mul(tc.AmountToleranceRelative)
	if relative.GreaterThan(bound) {
		bound = relative
	}

	return diff.LessThanOrEqual(bound)
}

// sameCalendarDate reports whether two times fall on the same calendar date
func sameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// absDaysBetween returns the absolute difference between two dates in whole
// calendar days, ignoring time-of-day.
func absDaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}
