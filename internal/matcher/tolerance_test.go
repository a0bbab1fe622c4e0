package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultToleranceConfig(t *testing.T) {
	cfg := DefaultToleranceConfig()

	if cfg.DateWindowDays != 7 {
		t.Errorf("expected default date window of 7 days, got %d", cfg.DateWindowDays)
	}

	if !cfg.AmountToleranceAbsolute.Equal(decimal.NewFromFloat(1.00)) {
		t.Errorf("expected default absolute tolerance of 1.00, got %s", cfg.AmountToleranceAbsolute)
	}

	if !cfg.AmountToleranceRelative.Equal(decimal.NewFromFloat(0.005)) {
		t.Errorf("expected default relative tolerance of 0.005, got %s", cfg.AmountToleranceRelative)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestToleranceConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *ToleranceConfig
		expectErr bool
	}{
		{"default", DefaultToleranceConfig(), false},
		{"strict", StrictToleranceConfig(), false},
		{"relaxed", RelaxedToleranceConfig(), false},
		{
			"negative date window",
			&ToleranceConfig{DateWindowDays: -1},
			true,
		},
		{
			"negative absolute tolerance",
			&ToleranceConfig{AmountToleranceAbsolute: decimal.NewFromFloat(-0.01)},
			true,
		},
		{
			"relative tolerance above one",
			&ToleranceConfig{AmountToleranceRelative: decimal.NewFromFloat(1.5)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestToleranceConfigClone(t *testing.T) {
	original := DefaultToleranceConfig()
	clone := original.Clone()

	clone.DateWindowDays = 30
	clone.AmountToleranceAbsolute = decimal.NewFromFloat(99)

	if original.DateWindowDays != 7 {
		t.Error("mutating the clone changed the original date window")
	}
	if !original.AmountToleranceAbsolute.Equal(decimal.NewFromFloat(1.00)) {
		t.Error("mutating the clone changed the original amount tolerance")
	}
}

func TestWithinAmountTolerance(t *testing.T) {
	cfg := DefaultToleranceConfig()

	tests := []struct {
		name     string
		soa      string
		invoice  string
		expected bool
	}{
		// The relative bound on 1000.00 is 5.00, wider than the flat 1.00.
		{"within relative bound", "1000.00", "1000.50", true},
		{"at relative bound", "1005.00", "1000.00", true},
		{"beyond relative bound", "1006.00", "1000.00", false},
		{"far off", "1000.00", "1100.00", false},

		// Small invoices fall back to the flat bound.
		{"small invoice within flat bound", "10.99", "10.00", true},
		{"small invoice at flat bound", "11.00", "10.00", true},
		{"small invoice beyond flat bound", "11.01", "10.00", false},

		{"identical amounts", "250.00", "250.00", true},
		{"soa below invoice", "999.50", "1000.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			soa := decimal.RequireFromString(tt.soa)
			invoice := decimal.RequireFromString(tt.invoice)

			got := cfg.WithinAmountTolerance(soa, invoice)
			if got != tt.expected {
				t.Errorf("WithinAmountTolerance(%s, %s) = %v, expected %v", tt.soa, tt.invoice, got, tt.expected)
			}
		})
	}
}

func TestWithinAmountToleranceStrict(t *testing.T) {
	cfg := StrictToleranceConfig()

	if !cfg.WithinAmountTolerance(decimal.NewFromFloat(100), decimal.NewFromFloat(100)) {
		t.Error("strict config should accept identical amounts")
	}

	if cfg.WithinAmountTolerance(decimal.NewFromFloat(100.01), decimal.NewFromFloat(100)) {
		t.Error("strict config should reject a one-cent deviation")
	}
}

func TestWithinDateWindow(t *testing.T) {
	cfg := DefaultToleranceConfig()
	base := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		other    time.Time
		expected bool
	}{
		{"same day", base, true},
		{"same day different time", time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC), true},
		{"five days later", base.AddDate(0, 0, 5), true},
		{"exactly seven days later", base.AddDate(0, 0, 7), true},
		{"exactly seven days earlier", base.AddDate(0, 0, -7), true},
		{"eight days later", base.AddDate(0, 0, 8), false},
		{"a month later", base.AddDate(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.WithinDateWindow(base, tt.other)
			if got != tt.expected {
				t.Errorf("WithinDateWindow(%s, %s) = %v, expected %v", base, tt.other, got, tt.expected)
			}
		})
	}
}

func TestSameCalendarDate(t *testing.T) {
	a := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)
	c := time.Date(2024, 3, 16, 0, 0, 1, 0, time.UTC)

	if !sameCalendarDate(a, b) {
		t.Error("expected same calendar date regardless of time of day")
	}
	if sameCalendarDate(a, c) {
		t.Error("expected different calendar dates to compare unequal")
	}
}

func TestAbsDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 18, 1, 0, 0, 0, time.UTC)

	if got := absDaysBetween(a, b); got != 3 {
		t.Errorf("expected 3 days, got %d", got)
	}
	if got := absDaysBetween(b, a); got != 3 {
		t.Errorf("expected symmetry, got %d", got)
	}
	if got := absDaysBetween(a, a); got != 0 {
		t.Errorf("expected 0 days for identical date, got %d", got)
	}
}
