package matcher

import (
	"testing"
	"time"

	"soa-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func testLine(number string, amount float64, date time.Time) *models.SOALine {
	return &models.SOALine{
		ID:            "SOA-1",
		VendorID:      "V-100",
		InvoiceNumber: number,
		Amount:        decimal.NewFromFloat(amount),
		CurrencyCode:  "USD",
		InvoiceDate:   date,
		Status:        models.SOALinePending,
	}
}

func testInvoice(number string, amount float64, date time.Time) *models.Invoice {
	return &models.Invoice{
		ID:            "INV-1",
		VendorID:      "V-100",
		InvoiceNumber: number,
		TotalAmount:   decimal.NewFromFloat(amount),
		CurrencyCode:  "USD",
		InvoiceDate:   date,
		Status:        models.InvoiceSent,
	}
}

func TestPassCascadeShape(t *testing.T) {
	if len(passCascade) != 5 {
		t.Fatalf("expected 5 passes in the cascade, got %d", len(passCascade))
	}

	expected := []struct {
		pass       Pass
		confidence float64
		score      int
	}{
		{PassExact, 1.00, 100},
		{PassDateTolerant, 0.95, 95},
		{PassFuzzyDocument, 0.90, 90},
		{PassAmountTolerant, 0.85, 85},
		{PassPartialPayment, 0.75, 75},
	}

	for i, exp := range expected {
		rule := passCascade[i]
		if rule.pass != exp.pass {
			t.Errorf("cascade[%d]: expected pass %d, got %d", i, exp.pass, rule.pass)
		}
		if rule.confidence != exp.confidence {
			t.Errorf("cascade[%d]: expected confidence %.2f, got %.2f", i, exp.confidence, rule.confidence)
		}
		if rule.score != exp.score {
			t.Errorf("cascade[%d]: expected score %d, got %d", i, exp.score, rule.score)
		}
	}
}

func TestExactPassPredicate(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[0]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		line     *models.SOALine
		invoice  *models.Invoice
		expected bool
	}{
		{"all fields equal", testLine("INV-001", 100.50, date), testInvoice("INV-001", 100.50, date), true},
		{"same date different time", testLine("INV-001", 100.50, date.Add(9*time.Hour)), testInvoice("INV-001", 100.50, date), true},
		{"different formatting of number", testLine("INV 001", 100.50, date), testInvoice("INV-001", 100.50, date), false},
		{"different amount", testLine("INV-001", 100.51, date), testInvoice("INV-001", 100.50, date), false},
		{"different date", testLine("INV-001", 100.50, date.AddDate(0, 0, 1)), testInvoice("INV-001", 100.50, date), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.predicate(cfg, tt.line, tt.invoice); got != tt.expected {
				t.Errorf("exact predicate = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestExactPassCurrencyMismatch(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[0]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	line := testLine("INV-001", 100.50, date)
	line.CurrencyCode = "EUR"
	invoice := testInvoice("INV-001", 100.50, date)

	if rule.predicate(cfg, line, invoice) {
		t.Error("currency mismatch should never match")
	}

	// Case and whitespace differences in the code are not a mismatch.
	line.CurrencyCode = " usd "
	if !rule.predicate(cfg, line, invoice) {
		t.Error("currency comparison should be case-insensitive and trimmed")
	}
}

func TestDateTolerantPassPredicate(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[1]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lineDate time.Time
		expected bool
	}{
		{"three days apart", date.AddDate(0, 0, 3), true},
		{"window boundary", date.AddDate(0, 0, 7), true},
		{"outside window", date.AddDate(0, 0, 8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := testLine("INV-001", 100.50, tt.lineDate)
			invoice := testInvoice("INV-001", 100.50, date)
			if got := rule.predicate(cfg, line, invoice); got != tt.expected {
				t.Errorf("date-tolerant predicate = %v, expected %v", got, tt.expected)
			}
		})
	}

	// Raw number comparison: formatting differences are pass 3 territory.
	line := testLine("INV 001", 100.50, date.AddDate(0, 0, 2))
	if rule.predicate(cfg, line, testInvoice("INV-001", 100.50, date)) {
		t.Error("date-tolerant pass should compare raw invoice numbers")
	}
}

func TestFuzzyDocumentPassPredicate(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[2]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	farDate := date.AddDate(0, 2, 0)

	line := testLine("INV 001", 100.50, farDate)
	invoice := testInvoice("INV-001", 100.50, date)

	if !rule.predicate(cfg, line, invoice) {
		t.Error("normalized number + exact amount should match regardless of date")
	}

	// Amounts must still agree to the cent.
	line = testLine("INV 001", 100.51, farDate)
	if rule.predicate(cfg, line, invoice) {
		t.Error("fuzzy document pass requires exact amount equality")
	}

	// Empty normalized forms never compare equal.
	line = testLine("---", 100.50, farDate)
	if rule.predicate(cfg, line, testInvoice("///", 100.50, date)) {
		t.Error("punctuation-only numbers must not match each other")
	}
}

func TestAmountTolerantPassPredicate(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[3]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lineAmount float64
		expected   bool
	}{
		{"within relative tolerance", 1004.00, true},
		{"at relative bound", 1005.00, true},
		{"beyond tolerance", 1006.00, false},
		{"exact amount", 1000.00, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := testLine("INV 001", tt.lineAmount, date)
			invoice := testInvoice("INV-001", 1000.00, date)
			if got := rule.predicate(cfg, line, invoice); got != tt.expected {
				t.Errorf("amount-tolerant predicate = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPartialPaymentPassPredicate(t *testing.T) {
	cfg := DefaultToleranceConfig()
	rule := passCascade[4]
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	invoice := testInvoice("INV-001", 1000.00, date)

	// Without the opt-in the pass never fires, even for a plausible partial.
	line := testLine("INV-001", 400.00, date)
	if rule.predicate(cfg, line, invoice) {
		t.Error("partial payment requires an explicit opt-in on the line")
	}

	line.AllowPartial = true
	if !rule.predicate(cfg, line, invoice) {
		t.Error("opted-in line below the invoice total should match")
	}

	// Strictly less than: an equal amount is not a partial payment.
	line = testLine("INV-001", 1000.00, date)
	line.AllowPartial = true
	if rule.predicate(cfg, line, invoice) {
		t.Error("amount equal to the invoice total is not a partial payment")
	}

	line = testLine("INV-001", 1000.01, date)
	line.AllowPartial = true
	if rule.predicate(cfg, line, invoice) {
		t.Error("amount above the invoice total is not a partial payment")
	}
}

func TestDescribeAmountDelta(t *testing.T) {
	tests := []struct {
		kind     string
		soa      float64
		invoice  float64
		expected string
	}{
		{"tolerant", 1004.00, 1000.00, "tolerant:+4.00"},
		{"tolerant", 996.00, 1000.00, "tolerant:-4.00"},
		{"partial", 400.00, 1000.00, "partial:-600.00"},
	}

	for _, tt := range tests {
		got := describeAmountDelta(tt.kind, decimal.NewFromFloat(tt.soa), decimal.NewFromFloat(tt.invoice))
		if got != tt.expected {
			t.Errorf("describeAmountDelta(%s, %.2f, %.2f) = %q, expected %q", tt.kind, tt.soa, tt.invoice, got, tt.expected)
		}
	}
}

func TestPassString(t *testing.T) {
	tests := []struct {
		pass     Pass
		expected string
	}{
		{PassNone, "None"},
		{PassExact, "Exact"},
		{PassDateTolerant, "Date-Tolerant"},
		{PassFuzzyDocument, "Fuzzy Document"},
		{PassAmountTolerant, "Amount-Tolerant"},
		{PassPartialPayment, "Partial Payment"},
		{Pass(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.pass.String(); got != tt.expected {
			t.Errorf("Pass(%d).String() = %q, expected %q", tt.pass, got, tt.expected)
		}
	}
}
