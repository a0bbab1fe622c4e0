package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"soa-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func createFixtureFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	soa := writeFixture(t, dir, "soa.csv", `id,vendor_id,invoice_number,amount,currency,invoice_date,allow_partial
soa-1,V-100,INV-001,1500.00,USD,2024-03-10,false
soa-2,V-100,INV 002,1004.00,USD,2024-03-12,false
soa-3,V-100,INV-003,400.00,USD,2024-03-20,true
soa-4,V-100,UNKNOWN,99.00,USD,2024-03-21,false
`)

	invoices := writeFixture(t, dir, "invoices.csv", `invoice_id,vendor_id,invoice_number,total_amount,currency,invoice_date,status
inv-1,V-100,INV-001,1500.00,USD,2024-03-10,sent
inv-2,V-100,INV-002,1000.00,USD,2024-03-12,overdue
inv-3,V-100,INV-003,900.00,USD,2024-03-20,sent
`)

	return soa, invoices
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       *Request
		expectErr bool
	}{
		{"valid", &Request{SOAFile: "a.csv", InvoiceFile: "b.csv", VendorID: "V-100"}, false},
		{"valid parallel", &Request{SOAFile: "a.csv", InvoiceFile: "b.csv", VendorID: "V-100", Parallel: true, Workers: 4}, false},
		{"missing SOA file", &Request{InvoiceFile: "b.csv", VendorID: "V-100"}, true},
		{"missing invoice file", &Request{SOAFile: "a.csv", VendorID: "V-100"}, true},
		{"missing vendor", &Request{SOAFile: "a.csv", InvoiceFile: "b.csv"}, true},
		{"parallel without workers", &Request{SOAFile: "a.csv", InvoiceFile: "b.csv", VendorID: "V-100", Parallel: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	soaFile, invoiceFile := createFixtureFiles(t)
	svc := NewService(nil, nil)

	result, err := svc.Run(context.Background(), &Request{
		SOAFile:     soaFile,
		InvoiceFile: invoiceFile,
		VendorID:    "V-100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.VendorID != "V-100" {
		t.Errorf("expected vendor V-100, got %s", result.VendorID)
	}
	if len(result.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(result.Results))
	}

	// soa-1 pairs exactly with inv-1.
	if result.Results[0].Pass != 1 {
		t.Errorf("soa-1: expected pass 1, got %d (reason %q)", result.Results[0].Pass, result.Results[0].Reason)
	}

	// soa-2 uses a formatting variant of INV-002 with a +4.00 deviation,
	// inside the 0.5% relative bound of the 1000.00 invoice.
	if result.Results[1].Pass != 4 {
		t.Errorf("soa-2: expected pass 4, got %d (reason %q)", result.Results[1].Pass, result.Results[1].Reason)
	}
	if got := result.Results[1].MatchCriteria["amount"]; got != "tolerant:+4.00" {
		t.Errorf("soa-2: expected amount criterion tolerant:+4.00, got %q", got)
	}

	// soa-3 is an opted-in partial payment against inv-3.
	if result.Results[2].Pass != 5 {
		t.Errorf("soa-3: expected pass 5, got %d (reason %q)", result.Results[2].Pass, result.Results[2].Reason)
	}

	// soa-4 references an unknown document.
	if result.Results[3].IsMatched() {
		t.Errorf("soa-4: expected no match, got pass %d", result.Results[3].Pass)
	}

	summary := result.Summary
	if summary.TotalLines != 4 || summary.MatchedLines != 3 || summary.UnmatchedLines != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.ExactMatches != 1 {
		t.Errorf("expected 1 exact match, got %d", summary.ExactMatches)
	}
	if summary.MatchesByPass[1] != 1 || summary.MatchesByPass[4] != 1 || summary.MatchesByPass[5] != 1 {
		t.Errorf("unexpected pass distribution: %v", summary.MatchesByPass)
	}

	if result.SOAStats.ParsedRows != 4 || result.InvoiceStats.ParsedRows != 3 {
		t.Errorf("unexpected parse stats: soa %+v, invoices %+v", result.SOAStats, result.InvoiceStats)
	}
}

func TestServiceRunParallelMatchesSequential(t *testing.T) {
	soaFile, invoiceFile := createFixtureFiles(t)
	svc := NewService(nil, nil)

	sequential, err := svc.Run(context.Background(), &Request{
		SOAFile: soaFile, InvoiceFile: invoiceFile, VendorID: "V-100",
	})
	if err != nil {
		t.Fatalf("sequential run failed: %v", err)
	}

	parallel, err := svc.Run(context.Background(), &Request{
		SOAFile: soaFile, InvoiceFile: invoiceFile, VendorID: "V-100",
		Parallel: true, Workers: 4,
	})
	if err != nil {
		t.Fatalf("parallel run failed: %v", err)
	}

	if len(parallel.Results) != len(sequential.Results) {
		t.Fatalf("result count diverged: %d vs %d", len(parallel.Results), len(sequential.Results))
	}
	for i := range sequential.Results {
		if parallel.Results[i].Pass != sequential.Results[i].Pass {
			t.Errorf("result %d: pass diverged %d vs %d", i, parallel.Results[i].Pass, sequential.Results[i].Pass)
		}
	}
}

func TestServiceRunInvalidRequest(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Run(context.Background(), &Request{})
	if err == nil {
		t.Fatal("expected an error for an invalid request")
	}
}

func TestServiceRunMissingFile(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Run(context.Background(), &Request{
		SOAFile:     filepath.Join(t.TempDir(), "missing.csv"),
		InvoiceFile: filepath.Join(t.TempDir(), "missing.csv"),
		VendorID:    "V-100",
	})
	if err == nil {
		t.Fatal("expected an error for missing input files")
	}
}

func TestSummarize(t *testing.T) {
	lines := []*models.SOALine{
		{ID: "soa-1", Amount: decimal.NewFromFloat(100)},
		{ID: "soa-2", Amount: decimal.NewFromFloat(200)},
		{ID: "soa-3", Amount: decimal.NewFromFloat(-50)},
	}

	results := []*models.MatchResult{
		{SOALineID: "soa-1", Pass: 1, IsExactMatch: true, Invoice: &models.Invoice{ID: "inv-1"}},
		{SOALineID: "soa-2", Pass: 0, Reason: "no match"},
		{SOALineID: "soa-3", Pass: 3, Invoice: &models.Invoice{ID: "inv-3"}},
	}

	summary := Summarize(lines, results)

	if summary.TotalLines != 3 || summary.MatchedLines != 2 || summary.UnmatchedLines != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.ExactMatches != 1 {
		t.Errorf("expected 1 exact match, got %d", summary.ExactMatches)
	}
	if summary.MatchesByPass[1] != 1 || summary.MatchesByPass[3] != 1 {
		t.Errorf("unexpected pass distribution: %v", summary.MatchesByPass)
	}

	// Amounts are absolute values.
	if !summary.TotalMatchedAmount.Equal(decimal.NewFromFloat(150)) {
		t.Errorf("expected matched amount 150, got %s", summary.TotalMatchedAmount)
	}
	if !summary.TotalUnmatchedAmount.Equal(decimal.NewFromFloat(200)) {
		t.Errorf("expected unmatched amount 200, got %s", summary.TotalUnmatchedAmount)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, nil)
	if summary.TotalLines != 0 || summary.MatchedLines != 0 {
		t.Errorf("expected zeroed summary, got %+v", summary)
	}
	if !summary.TotalMatchedAmount.IsZero() {
		t.Errorf("expected zero matched amount, got %s", summary.TotalMatchedAmount)
	}
}
