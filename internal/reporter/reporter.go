// Package reporter renders reconciliation results for human and machine
// consumption.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: per-line rows for spreadsheet review
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Reporter writes reconciliation results in a chosen format
type Reporter struct{}

// NewReporter creates a reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Write renders the result to w in the given format
func (r *Reporter) Write(w io.Writer, result *reconciler.Result, format OutputFormat) error {
	switch format {
	case FormatConsole:
		return r.writeConsole(w, result)
	case FormatJSON:
		return r.writeJSON(w, result)
	case FormatCSV:
		return r.writeCSV(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Reporter) writeConsole(w io.Writer, result *reconciler.Result) error {
	s := result.Summary

	fmt.Fprintf(w, "SOA Reconciliation Report for vendor %s\n", result.VendorID)
	fmt.Fprintf(w, "Processed at %s in %s\n\n", result.ProcessedAt.Format("2006-01-02 15:04:05"), result.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "Lines:      %d total, %d matched (%d exact), %d unmatched\n",
		s.TotalLines, s.MatchedLines, s.ExactMatches, s.UnmatchedLines)
	fmt.Fprintf(w, "Amounts:    %s matched, %s unmatched\n",
		s.TotalMatchedAmount.StringFixed(2), s.TotalUnmatchedAmount.StringFixed(2))

	if len(s.MatchesByPass) > 0 {
		passes := make([]int, 0, len(s.MatchesByPass))
		for p := range s.MatchesByPass {
			passes = append(passes, p)
		}
		sort.Ints(passes)

		var parts []string
		for _, p := range passes {
			parts = append(parts, fmt.Sprintf("pass %d: %d", p, s.MatchesByPass[p]))
		}
		fmt.Fprintf(w, "By pass:    %s\n", strings.Join(parts, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-14s %-5s %-10s %-6s %-16s %s\n", "SOA LINE", "PASS", "CONF", "SCORE", "INVOICE", "DETAIL")
	fmt.Fprintln(w, strings.Repeat("-", 78))

	for _, res := range result.Results {
		if res.IsMatched() {
			fmt.Fprintf(w, "%-14s %-5d %-10.2f %-6d %-16s %s\n",
				res.SOALineID, res.Pass, res.Confidence, res.MatchScore,
				res.Invoice.InvoiceNumber, formatCriteria(res.MatchCriteria))
		} else {
			fmt.Fprintf(w, "%-14s %-5d %-10s %-6s %-16s %s\n",
				res.SOALineID, 0, "-", "-", "-", res.Reason)
		}
	}

	return nil
}

func (r *Reporter) writeJSON(w io.Writer, result *reconciler.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (r *Reporter) writeCSV(w io.Writer, result *reconciler.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"soa_line_id", "pass", "confidence", "match_score", "is_exact", "invoice_id", "invoice_number", "criteria", "reason"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, res := range result.Results {
		row := resultRow(res)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func resultRow(res *models.MatchResult) []string {
	if !res.IsMatched() {
		return []string{res.SOALineID, "0", "0.00", "0", "false", "", "", "", res.Reason}
	}

	return []string{
		res.SOALineID,
		fmt.Sprintf("%d", res.Pass),
		fmt.Sprintf("%.2f", res.Confidence),
		fmt.Sprintf("%d", res.MatchScore),
		fmt.Sprintf("%t", res.IsExactMatch),
		res.Invoice.ID,
		res.Invoice.InvoiceNumber,
		formatCriteria(res.MatchCriteria),
		"",
	}
}

// formatCriteria renders match criteria deterministically for display
func formatCriteria(criteria map[string]string) string {
	if len(criteria) == 0 {
		return ""
	}

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, criteria[k]))
	}
	return strings.Join(parts, " ")
}
