package cmd

import (
	"fmt"
	"os"

	"soa-reconciliation-service/internal/matcher"
	"soa-reconciliation-service/internal/reconciler"
	"soa-reconciliation-service/internal/reporter"
	apperrors "soa-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var matchFlags struct {
	soaFile     string
	invoiceFile string
	vendorID    string

	dateWindowDays     int
	amountToleranceAbs float64
	amountTolerancePct float64

	outputFormat string
	outputFile   string

	parallel bool
	workers  int
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match SOA lines from a CSV file against an invoice ledger CSV",
	Long: `Match reads a vendor statement-of-account CSV and an invoice ledger CSV,
runs the multi-pass matching cascade for the given vendor, and writes a
report in console, JSON or CSV format.

Tolerances default to a 7-day date window and max($1.00, 0.5%) amount
tolerance; both can be overridden per run.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchFlags.soaFile, "soa-file", "", "path to the SOA lines CSV (required)")
	matchCmd.Flags().StringVar(&matchFlags.invoiceFile, "invoice-file", "", "path to the invoice ledger CSV (required)")
	matchCmd.Flags().StringVar(&matchFlags.vendorID, "vendor-id", "", "vendor whose lines are reconciled (required)")

	matchCmd.Flags().IntVar(&matchFlags.dateWindowDays, "date-window", 7, "date tolerance window in days")
	matchCmd.Flags().Float64Var(&matchFlags.amountToleranceAbs, "amount-tolerance", 1.00, "absolute amount tolerance")
	matchCmd.Flags().Float64Var(&matchFlags.amountTolerancePct, "amount-tolerance-pct", 0.005, "relative amount tolerance (fraction of invoice total)")

	matchCmd.Flags().StringVar(&matchFlags.outputFormat, "output-format", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVar(&matchFlags.outputFile, "output-file", "", "write report to file instead of stdout")

	matchCmd.Flags().BoolVar(&matchFlags.parallel, "parallel", false, "match lines concurrently")
	matchCmd.Flags().IntVar(&matchFlags.workers, "workers", 4, "worker count for --parallel")

	matchCmd.MarkFlagRequired("soa-file")
	matchCmd.MarkFlagRequired("invoice-file")
	matchCmd.MarkFlagRequired("vendor-id")
}

func runMatch(cobraCmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	log, err := newCLILogger()
	if err != nil {
		return err
	}

	format := reporter.OutputFormat(matchFlags.outputFormat)
	if !format.IsValid() {
		err := apperrors.NewConfigurationError(
			fmt.Sprintf("unsupported output format %q", matchFlags.outputFormat), nil).
			WithSuggestion("use one of: console, json, csv")
		os.Exit(handler.HandleError(err))
	}

	tolerances := &matcher.ToleranceConfig{
		DateWindowDays:          matchFlags.dateWindowDays,
		AmountToleranceAbsolute: decimal.NewFromFloat(matchFlags.amountToleranceAbs),
		AmountToleranceRelative: decimal.NewFromFloat(matchFlags.amountTolerancePct),
	}
	if err := tolerances.Validate(); err != nil {
		os.Exit(handler.HandleError(apperrors.NewConfigurationError("invalid tolerance settings", err)))
	}

	svc := reconciler.NewService(tolerances, log)
	result, err := svc.Run(cobraCmd.Context(), &reconciler.Request{
		SOAFile:     matchFlags.soaFile,
		InvoiceFile: matchFlags.invoiceFile,
		VendorID:    matchFlags.vendorID,
		Parallel:    matchFlags.parallel,
		Workers:     matchFlags.workers,
	})
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	out := os.Stdout
	if matchFlags.outputFile != "" {
		f, err := os.Create(matchFlags.outputFile)
		if err != nil {
			os.Exit(handler.HandleError(fmt.Errorf("failed to create output file: %w", err)))
		}
		defer f.Close()
		out = f
	}

	if err := reporter.NewReporter().Write(out, result, format); err != nil {
		os.Exit(handler.HandleError(err))
	}

	return nil
}
