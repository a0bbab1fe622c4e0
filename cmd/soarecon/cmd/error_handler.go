package cmd

import (
	"fmt"
	"os"
	"strings"

	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"
)

// CLIErrorHandler converts application errors into user-facing messages and
// exit codes
type CLIErrorHandler struct {
	log     logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	log, err := newCLILogger()
	if err != nil {
		log = logger.NewNopLogger()
	}

	return &CLIErrorHandler{
		log:     log.WithComponent("cli"),
		verbose: verbose,
	}
}

// HandleError prints a friendly description of err and returns the process
// exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.log.WithError(err).Debug("command failed")

	if reconErr, ok := errors.AsReconError(err); ok {
		return h.handleReconError(reconErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleReconError(err *errors.ReconError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.UserMessage())

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %+v\n", err.Cause)
	}

	switch err.Category {
	case errors.CategoryValidation, errors.CategoryParse, errors.CategoryConfiguration:
		return 2
	default:
		return 1
	}
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: file not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check that the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(os.Stderr, "Run with --verbose for more detail\n")
	}

	return 1
}

func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryParse:
		return `Parse error help:
• Verify the CSV file format and column headers
• Check that dates use YYYY-MM-DD and amounts are plain decimal numbers
• Ensure the file uses UTF-8 encoding`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify vendor IDs and invoice numbers are present
• Ensure amounts and currency codes are well formed`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'soarecon match --help' to see all available options`

	case errors.CategoryRepository:
		return `Repository error help:
• Verify the database is reachable and migrations have run
• Check the postgres.url configuration value
• Retry once connectivity is restored`

	default:
		return ""
	}
}
