package cmd

import (
	"fmt"

	"soa-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "soarecon",
	Short: "Statement-of-account reconciliation tool",
	Long: `Soarecon matches vendor statement-of-account lines against an invoice
ledger using a deterministic multi-pass cascade: exact match first, then
progressively looser rules with fixed confidence levels per pass.

Examples:
  soarecon match --soa-file soa.csv --invoice-file invoices.csv --vendor-id V-100
  soarecon match --soa-file soa.csv --invoice-file invoices.csv --vendor-id V-100 --output-format json
  soarecon serve --config configs/soarecon.yaml`,
	Version: getVersionString(),
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// newCLILogger builds the logger used by CLI commands
func newCLILogger() (logger.Logger, error) {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg.Level = logger.DebugLevel
	}
	return logger.NewLogger(cfg)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
