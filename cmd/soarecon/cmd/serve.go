package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"soa-reconciliation-service/internal/config"
	"soa-reconciliation-service/internal/matcher"
	"soa-reconciliation-service/internal/platform/persistence"
	"soa-reconciliation-service/internal/repository"
	"soa-reconciliation-service/internal/server"
	"soa-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation HTTP service",
	Long: `Serve starts the HTTP API backed by PostgreSQL. Pending migrations run
on startup. The service exposes reconciliation trigger endpoints under
/api/v1 and a health check at /healthz.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.Format(cfg.Logging.Format),
	}
	if verbose {
		logCfg.Level = logger.DebugLevel
	}
	log, err := logger.NewLogger(logCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	invoices := repository.NewPostgresInvoiceRepository(db.Pool(), log)
	soaLines := repository.NewPostgresSOALineRepository(db.Pool(), log)
	engine := matcher.NewEngine(invoices, cfg.Matching.ToleranceConfig(), log)

	return server.NewServer(cfg, engine, soaLines, log).Run(ctx)
}
