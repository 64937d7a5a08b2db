package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wasteworks/reclaim/internal/config"
	"github.com/wasteworks/reclaim/internal/infrastructure"
	"github.com/wasteworks/reclaim/internal/ledger"
	"github.com/wasteworks/reclaim/internal/records"
	"github.com/wasteworks/reclaim/internal/registration"
	"github.com/wasteworks/reclaim/internal/summarylog"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the summary log ingestion workers",
	Long: `Run loads the service configuration, connects to the database and the
upload store, and processes queued summary logs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runService() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if cfg.Registrations.SeedFile == "" {
		return fmt.Errorf("no registration source configured: set registrations.seed_file or %s", config.EnvRegistrationsSeedFile)
	}
	oracle, err := registration.LoadSeed(cfg.Registrations.SeedFile)
	if err != nil {
		return fmt.Errorf("registration seed failed: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}

	logger := infra.Logger
	logger.Info("reclaim starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"workers", cfg.Processor.Workers,
	)

	if err := infra.Start(); err != nil {
		return err
	}

	db := infra.Database.Connection()
	logs := summarylog.NewPostgresStore(db, logger)
	recordStore := records.NewPostgresStore(db, logger)
	balanceStore := ledger.NewPostgresStore(db, logger)

	materializer := records.NewMaterializer(recordStore, logger)
	ledgerSvc := ledger.NewService(balanceStore, logger, cfg.Ledger.MaxAttempts)

	pipeline := summarylog.NewPipeline(logs, infra.Storage, oracle, materializer, ledgerSvc, logger)
	processor := summarylog.NewProcessor(pipeline, logger, cfg.Processor.Workers, cfg.Processor.QueueDepth)
	processor.Start(infra.Lifecycle)

	poller := summarylog.NewPoller(logs, processor, logger, cfg.Processor.PollIntervalDuration(), cfg.Processor.QueueDepth)
	poller.Start(infra.Lifecycle)

	infra.Lifecycle.WaitForStartup()
	logger.Info("reclaim ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("reclaim stopping")
	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("reclaim stopped")
	return nil
}
