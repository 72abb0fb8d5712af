package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/overmind/internal/app"
	"github.com/riskibarqy/overmind/internal/config"
	"github.com/riskibarqy/overmind/internal/infrastructure/corpus"
	"github.com/riskibarqy/overmind/internal/infrastructure/report"
	"github.com/riskibarqy/overmind/internal/observability"
	"github.com/spf13/cobra"
)

type importFlags struct {
	workers       int
	dryRun        bool
	archiveDir    string
	aliases       string
	failureLog    string
	barcodeReport string
	noLadder      bool
	hardFail      bool
}

func newImportCommand() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import [source-dir]",
		Short: "Import every replay under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg, args)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.SourceDir == "" {
				return fmt.Errorf("replay source dir is required: pass it as an argument or set REPLAY_SOURCE_DIR")
			}
			return runImport(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.workers, "workers", "w", 0, "worker pool width (WORKER_COUNT)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "use the in-memory store and skip archive writes (DRY_RUN)")
	f.StringVar(&flags.archiveDir, "archive-dir", "", "archive directory (ARCHIVE_DIR)")
	f.StringVar(&flags.aliases, "aliases", "", "alias table JSON file (ALIAS_TABLE_PATH)")
	f.StringVar(&flags.failureLog, "failure-log", "", "failure log path (FAILURE_LOG_PATH)")
	f.StringVar(&flags.barcodeReport, "barcode-report", "", "barcode report path (BARCODE_REPORT_PATH)")
	f.BoolVar(&flags.noLadder, "no-ladder", false, "skip ranking lookups (BNET_ENABLED=false)")
	f.BoolVar(&flags.hardFail, "ladder-hard-fail", false, "fail a file when its ranking lookup fails (LADDER_SOFT_FAIL=false)")
	return cmd
}

// apply copies explicitly set flags over the environment configuration.
func (f importFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	changed := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.SourceDir = args[0]
	}
	if changed("workers") {
		cfg.WorkerCount = f.workers
	}
	if changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if changed("archive-dir") {
		cfg.ArchiveDir = f.archiveDir
	}
	if changed("aliases") {
		cfg.AliasTablePath = f.aliases
	}
	if changed("failure-log") {
		cfg.FailureLogPath = f.failureLog
	}
	if changed("barcode-report") {
		cfg.BarcodeReportPath = f.barcodeReport
	}
	if changed("no-ladder") && f.noLadder {
		cfg.BNetEnabled = false
	}
	if changed("ladder-hard-fail") && f.hardFail {
		cfg.LadderSoftFail = false
	}
}

func runImport(cmd *cobra.Command, cfg config.Config) error {
	logger, flush := setupLogger(cfg)
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("start pprof: %w", err)
	}
	defer func() {
		if err := observability.StopPprofServer(pprofServer, logger, 5*time.Second); err != nil {
			logger.Warn("stop pprof", "error", err)
		}
	}()

	failures, err := report.OpenFailureLog(cfg.FailureLogPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := failures.Close(); err != nil {
			logger.Error("close failure log", "path", failures.Path(), "error", err)
		}
	}()

	pipeline, err := app.Build(ctx, cfg, app.Options{
		Progress: cmd.OutOrStdout(),
		Failures: failures,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()

	paths, err := corpus.Walk(ctx, cfg.SourceDir, pipeline.ArchiveDir)
	if err != nil {
		return err
	}
	logger.Info("replays discovered", "source", cfg.SourceDir, "files", len(paths))

	summary, runErr := pipeline.Orchestrator.Run(ctx, paths)

	if err := report.WriteBarcodeReport(cfg.BarcodeReportPath, pipeline.Barcodes.Snapshot()); err != nil {
		logger.Error("write barcode report", "path", cfg.BarcodeReportPath, "error", err)
	}
	report.RenderSummary(cmd.ErrOrStderr(), summary)
	if failures.Count() > 0 {
		logger.Info("failed paths recorded", "path", failures.Path(), "count", failures.Count())
	}

	return runErr
}
