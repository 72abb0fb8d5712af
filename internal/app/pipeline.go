package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/external/bnet"
	"github.com/riskibarqy/overmind/external/decoder"
	"github.com/riskibarqy/overmind/internal/config"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	"github.com/riskibarqy/overmind/internal/infrastructure/archive"
	"github.com/riskibarqy/overmind/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overmind/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/overmind/internal/platform/id"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/riskibarqy/overmind/internal/platform/resilience"
	"github.com/riskibarqy/overmind/internal/usecase"
)

const dryRunArchiveDir = "archive"

type Options struct {
	// Progress receives one line per archived replay.
	Progress io.Writer
	Failures usecase.FailureRecorder
	Fetcher  ladder.Fetcher
	Decoder  usecase.ReplayDecoder
	IDs      idgen.Generator
}

// Pipeline is the wired import graph for one run.
type Pipeline struct {
	Orchestrator *usecase.Orchestrator
	Importer     *usecase.ImportService
	Aliases      *naming.AliasTable
	Barcodes     *naming.BarcodeLog
	ArchiveDir   string
	// Memory is set on dry runs only.
	Memory *memory.Store

	db *sqlx.DB
}

// Build wires the import pipeline. Dry runs use the in-memory store and never
// write to the archive.
func Build(ctx context.Context, cfg config.Config, opts Options, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	aliases, err := LoadAliases(cfg)
	if err != nil {
		return nil, err
	}

	dec := opts.Decoder
	if dec == nil {
		dec = decoder.New(decoder.Config{Command: cfg.DecoderCommand, Logger: logger})
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = newLadderFetcher(cfg, logger)
	}

	p := &Pipeline{
		Aliases:  aliases,
		Barcodes: naming.NewBarcodeLog(),
	}

	var (
		uows  unitofwork.Factory
		store usecase.ArchiveStore
	)
	if cfg.DryRun {
		p.Memory = memory.NewStore()
		p.ArchiveDir = cfg.ArchiveDir
		if p.ArchiveDir == "" {
			p.ArchiveDir = dryRunArchiveDir
		}
		uows = p.Memory
		store = archive.Discard{Dir: p.ArchiveDir}
	} else {
		p.db, err = OpenDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.ArchiveDir, err = resolveArchiveDir(ctx, cfg.ArchiveDir, postgres.NewSettingsRepository(p.db))
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		archiveStore, err := archive.NewStore(p.ArchiveDir)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		uows = postgres.NewUnitOfWorkFactory(p.db)
		store = archiveStore
	}

	identities := usecase.NewIdentityService(fetcher, usecase.IdentityServiceConfig{
		LadderSoftFail: cfg.LadderSoftFail,
		SnapshotTTL:    cfg.LadderCacheTTL,
	}, logger)
	stores := usecase.NewStoreService(dec, store, logger)

	p.Importer = usecase.NewImportService(
		dec,
		aliases,
		p.Barcodes,
		uows,
		identities,
		stores,
		usecase.ImportServiceConfig{LoadLevel: usecase.LoadLevel(cfg.DecoderLoadLevel)},
		logger,
	)
	p.Orchestrator = usecase.NewOrchestrator(p.Importer, usecase.OrchestratorConfig{
		Workers:  cfg.WorkerCount,
		Progress: opts.Progress,
		Failures: opts.Failures,
	}, opts.IDs, logger)

	logger.Info("import pipeline ready",
		"dry_run", cfg.DryRun,
		"workers", cfg.WorkerCount,
		"archive_dir", p.ArchiveDir,
		"aliases", aliases.Len(),
		"ladder_enabled", cfg.BNetEnabled,
	)

	return p, nil
}

func (p *Pipeline) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// LoadAliases reads the alias table, or returns an empty one when no path is configured.
func LoadAliases(cfg config.Config) (*naming.AliasTable, error) {
	if cfg.AliasTablePath == "" {
		return naming.NewAliasTable(nil), nil
	}
	return naming.LoadAliasTable(cfg.AliasTablePath)
}

type settingsReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

var errArchiveDirUnset = errors.New("archive dir is not configured: set ARCHIVE_DIR or the replay_data_path setting")

func resolveArchiveDir(ctx context.Context, configured string, settings settingsReader) (string, error) {
	if dir := strings.TrimSpace(configured); dir != "" {
		return dir, nil
	}

	value, ok, err := settings.Get(ctx, postgres.SettingReplayDataPath)
	if err != nil {
		return "", fmt.Errorf("read %s setting: %w", postgres.SettingReplayDataPath, err)
	}
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", errArchiveDirUnset
	}
	return value, nil
}

func newLadderFetcher(cfg config.Config, logger *logging.Logger) ladder.Fetcher {
	if !cfg.BNetEnabled {
		logger.Info("ladder lookups disabled", "reason", "BNET_ENABLED=false")
		return offlineFetcher{}
	}

	return bnet.NewClient(bnet.ClientConfig{
		BaseURL:       cfg.BNetBaseURL,
		TokenURL:      cfg.BNetTokenURL,
		ClientID:      cfg.BNetClientID,
		ClientSecret:  cfg.BNetClientSecret,
		Timeout:       cfg.BNetTimeout,
		MaxRetries:    cfg.BNetMaxRetries,
		RateLimitWait: cfg.BNetRateLimitWait,
		TransientWait: cfg.BNetTransientWait,
		Logger:        logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.BNetCircuitEnabled,
			FailureThreshold: cfg.BNetCircuitFailureCount,
			OpenTimeout:      cfg.BNetCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BNetCircuitHalfOpenMax,
		},
	})
}

// offlineFetcher answers every lookup with NotFound so identities are stored
// without a ladder standing.
type offlineFetcher struct{}

func (offlineFetcher) Fetch(_ context.Context, locator identity.Locator) ladder.Result {
	return ladder.NotFound(locator)
}
