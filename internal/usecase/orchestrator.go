package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/platform/id"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

const DefaultWorkerCount = 32

// FileImporter imports a single path. Implementations report failures in
// the outcome rather than returning them.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) ImportOutcome
}

type OrchestratorConfig struct {
	Workers  int
	Progress io.Writer
	Failures FailureRecorder
}

type RunSummary struct {
	RunID            string
	Workers          int
	Total            int
	Imported         int
	Duplicates       int
	Failed           int
	Canceled         int
	NotDispatched    int
	Warnings         int
	FailuresByReason map[string]int
	Elapsed          time.Duration
}

type Orchestrator struct {
	importer FileImporter
	cfg      OrchestratorConfig
	ids      id.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewOrchestrator(importer FileImporter, cfg OrchestratorConfig, ids id.Generator, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkerCount
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	return &Orchestrator{
		importer: importer,
		cfg:      cfg,
		ids:      ids,
		logger:   logger,
		now:      time.Now,
	}
}

// Run imports paths on a bounded pool and consumes outcomes in completion
// order. Cancellation stops dispatch; tasks already running finish or roll
// back. The returned error is the context error when the run was cut short.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (RunSummary, error) {
	// The run is the root span; per-file spans hang off it.
	ctx, span := usecaseTracer.Start(ctx, "usecase.Orchestrator.Run")
	defer span.End()

	start := o.now()
	runID, err := o.ids.NewID()
	if err != nil {
		return RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := o.logger.With("run_id", runID)

	summary := RunSummary{
		RunID:            runID,
		Total:            len(paths),
		FailuresByReason: make(map[string]int),
	}
	if len(paths) == 0 {
		return summary, nil
	}

	workerCount := o.cfg.Workers
	if workerCount > len(paths) {
		workerCount = len(paths)
	}
	summary.Workers = workerCount

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return summary, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	logger.InfoContext(ctx, "import run started", "paths", len(paths), "workers", workerCount)

	results := make(chan ImportOutcome, workerCount)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		o.consume(ctx, logger, results, &summary)
	}()

	var workers sync.WaitGroup
	dispatched := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- o.runTask(ctx, path)
		}); err != nil {
			workers.Done()
			results <- ImportOutcome{Path: path, State: StateFailed, Err: errors.Wrap(err, "submit task to worker pool")}
		}
		dispatched++
	}

	workers.Wait()
	close(results)
	<-consumed

	summary.NotDispatched = len(paths) - dispatched
	summary.Elapsed = o.now().Sub(start)

	logger.InfoContext(ctx, "import run finished",
		"imported", summary.Imported,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
		"canceled", summary.Canceled,
		"not_dispatched", summary.NotDispatched,
		"elapsed", summary.Elapsed,
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (o *Orchestrator) runTask(ctx context.Context, path string) ImportOutcome {
	var outcome ImportOutcome
	recovered := panics.Try(func() {
		outcome = o.importer.ImportFile(ctx, path)
	})
	if recovered != nil {
		return ImportOutcome{
			Path:  path,
			State: StateFailed,
			Err:   errors.Mark(recovered.AsError(), ErrPanic),
		}
	}
	return outcome
}

func (o *Orchestrator) consume(ctx context.Context, logger *logging.Logger, results <-chan ImportOutcome, summary *RunSummary) {
	logged := make(map[string]struct{})
	index := 0

	for outcome := range results {
		for _, warning := range outcome.Warnings {
			summary.Warnings++
			logger.DebugContext(ctx, "import warning", "path", outcome.Path, "reason", Reason(warning), "error", warning)
		}

		if outcome.Succeeded() {
			if outcome.Duplicate {
				summary.Duplicates++
			} else {
				summary.Imported++
			}
			index++
			fmt.Fprintf(o.cfg.Progress, "%d\t%.3f\t%s\n", index, outcome.Elapsed.Seconds(), naming.Normalize(outcome.ArchivedPath))
			continue
		}

		reason := Reason(outcome.Err)
		if reason == "canceled" {
			summary.Canceled++
			continue
		}

		summary.Failed++
		summary.FailuresByReason[reason]++
		logger.WarnContext(ctx, "import failed",
			"path", outcome.Path,
			"reason", reason,
			"state", string(outcome.FailedAt),
			"error", outcome.Err,
		)

		normalized := naming.Normalize(outcome.Path)
		if _, ok := logged[normalized]; ok {
			continue
		}
		logged[normalized] = struct{}{}
		if o.cfg.Failures == nil {
			continue
		}
		if err := o.cfg.Failures.Record(normalized); err != nil {
			logger.ErrorContext(ctx, "write failure log", "path", normalized, "error", err)
		}
	}
}

// Reasons returns failure reasons sorted by count, then name.
func (s RunSummary) Reasons() []string {
	out := make([]string, 0, len(s.FailuresByReason))
	for reason := range s.FailuresByReason {
		out = append(out, reason)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := s.FailuresByReason[out[i]], s.FailuresByReason[out[j]]
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}
