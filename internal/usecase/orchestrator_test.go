package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/platform/id"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_Run_ConcurrencyUnderLoad(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 8, 32} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			p := newPipeline(t, true)
			p.fetcher.delay = time.Millisecond

			const distinct = 12
			const copies = 4
			paths := make([]string, 0, distinct*copies)
			for g := 0; g < distinct; g++ {
				content := fmt.Sprintf("game-%02d", g)
				opponent := maru()
				if g%2 == 1 {
					opponent = clem()
				}
				p.decoder.register(content, game(serral(), opponent, nil))
				for c := 0; c < copies; c++ {
					paths = append(paths, p.file(t, fmt.Sprintf("copy%d/Serral vs %s %02d.SC2Replay", c, opponent.Name, g), content))
				}
			}

			var progress bytes.Buffer
			failures := &recordingFailures{}
			orchestrator := NewOrchestrator(p.importer, OrchestratorConfig{Workers: workers, Progress: &progress, Failures: failures}, id.Fixed("run-1"), logging.NewNop())

			summary, err := orchestrator.Run(context.Background(), paths)
			require.NoError(t, err)

			assert.Equal(t, "run-1", summary.RunID)
			assert.Equal(t, len(paths), summary.Total)
			assert.Equal(t, distinct, summary.Imported)
			assert.Equal(t, distinct*(copies-1), summary.Duplicates)
			assert.Zero(t, summary.Failed)
			assert.Empty(t, failures.snapshot())

			counts := p.store.Counts()
			assert.Equal(t, distinct, counts.Replays)
			assert.Equal(t, 3, counts.Identities, "one identity per locator")
			assert.Equal(t, 3, counts.Players)
			assert.Equal(t, 1, counts.Maps)
			assert.Equal(t, distinct*2, counts.Links)

			for _, locator := range []identity.Locator{serralLocator, maruLocator, clemLocator} {
				assert.Equal(t, 1, p.fetcher.callsFor(locator), "ladder lookups for %s", locator)
			}

			lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
			require.Len(t, lines, len(paths))
			for i, line := range lines {
				fields := strings.Split(line, "\t")
				require.Len(t, fields, 3)
				assert.Equal(t, fmt.Sprint(i+1), fields[0])
				assert.True(t, strings.HasPrefix(fields[2], p.archive.Dir()))
			}
		})
	}
}

func TestOrchestrator_Run_IsolatesFailuresAndPanics(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, true)
	p.decoder.register("g1", game(serral(), maru(), nil))

	good := p.file(t, "Serral vs Maru.SC2Replay", "g1")
	broken := p.file(t, "broken (Z).SC2Replay", "garbage")
	exploding := p.file(t, "boom.SC2Replay", "panic")
	ambiguous := p.file(t, "Zest vs Parting.SC2Replay", "g1-copy")
	p.decoder.register("g1-copy", game(serral(), maru(), nil))

	failures := &recordingFailures{}
	orchestrator := NewOrchestrator(p.importer, OrchestratorConfig{Workers: 4, Failures: failures}, nil, logging.NewNop())

	summary, err := orchestrator.Run(context.Background(), []string{good, broken, exploding, ambiguous, broken})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 4, summary.Failed)
	assert.Equal(t, map[string]int{"decode": 2, "panic": 1, "ambiguous_match": 1}, summary.FailuresByReason)
	assert.Equal(t, []string{"decode", "ambiguous_match", "panic"}, summary.Reasons())

	logged := failures.snapshot()
	assert.Len(t, logged, 3, "each path is logged once")
	assert.Contains(t, logged, strings.TrimSuffix(broken, " (Z).SC2Replay")+".SC2Replay")
	assert.Equal(t, 1, p.store.Counts().Replays)
}

func TestOrchestrator_Run_CanceledBeforeDispatch(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, true)
	p.decoder.register("g1", game(serral(), maru(), nil))
	path := p.file(t, "Serral vs Maru.SC2Replay", "g1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failures := &recordingFailures{}
	summary, err := NewOrchestrator(p.importer, OrchestratorConfig{Failures: failures}, nil, logging.NewNop()).Run(ctx, []string{path, path})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.NotDispatched)
	assert.Empty(t, failures.snapshot())
	assert.Zero(t, p.store.Counts().Replays)
}

type cancelingImporter struct {
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (c *cancelingImporter) ImportFile(ctx context.Context, path string) ImportOutcome {
	if c.calls.Add(1) == 1 {
		c.cancel()
		return ImportOutcome{Path: path, State: StateArchived, ArchivedPath: path}
	}
	return ImportOutcome{Path: path, State: StateFailed, Err: ctx.Err()}
}

func TestOrchestrator_Run_StopsDispatchOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	importer := &cancelingImporter{cancel: cancel}
	failures := &recordingFailures{}

	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("/corpus/%02d.SC2Replay", i)
	}

	summary, err := NewOrchestrator(importer, OrchestratorConfig{Workers: 1, Failures: failures}, nil, logging.NewNop()).Run(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, failures.snapshot(), "canceled tasks are not failures")
	assert.Equal(t, len(paths), summary.Imported+summary.Canceled+summary.NotDispatched)
	assert.Greater(t, summary.NotDispatched, 0)
}

func TestOrchestrator_Run_Empty(t *testing.T) {
	t.Parallel()

	summary, err := NewOrchestrator(nil, OrchestratorConfig{}, nil, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.NotEmpty(t, summary.RunID)
}

func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "decode", Reason(decodeError(nil, "bad header")))
	assert.Equal(t, "canceled", Reason(context.Canceled))
	assert.Equal(t, "persistence_conflict", Reason(fmt.Errorf("insert: %w", ErrPersistenceConflict)))
	assert.Equal(t, "internal", Reason(fmt.Errorf("boom")))
}

