package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/riskibarqy/overmind/internal/infrastructure/archive"
	"github.com/riskibarqy/overmind/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overmind/internal/platform/logging"
)

var (
	serralLocator = identity.Locator{Region: 2, Realm: 1, ProfileID: 315071}
	maruLocator   = identity.Locator{Region: 3, Realm: 1, ProfileID: 2275101}
	clemLocator   = identity.Locator{Region: 2, Realm: 1, ProfileID: 1337}
)

// fakeDecoder decodes files whose content names a registered game. The
// replay digest is the sha256 of the file bytes, so copies dedup.
type fakeDecoder struct {
	mu       sync.Mutex
	games    map[string]replay.Decoded
	mapLoads atomic.Int32
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{games: make(map[string]replay.Decoded)}
}

func (d *fakeDecoder) register(content string, decoded replay.Decoded) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.games[content] = decoded
}

func (d *fakeDecoder) Decode(ctx context.Context, path string, _ LoadLevel) (replay.Decoded, error) {
	if err := ctx.Err(); err != nil {
		return replay.Decoded{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return replay.Decoded{}, decodeError(err, "read %s", path)
	}
	content := strings.TrimSpace(string(raw))
	if content == "panic" {
		panic("decoder exploded on " + path)
	}

	d.mu.Lock()
	decoded, ok := d.games[content]
	d.mu.Unlock()
	if !ok {
		return replay.Decoded{}, decodeError(nil, "unknown replay content in %s", path)
	}
	decoded.Hash = digest.Sum(raw)
	return decoded, nil
}

func (d *fakeDecoder) LoadMap(_ context.Context, _ string, decoded replay.Decoded) (gamemap.Record, error) {
	d.mapLoads.Add(1)
	return gamemap.Record{Hash: decoded.MapHash, Name: "Zen LE", Width: 160, Height: 148, TileSet: "Char"}, nil
}

// fakeFetcher answers ladder lookups from a table and counts calls per locator.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[identity.Locator]ladder.Result
	calls   map[identity.Locator]int
	delay   time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: make(map[identity.Locator]ladder.Result),
		calls:   make(map[identity.Locator]int),
	}
}

func (f *fakeFetcher) set(result ladder.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[result.Snapshot.Locator] = result
}

func (f *fakeFetcher) Fetch(_ context.Context, locator identity.Locator) ladder.Result {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[locator]++
	if result, ok := f.results[locator]; ok {
		return result
	}
	return ladder.NotFound(locator)
}

func (f *fakeFetcher) callsFor(locator identity.Locator) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

type failingArchive struct{}

func (failingArchive) Exists(digest.Digest) (bool, error) { return false, nil }
func (failingArchive) Write(context.Context, digest.Digest, string) (string, error) {
	return "", errors.New("disk full")
}

type recordingFailures struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingFailures) Record(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingFailures) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func game(first, second replay.Participant, winner *identity.Locator) replay.Decoded {
	return replay.Decoded{
		MapHash:       digest.Sum([]byte("zen-le")),
		GameType:      "1v1",
		Category:      "Ladder",
		Versions:      []int64{5, 0, 11, 91115},
		Expansion:     "LotV",
		Frames:        22400,
		GameFPS:       16,
		RealType:      "1v1",
		IsLadder:      true,
		Speed:         "Faster",
		Region:        "eu",
		StartTime:     time.Date(2023, 3, 4, 18, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2023, 3, 4, 18, 14, 0, 0, time.UTC),
		TimeZoneHours: 2,
		RealLength:    14*time.Minute + 500*time.Millisecond,
		Participants:  []replay.Participant{first, second},
		WinnerLocator: winner,
	}
}

func serral() replay.Participant {
	return replay.Participant{PID: 1, Name: "Serral", ClanTag: "ENCE", Race: identity.RaceZerg, Locator: serralLocator}
}

func maru() replay.Participant {
	return replay.Participant{PID: 2, Name: "Maru", Race: identity.RaceTerran, Locator: maruLocator}
}

func clem() replay.Participant {
	return replay.Participant{PID: 2, Name: "Clem", Race: identity.RaceTerran, Locator: clemLocator}
}

type pipeline struct {
	store    *memory.Store
	decoder  *fakeDecoder
	fetcher  *fakeFetcher
	archive  *archive.Store
	barcodes *naming.BarcodeLog
	importer *ImportService
	source   string
}

func newPipeline(t *testing.T, softFail bool) *pipeline {
	t.Helper()

	archiveStore, err := archive.NewStore(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	p := &pipeline{
		store:    memory.NewStore(),
		decoder:  newFakeDecoder(),
		fetcher:  newFakeFetcher(),
		archive:  archiveStore,
		barcodes: naming.NewBarcodeLog(),
		source:   t.TempDir(),
	}
	aliases := naming.NewAliasTable(map[string][]string{
		"serral": {"joona"},
		"maru":   {"marumaru"},
	})
	logger := logging.NewNop()
	identities := NewIdentityService(p.fetcher, IdentityServiceConfig{LadderSoftFail: softFail, SnapshotTTL: time.Minute}, logger)
	store := NewStoreService(p.decoder, p.archive, logger)
	p.importer = NewImportService(p.decoder, aliases, p.barcodes, p.store, identities, store, ImportServiceConfig{}, logger)
	return p
}

func (p *pipeline) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(p.source, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write replay: %v", err)
	}
	return path
}

func enceTeam() roster.Team {
	return roster.Team{ID: 77, ClanName: "ENCE", ClanTag: "ENCE"}
}
