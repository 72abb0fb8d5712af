package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
)

// Store is an in-process database with unique keys enforced at insert time.
// A key inserted by an open unit of work blocks competing inserts until that
// unit commits or rolls back, the way a unique index does in postgres.
type Store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	identities map[identity.Locator]identity.Identity
	players    map[string]roster.Player
	teams      map[string]roster.Team
	maps       map[digest.Digest]gamemap.Record
	replays    map[digest.Digest]replay.Record
	links      map[int64][]replay.IdentityLink

	claims map[string]*claim
}

type claim struct {
	owner *UnitOfWork
	done  chan struct{}
}

type Counts struct {
	Identities int
	Players    int
	Maps       int
	Replays    int
	Links      int
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		identities: make(map[identity.Locator]identity.Identity),
		players:    make(map[string]roster.Player),
		teams:      make(map[string]roster.Team),
		maps:       make(map[digest.Digest]gamemap.Record),
		replays:    make(map[digest.Digest]replay.Record),
		links:      make(map[int64][]replay.IdentityLink),
		claims:     make(map[string]*claim),
	}
}

var _ unitofwork.Factory = (*Store)(nil)

func (s *Store) Begin(_ context.Context) (unitofwork.UnitOfWork, error) {
	return newUnitOfWork(s), nil
}

// SeedTeams registers curated teams. The importer never creates teams itself.
func (s *Store) SeedTeams(teams ...roster.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, team := range teams {
		if team.ID == 0 {
			team.ID = s.nextIDLocked()
		}
		s.teams[lowerKey(team.ClanTag)] = team
	}
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := 0
	for _, items := range s.links {
		links += len(items)
	}
	return Counts{
		Identities: len(s.identities),
		Players:    len(s.players),
		Maps:       len(s.maps),
		Replays:    len(s.replays),
		Links:      links,
	}
}

// ReplayRecords returns committed replays ordered by id.
func (s *Store) ReplayRecords() []replay.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]replay.Record, 0, len(s.replays))
	for _, item := range s.replays {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IdentityRecords returns committed identities ordered by locator.
func (s *Store) IdentityRecords() []identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]identity.Identity, 0, len(s.identities))
	for _, item := range s.identities {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locator.Less(out[j].Locator) })
	return out
}

func (s *Store) Player(proName string) (roster.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.players[lowerKey(proName)]
	return item, ok
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func identityKey(locator identity.Locator) string { return "identity:" + locator.String() }
func playerKey(proName string) string             { return "player:" + lowerKey(proName) }
func mapKey(hash digest.Digest) string             { return "map:" + hash.Hex() }
func replayKey(hash digest.Digest) string          { return "replay:" + hash.Hex() }
