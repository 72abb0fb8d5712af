package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
)

var ErrUnitOfWorkClosed = errors.New("unit of work is closed")

type uowState int

const (
	uowOpen uowState = iota
	uowCommitted
	uowRolledBack
)

// UnitOfWork stages writes until Commit. It must be used by one goroutine.
type UnitOfWork struct {
	store *Store
	state uowState

	claimed     []string
	identities  map[identity.Locator]identity.Identity
	players     map[string]roster.Player
	maps        map[digest.Digest]gamemap.Record
	replays     map[digest.Digest]replay.Record
	links       []replay.IdentityLink
	assignments map[int64]int64
}

func newUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{
		store:       store,
		identities:  make(map[identity.Locator]identity.Identity),
		players:     make(map[string]roster.Player),
		maps:        make(map[digest.Digest]gamemap.Record),
		replays:     make(map[digest.Digest]replay.Record),
		assignments: make(map[int64]int64),
	}
}

func (u *UnitOfWork) Identities() identity.Repository { return identityRepository{uow: u} }
func (u *UnitOfWork) Roster() roster.Repository       { return rosterRepository{uow: u} }
func (u *UnitOfWork) Maps() gamemap.Repository        { return mapRepository{uow: u} }
func (u *UnitOfWork) Replays() replay.Repository      { return replayRepository{uow: u} }

func (u *UnitOfWork) Commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.state != uowOpen {
		return ErrUnitOfWorkClosed
	}

	for locator, item := range u.identities {
		s.identities[locator] = item
	}
	for key, item := range u.players {
		s.players[key] = item
	}
	for hash, item := range u.maps {
		s.maps[hash] = item
	}
	for hash, item := range u.replays {
		s.replays[hash] = item
	}
	for playerID, teamID := range u.assignments {
		for key, player := range s.players {
			if player.ID == playerID && player.TeamID == 0 {
				player.TeamID = teamID
				s.players[key] = player
			}
		}
	}
	for _, link := range u.links {
		if !hasLink(s.links[link.ReplayID], link.IdentityID) {
			s.links[link.ReplayID] = append(s.links[link.ReplayID], link)
		}
	}

	u.releaseLocked()
	u.state = uowCommitted
	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (u *UnitOfWork) Rollback() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.state != uowOpen {
		return nil
	}
	u.releaseLocked()
	u.identities = nil
	u.players = nil
	u.maps = nil
	u.replays = nil
	u.links = nil
	u.assignments = nil
	u.state = uowRolledBack
	return nil
}

func (u *UnitOfWork) releaseLocked() {
	for _, key := range u.claimed {
		if c, ok := u.store.claims[key]; ok && c.owner == u {
			delete(u.store.claims, key)
			close(c.done)
		}
	}
	u.claimed = nil
}

// lockKey waits until no other open unit of work holds key. On success the
// store mutex is held and owned reports whether u holds the claim; owned is
// false when the key is already committed. On error the mutex is released.
func (u *UnitOfWork) lockKey(ctx context.Context, key string, committed func() bool) (bool, error) {
	s := u.store
	for {
		s.mu.Lock()
		if u.state != uowOpen {
			s.mu.Unlock()
			return false, ErrUnitOfWorkClosed
		}
		if committed() {
			return false, nil
		}
		c, held := s.claims[key]
		if !held {
			s.claims[key] = &claim{owner: u, done: make(chan struct{})}
			u.claimed = append(u.claimed, key)
			return true, nil
		}
		if c.owner == u {
			return true, nil
		}
		done := c.done
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-done:
		}
	}
}

// readLocked runs fn under the store mutex for an open unit of work.
func (u *UnitOfWork) readLocked(fn func()) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.state != uowOpen {
		return ErrUnitOfWorkClosed
	}
	fn()
	return nil
}

func hasLink(links []replay.IdentityLink, identityID int64) bool {
	for _, link := range links {
		if link.IdentityID == identityID {
			return true
		}
	}
	return false
}

func lowerKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
