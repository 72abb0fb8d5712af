package memory

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/roster"
)

type rosterRepository struct {
	uow *UnitOfWork
}

func (r rosterRepository) GetPlayerByProName(_ context.Context, proName string) (roster.Player, bool, error) {
	key := lowerKey(proName)
	var (
		item  roster.Player
		found bool
	)
	err := r.uow.readLocked(func() {
		if item, found = r.uow.players[key]; found {
			return
		}
		item, found = r.uow.store.players[key]
	})
	return item, found, err
}

func (r rosterRepository) InsertPlayer(ctx context.Context, item roster.Player) (roster.Player, bool, error) {
	if err := item.Validate(); err != nil {
		return roster.Player{}, false, err
	}

	s := r.uow.store
	key := lowerKey(item.ProName)
	owned, err := r.uow.lockKey(ctx, playerKey(item.ProName), func() bool {
		_, ok := s.players[key]
		return ok
	})
	if err != nil {
		return roster.Player{}, false, err
	}
	defer s.mu.Unlock()

	if !owned {
		return s.players[key], false, nil
	}
	if staged, ok := r.uow.players[key]; ok {
		return staged, false, nil
	}

	item.ID = s.nextIDLocked()
	r.uow.players[key] = item
	return item, true, nil
}

func (r rosterRepository) GetTeamByClanTag(_ context.Context, clanTag string) (roster.Team, bool, error) {
	var (
		item  roster.Team
		found bool
	)
	err := r.uow.readLocked(func() {
		item, found = r.uow.store.teams[lowerKey(clanTag)]
	})
	return item, found, err
}

func (r rosterRepository) AssignTeam(_ context.Context, playerID, teamID int64) error {
	return r.uow.readLocked(func() {
		if _, ok := r.uow.assignments[playerID]; !ok {
			r.uow.assignments[playerID] = teamID
		}
	})
}
