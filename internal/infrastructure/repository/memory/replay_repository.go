package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/replay"
)

type replayRepository struct {
	uow *UnitOfWork
}

func (r replayRepository) GetByHash(_ context.Context, hash digest.Digest) (replay.Record, bool, error) {
	var (
		item  replay.Record
		found bool
	)
	err := r.uow.readLocked(func() {
		if item, found = r.uow.replays[hash]; found {
			return
		}
		item, found = r.uow.store.replays[hash]
	})
	return item, found, err
}

func (r replayRepository) ExistsByHash(ctx context.Context, hash digest.Digest) (bool, error) {
	_, found, err := r.GetByHash(ctx, hash)
	return found, err
}

func (r replayRepository) Insert(ctx context.Context, item replay.Record) (replay.Record, bool, error) {
	if err := item.Validate(); err != nil {
		return replay.Record{}, false, err
	}

	s := r.uow.store
	owned, err := r.uow.lockKey(ctx, replayKey(item.Hash), func() bool {
		_, ok := s.replays[item.Hash]
		return ok
	})
	if err != nil {
		return replay.Record{}, false, err
	}
	defer s.mu.Unlock()

	if !owned {
		return s.replays[item.Hash], false, nil
	}
	if staged, ok := r.uow.replays[item.Hash]; ok {
		return staged, false, nil
	}

	item.ID = s.nextIDLocked()
	item.Versions = append([]int64(nil), item.Versions...)
	r.uow.replays[item.Hash] = item
	return item, true, nil
}

func (r replayRepository) InsertLinks(_ context.Context, links []replay.IdentityLink) error {
	for _, link := range links {
		if link.ReplayID <= 0 || link.IdentityID <= 0 {
			return fmt.Errorf("replay link requires replay and identity ids, got %+v", link)
		}
	}
	return r.uow.readLocked(func() {
		for _, link := range links {
			if !hasLink(r.uow.linksFor(link.ReplayID), link.IdentityID) {
				r.uow.links = append(r.uow.links, link)
			}
		}
	})
}

func (r replayRepository) ListLinks(_ context.Context, replayID int64) ([]replay.IdentityLink, error) {
	var out []replay.IdentityLink
	err := r.uow.readLocked(func() {
		out = append(out, r.uow.linksFor(replayID)...)
	})
	return out, err
}

func (u *UnitOfWork) linksFor(replayID int64) []replay.IdentityLink {
	out := append([]replay.IdentityLink(nil), u.store.links[replayID]...)
	for _, link := range u.links {
		if link.ReplayID == replayID {
			out = append(out, link)
		}
	}
	return out
}
