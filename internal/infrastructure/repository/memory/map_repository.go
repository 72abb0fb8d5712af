package memory

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
)

type mapRepository struct {
	uow *UnitOfWork
}

func (r mapRepository) GetByHash(_ context.Context, hash digest.Digest) (gamemap.Record, bool, error) {
	var (
		item  gamemap.Record
		found bool
	)
	err := r.uow.readLocked(func() {
		if item, found = r.uow.maps[hash]; found {
			return
		}
		item, found = r.uow.store.maps[hash]
	})
	return item, found, err
}

func (r mapRepository) Insert(ctx context.Context, item gamemap.Record) (gamemap.Record, bool, error) {
	if err := item.Validate(); err != nil {
		return gamemap.Record{}, false, err
	}

	s := r.uow.store
	owned, err := r.uow.lockKey(ctx, mapKey(item.Hash), func() bool {
		_, ok := s.maps[item.Hash]
		return ok
	})
	if err != nil {
		return gamemap.Record{}, false, err
	}
	defer s.mu.Unlock()

	if !owned {
		return s.maps[item.Hash], false, nil
	}
	if staged, ok := r.uow.maps[item.Hash]; ok {
		return staged, false, nil
	}

	item.ID = s.nextIDLocked()
	r.uow.maps[item.Hash] = item
	return item, true, nil
}
