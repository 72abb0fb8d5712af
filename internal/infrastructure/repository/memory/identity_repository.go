package memory

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/identity"
)

type identityRepository struct {
	uow *UnitOfWork
}

func (r identityRepository) GetByLocator(_ context.Context, locator identity.Locator) (identity.Identity, bool, error) {
	var (
		item  identity.Identity
		found bool
	)
	err := r.uow.readLocked(func() {
		if item, found = r.uow.identities[locator]; found {
			return
		}
		item, found = r.uow.store.identities[locator]
	})
	return item, found, err
}

func (r identityRepository) Insert(ctx context.Context, item identity.Identity) (identity.Identity, bool, error) {
	if err := item.Validate(); err != nil {
		return identity.Identity{}, false, err
	}

	s := r.uow.store
	owned, err := r.uow.lockKey(ctx, identityKey(item.Locator), func() bool {
		_, ok := s.identities[item.Locator]
		return ok
	})
	if err != nil {
		return identity.Identity{}, false, err
	}
	defer s.mu.Unlock()

	if !owned {
		return s.identities[item.Locator], false, nil
	}
	if staged, ok := r.uow.identities[item.Locator]; ok {
		return staged, false, nil
	}

	item.ID = s.nextIDLocked()
	item.CreatedAt = s.now()
	r.uow.identities[item.Locator] = item
	return item, true, nil
}
