package unitofwork

import (
	"context"
	"errors"

	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
)

// ErrConflict reports a unique-key race whose winning row could not be re-read.
var ErrConflict = errors.New("unique key conflict")

// UnitOfWork is the transactional scope of one file import. It is owned by a single worker.
type UnitOfWork interface {
	Identities() identity.Repository
	Roster() roster.Repository
	Maps() gamemap.Repository
	Replays() replay.Repository
	Commit() error
	Rollback() error
}

type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
