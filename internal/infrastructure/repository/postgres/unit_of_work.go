package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
)

// UnitOfWorkFactory opens one read-committed transaction per file import.
type UnitOfWorkFactory struct {
	db *sqlx.DB
}

var _ unitofwork.Factory = (*UnitOfWorkFactory)(nil)

func NewUnitOfWorkFactory(db *sqlx.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

func (f *UnitOfWorkFactory) Begin(ctx context.Context) (unitofwork.UnitOfWork, error) {
	tx, err := f.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	return &UnitOfWork{
		tx:         tx,
		identities: &IdentityRepository{tx: tx},
		roster:     &RosterRepository{tx: tx},
		maps:       &MapRepository{tx: tx},
		replays:    &ReplayRepository{tx: tx},
	}, nil
}

type UnitOfWork struct {
	tx         *sqlx.Tx
	identities *IdentityRepository
	roster     *RosterRepository
	maps       *MapRepository
	replays    *ReplayRepository
	done       bool
}

func (u *UnitOfWork) Identities() identity.Repository { return u.identities }
func (u *UnitOfWork) Roster() roster.Repository       { return u.roster }
func (u *UnitOfWork) Maps() gamemap.Repository        { return u.maps }
func (u *UnitOfWork) Replays() replay.Repository      { return u.replays }

func (u *UnitOfWork) Commit() error {
	if u.done {
		return fmt.Errorf("commit unit of work: %w", sql.ErrTxDone)
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("commit unit of work: %w", unitofwork.ErrConflict)
		}
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// Rollback is a no-op once the unit of work has been committed or rolled back.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback unit of work: %w", err)
	}
	return nil
}
