package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	qb "github.com/riskibarqy/overmind/internal/platform/querybuilder"
)

type MapRepository struct {
	tx *sqlx.Tx
}

func (r *MapRepository) GetByHash(ctx context.Context, hash digest.Digest) (gamemap.Record, bool, error) {
	query, args, err := qb.Select(mapColumns).From("maps").
		Where(qb.Eq("hash", hash.Bytes())).
		Limit(1).
		ToSQL()
	if err != nil {
		return gamemap.Record{}, false, fmt.Errorf("build get map query: %w", err)
	}

	var row mapTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamemap.Record{}, false, nil
		}
		return gamemap.Record{}, false, fmt.Errorf("get map %s: %w", hash, err)
	}

	item, err := mapFromRow(row)
	if err != nil {
		return gamemap.Record{}, false, err
	}
	return item, true, nil
}

func (r *MapRepository) Insert(ctx context.Context, item gamemap.Record) (gamemap.Record, bool, error) {
	if err := item.Validate(); err != nil {
		return gamemap.Record{}, false, err
	}

	model := mapInsertModel{
		Hash:         item.Hash.Bytes(),
		Name:         item.Name,
		Width:        item.Width,
		Height:       item.Height,
		TileSet:      item.TileSet,
		CameraTop:    item.CameraTop,
		CameraLeft:   item.CameraLeft,
		CameraBottom: item.CameraBottom,
		CameraRight:  item.CameraRight,
	}
	query, args, err := qb.InsertModel("maps", model, `ON CONFLICT (hash) DO NOTHING
RETURNING `+mapColumns)
	if err != nil {
		return gamemap.Record{}, false, fmt.Errorf("build insert map query: %w", err)
	}

	var row mapTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) && !isUniqueViolation(err) {
			return gamemap.Record{}, false, fmt.Errorf("insert map %s: %w", item.Hash, err)
		}
		existing, found, getErr := r.GetByHash(ctx, item.Hash)
		if getErr != nil {
			return gamemap.Record{}, false, getErr
		}
		if !found {
			return gamemap.Record{}, false, fmt.Errorf("insert map %s: %w", item.Hash, unitofwork.ErrConflict)
		}
		return existing, false, nil
	}

	created, err := mapFromRow(row)
	if err != nil {
		return gamemap.Record{}, false, err
	}
	return created, true, nil
}

func mapFromRow(row mapTableModel) (gamemap.Record, error) {
	hash, err := scanDigest(row.Hash)
	if err != nil {
		return gamemap.Record{}, err
	}
	return gamemap.Record{
		ID:           row.ID,
		Hash:         hash,
		Name:         row.Name,
		Width:        row.Width,
		Height:       row.Height,
		TileSet:      row.TileSet,
		CameraTop:    row.CameraTop,
		CameraLeft:   row.CameraLeft,
		CameraBottom: row.CameraBottom,
		CameraRight:  row.CameraRight,
	}, nil
}
