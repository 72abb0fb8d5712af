package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	qb "github.com/riskibarqy/overmind/internal/platform/querybuilder"
)

type ReplayRepository struct {
	tx *sqlx.Tx
}

func (r *ReplayRepository) GetByHash(ctx context.Context, hash digest.Digest) (replay.Record, bool, error) {
	query, args, err := qb.Select(replayColumns).From("replays").
		Where(qb.Eq("hash", hash.Bytes())).
		Limit(1).
		ToSQL()
	if err != nil {
		return replay.Record{}, false, fmt.Errorf("build get replay query: %w", err)
	}

	var row replayTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return replay.Record{}, false, nil
		}
		return replay.Record{}, false, fmt.Errorf("get replay %s: %w", hash, err)
	}

	item, err := replayFromRow(row)
	if err != nil {
		return replay.Record{}, false, err
	}
	return item, true, nil
}

func (r *ReplayRepository) ExistsByHash(ctx context.Context, hash digest.Digest) (bool, error) {
	var exists bool
	if err := r.tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM replays WHERE hash = $1)`, hash.Bytes()); err != nil {
		return false, fmt.Errorf("check replay %s: %w", hash, err)
	}
	return exists, nil
}

func (r *ReplayRepository) Insert(ctx context.Context, item replay.Record) (replay.Record, bool, error) {
	if err := item.Validate(); err != nil {
		return replay.Record{}, false, err
	}

	model := replayInsertModel{
		Hash:         item.Hash.Bytes(),
		OriginalPath: item.OriginalPath,
		MapID:        item.MapID,
		WinnerID:     optionalInt64(item.WinnerID),
		Versions:     pq.Int64Array(append([]int64(nil), item.Versions...)),
		Category:     item.Category,
		StartTime:    item.StartTime.UTC(),
		EndTime:      item.EndTime.UTC(),
		RealLength:   strconv.FormatInt(int64(item.RealLength/time.Second), 10) + " seconds",
		Expansion:    item.Expansion,
		Frames:       item.Frames,
		GameFPS:      item.GameFPS,
		RealType:     item.RealType,
		IsLadder:     item.IsLadder,
		IsPrivate:    item.IsPrivate,
		Speed:        item.Speed,
		Region:       item.Region,
	}
	query, args, err := qb.InsertModel("replays", model, `ON CONFLICT (hash) DO NOTHING
RETURNING `+replayColumns)
	if err != nil {
		return replay.Record{}, false, fmt.Errorf("build insert replay query: %w", err)
	}

	var row replayTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) && !isUniqueViolation(err) {
			return replay.Record{}, false, fmt.Errorf("insert replay %s: %w", item.Hash, err)
		}
		existing, found, getErr := r.GetByHash(ctx, item.Hash)
		if getErr != nil {
			return replay.Record{}, false, getErr
		}
		if !found {
			return replay.Record{}, false, fmt.Errorf("insert replay %s: %w", item.Hash, unitofwork.ErrConflict)
		}
		return existing, false, nil
	}

	created, err := replayFromRow(row)
	if err != nil {
		return replay.Record{}, false, err
	}
	return created, true, nil
}

func (r *ReplayRepository) InsertLinks(ctx context.Context, links []replay.IdentityLink) error {
	if len(links) == 0 {
		return nil
	}

	builder := qb.InsertInto("replay_identities").Columns("replay_id", "identity_id", "slot")
	for _, link := range links {
		if link.ReplayID <= 0 || link.IdentityID <= 0 {
			return fmt.Errorf("replay link requires replay and identity ids, got %+v", link)
		}
		builder.Values(link.ReplayID, link.IdentityID, link.Slot)
	}
	query, args, err := builder.Suffix(`ON CONFLICT (replay_id, identity_id) DO NOTHING`).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert replay links query: %w", err)
	}

	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert replay links: %w", err)
	}
	return nil
}

func (r *ReplayRepository) ListLinks(ctx context.Context, replayID int64) ([]replay.IdentityLink, error) {
	query, args, err := qb.Select("replay_id", "identity_id", "slot").From("replay_identities").
		Where(qb.Eq("replay_id", replayID)).
		OrderBy("slot", "identity_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list replay links query: %w", err)
	}

	var rows []replayLinkTableModel
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list replay links: %w", err)
	}

	out := make([]replay.IdentityLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, replay.IdentityLink{ReplayID: row.ReplayID, IdentityID: row.IdentityID, Slot: row.Slot})
	}
	return out, nil
}

func replayFromRow(row replayTableModel) (replay.Record, error) {
	hash, err := scanDigest(row.Hash)
	if err != nil {
		return replay.Record{}, err
	}
	return replay.Record{
		ID:           row.ID,
		Hash:         hash,
		OriginalPath: row.OriginalPath,
		MapID:        row.MapID,
		WinnerID:     nullInt64ToInt64(row.WinnerID),
		Versions:     append([]int64(nil), row.Versions...),
		Category:     row.Category,
		StartTime:    row.StartTime.UTC(),
		EndTime:      row.EndTime.UTC(),
		RealLength:   time.Duration(row.RealLengthSeconds) * time.Second,
		Expansion:    row.Expansion,
		Frames:       row.Frames,
		GameFPS:      row.GameFPS,
		RealType:     row.RealType,
		IsLadder:     row.IsLadder,
		IsPrivate:    row.IsPrivate,
		Speed:        row.Speed,
		Region:       row.Region,
	}, nil
}
