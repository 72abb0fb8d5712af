package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// real_length is an interval; it is read back as whole seconds.
const replayColumns = `id, hash, original_path, map_id, winner_id, versions, category, start_time, end_time,
EXTRACT(EPOCH FROM real_length)::bigint AS real_length_seconds, expansion, frames, game_fps, real_type,
is_ladder, is_private, speed, region, created_at`

type replayTableModel struct {
	ID                int64         `db:"id"`
	Hash              []byte        `db:"hash"`
	OriginalPath      string        `db:"original_path"`
	MapID             int64         `db:"map_id"`
	WinnerID          sql.NullInt64 `db:"winner_id"`
	Versions          pq.Int64Array `db:"versions"`
	Category          string        `db:"category"`
	StartTime         time.Time     `db:"start_time"`
	EndTime           time.Time     `db:"end_time"`
	RealLengthSeconds int64         `db:"real_length_seconds"`
	Expansion         string        `db:"expansion"`
	Frames            int64         `db:"frames"`
	GameFPS           float64       `db:"game_fps"`
	RealType          string        `db:"real_type"`
	IsLadder          bool          `db:"is_ladder"`
	IsPrivate         bool          `db:"is_private"`
	Speed             string        `db:"speed"`
	Region            string        `db:"region"`
	CreatedAt         time.Time     `db:"created_at"`
}

type replayInsertModel struct {
	Hash         []byte        `db:"hash"`
	OriginalPath string        `db:"original_path"`
	MapID        int64         `db:"map_id"`
	WinnerID     *int64        `db:"winner_id"`
	Versions     pq.Int64Array `db:"versions"`
	Category     string        `db:"category"`
	StartTime    time.Time     `db:"start_time"`
	EndTime      time.Time     `db:"end_time"`
	RealLength   string        `db:"real_length"`
	Expansion    string        `db:"expansion"`
	Frames       int64         `db:"frames"`
	GameFPS      float64       `db:"game_fps"`
	RealType     string        `db:"real_type"`
	IsLadder     bool          `db:"is_ladder"`
	IsPrivate    bool          `db:"is_private"`
	Speed        string        `db:"speed"`
	Region       string        `db:"region"`
}

type replayLinkTableModel struct {
	ReplayID   int64 `db:"replay_id"`
	IdentityID int64 `db:"identity_id"`
	Slot       int   `db:"slot"`
}
