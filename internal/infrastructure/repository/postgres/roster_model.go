package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID          int64          `db:"id"`
	ProName     string         `db:"pro_name"`
	Nationality sql.NullString `db:"nationality"`
	TeamID      sql.NullInt64  `db:"team_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

type playerInsertModel struct {
	ProName     string  `db:"pro_name"`
	Nationality *string `db:"nationality"`
	TeamID      *int64  `db:"team_id"`
}

type teamTableModel struct {
	ID        int64     `db:"id"`
	ClanName  string    `db:"clan_name"`
	ClanTag   string    `db:"clan_tag"`
	CreatedAt time.Time `db:"created_at"`
}
