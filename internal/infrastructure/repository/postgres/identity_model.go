package postgres

import (
	"database/sql"
	"time"
)

const identityColumns = `id, region, realm, profile_id, display_name, clan_tag, clan_name, favorite_race,
ladder_id, mmr, rank, points, previous_rank, wins, losses, joined_at, player_id, created_at`

type identityTableModel struct {
	ID           int64         `db:"id"`
	Region       int           `db:"region"`
	Realm        int           `db:"realm"`
	ProfileID    int64         `db:"profile_id"`
	DisplayName  string        `db:"display_name"`
	ClanTag      string        `db:"clan_tag"`
	ClanName     string        `db:"clan_name"`
	FavoriteRace string        `db:"favorite_race"`
	LadderID     sql.NullInt64 `db:"ladder_id"`
	MMR          sql.NullInt64 `db:"mmr"`
	Rank         sql.NullInt64 `db:"rank"`
	Points       sql.NullInt64 `db:"points"`
	PreviousRank sql.NullInt64 `db:"previous_rank"`
	Wins         sql.NullInt64 `db:"wins"`
	Losses       sql.NullInt64 `db:"losses"`
	JoinedAt     sql.NullTime  `db:"joined_at"`
	PlayerID     sql.NullInt64 `db:"player_id"`
	CreatedAt    time.Time     `db:"created_at"`
}

type identityInsertModel struct {
	Region       int        `db:"region"`
	Realm        int        `db:"realm"`
	ProfileID    int64      `db:"profile_id"`
	DisplayName  string     `db:"display_name"`
	ClanTag      string     `db:"clan_tag"`
	ClanName     string     `db:"clan_name"`
	FavoriteRace string     `db:"favorite_race"`
	LadderID     *int64     `db:"ladder_id"`
	MMR          *int64     `db:"mmr"`
	Rank         *int64     `db:"rank"`
	Points       *int64     `db:"points"`
	PreviousRank *int64     `db:"previous_rank"`
	Wins         *int64     `db:"wins"`
	Losses       *int64     `db:"losses"`
	JoinedAt     *time.Time `db:"joined_at"`
	PlayerID     *int64     `db:"player_id"`
}
