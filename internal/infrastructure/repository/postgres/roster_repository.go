package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	qb "github.com/riskibarqy/overmind/internal/platform/querybuilder"
)

type RosterRepository struct {
	tx *sqlx.Tx
}

// Pro names and clan tags are unique case-insensitively.
func (r *RosterRepository) GetPlayerByProName(ctx context.Context, proName string) (roster.Player, bool, error) {
	query, args, err := qb.Select("id", "pro_name", "nationality", "team_id", "created_at").From("players").
		Where(qb.Expr("lower(pro_name) = lower(?)", strings.TrimSpace(proName))).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Player{}, false, nil
		}
		return roster.Player{}, false, fmt.Errorf("get player %q: %w", proName, err)
	}
	return playerFromRow(row), true, nil
}

func (r *RosterRepository) InsertPlayer(ctx context.Context, item roster.Player) (roster.Player, bool, error) {
	if err := item.Validate(); err != nil {
		return roster.Player{}, false, err
	}

	model := playerInsertModel{
		ProName:     strings.TrimSpace(item.ProName),
		Nationality: optionalString(item.Nationality),
		TeamID:      optionalInt64(item.TeamID),
	}
	query, args, err := qb.InsertModel("players", model, `ON CONFLICT ((lower(pro_name))) DO NOTHING
RETURNING id, pro_name, nationality, team_id, created_at`)
	if err != nil {
		return roster.Player{}, false, fmt.Errorf("build insert player query: %w", err)
	}

	var row playerTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) && !isUniqueViolation(err) {
			return roster.Player{}, false, fmt.Errorf("insert player %q: %w", item.ProName, err)
		}
		existing, found, getErr := r.GetPlayerByProName(ctx, item.ProName)
		if getErr != nil {
			return roster.Player{}, false, getErr
		}
		if !found {
			return roster.Player{}, false, fmt.Errorf("insert player %q: %w", item.ProName, unitofwork.ErrConflict)
		}
		return existing, false, nil
	}
	return playerFromRow(row), true, nil
}

func (r *RosterRepository) GetTeamByClanTag(ctx context.Context, clanTag string) (roster.Team, bool, error) {
	clanTag = strings.TrimSpace(clanTag)
	if clanTag == "" {
		return roster.Team{}, false, nil
	}

	query, args, err := qb.Select("id", "clan_name", "clan_tag", "created_at").From("teams").
		Where(qb.Expr("lower(clan_tag) = lower(?)", clanTag)).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Team{}, false, nil
		}
		return roster.Team{}, false, fmt.Errorf("get team %q: %w", clanTag, err)
	}
	return roster.Team{ID: row.ID, ClanName: row.ClanName, ClanTag: row.ClanTag}, true, nil
}

func (r *RosterRepository) AssignTeam(ctx context.Context, playerID, teamID int64) error {
	query, args, err := qb.Update("players").
		Set("team_id", teamID).
		Where(qb.Eq("id", playerID), qb.IsNull("team_id")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build assign team query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("assign team %d to player %d: %w", teamID, playerID, err)
	}
	return nil
}

func playerFromRow(row playerTableModel) roster.Player {
	return roster.Player{
		ID:          row.ID,
		ProName:     row.ProName,
		Nationality: row.Nationality.String,
		TeamID:      nullInt64ToInt64(row.TeamID),
	}
}
