package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	qb "github.com/riskibarqy/overmind/internal/platform/querybuilder"
)

type IdentityRepository struct {
	tx *sqlx.Tx
}

func (r *IdentityRepository) GetByLocator(ctx context.Context, locator identity.Locator) (identity.Identity, bool, error) {
	query, args, err := qb.Select(identityColumns).From("identities").
		Where(
			qb.Eq("region", locator.Region),
			qb.Eq("realm", locator.Realm),
			qb.Eq("profile_id", locator.ProfileID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return identity.Identity{}, false, fmt.Errorf("build get identity query: %w", err)
	}

	var row identityTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.Identity{}, false, nil
		}
		return identity.Identity{}, false, fmt.Errorf("get identity %s: %w", locator, err)
	}
	return identityFromRow(row), true, nil
}

// Insert never overwrites. A row that already exists for the locator is returned with created=false.
func (r *IdentityRepository) Insert(ctx context.Context, item identity.Identity) (identity.Identity, bool, error) {
	if err := item.Validate(); err != nil {
		return identity.Identity{}, false, err
	}

	model := identityInsertModel{
		Region:       item.Locator.Region,
		Realm:        item.Locator.Realm,
		ProfileID:    item.Locator.ProfileID,
		DisplayName:  item.DisplayName,
		ClanTag:      item.ClanTag,
		ClanName:     item.ClanName,
		FavoriteRace: string(item.FavoriteRace),
		PlayerID:     optionalInt64(item.RosterPlayerID),
	}
	if standing := item.Standing; standing != nil {
		model.LadderID = optionalInt64(standing.LadderID)
		model.MMR = optionalInt(standing.MMR)
		model.Rank = optionalInt(standing.Rank)
		model.Points = optionalInt(standing.Points)
		model.PreviousRank = optionalInt(standing.PreviousRank)
		model.Wins = optionalInt(standing.Wins)
		model.Losses = optionalInt(standing.Losses)
		model.JoinedAt = optionalTime(standing.JoinedAt)
	}

	query, args, err := qb.InsertModel("identities", model, `ON CONFLICT (region, realm, profile_id) DO NOTHING
RETURNING `+identityColumns)
	if err != nil {
		return identity.Identity{}, false, fmt.Errorf("build insert identity query: %w", err)
	}

	var row identityTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) && !isUniqueViolation(err) {
			return identity.Identity{}, false, fmt.Errorf("insert identity %s: %w", item.Locator, err)
		}
		existing, found, getErr := r.GetByLocator(ctx, item.Locator)
		if getErr != nil {
			return identity.Identity{}, false, getErr
		}
		if !found {
			return identity.Identity{}, false, fmt.Errorf("insert identity %s: %w", item.Locator, unitofwork.ErrConflict)
		}
		return existing, false, nil
	}
	return identityFromRow(row), true, nil
}

func identityFromRow(row identityTableModel) identity.Identity {
	out := identity.Identity{
		ID:             row.ID,
		Locator:        identity.Locator{Region: row.Region, Realm: row.Realm, ProfileID: row.ProfileID},
		DisplayName:    row.DisplayName,
		ClanTag:        row.ClanTag,
		ClanName:       row.ClanName,
		FavoriteRace:   identity.ParseRace(row.FavoriteRace),
		RosterPlayerID: nullInt64ToInt64(row.PlayerID),
		CreatedAt:      row.CreatedAt.UTC(),
	}
	if row.LadderID.Valid || row.MMR.Valid {
		out.Standing = &identity.Standing{
			LadderID:     nullInt64ToInt64(row.LadderID),
			MMR:          nullInt64ToInt(row.MMR),
			Rank:         nullInt64ToInt(row.Rank),
			Points:       nullInt64ToInt(row.Points),
			PreviousRank: nullInt64ToInt(row.PreviousRank),
			Wins:         nullInt64ToInt(row.Wins),
			Losses:       nullInt64ToInt(row.Losses),
			JoinedAt:     nullTimeToTime(row.JoinedAt),
		}
	}
	return out
}
