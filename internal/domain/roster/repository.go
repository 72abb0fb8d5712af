package roster

import "context"

// Repository describes roster persistence needs inside one unit of work.
type Repository interface {
	GetPlayerByProName(ctx context.Context, proName string) (Player, bool, error)
	InsertPlayer(ctx context.Context, item Player) (Player, bool, error)
	GetTeamByClanTag(ctx context.Context, clanTag string) (Team, bool, error)
	// AssignTeam links the player to a team only when it has none yet.
	AssignTeam(ctx context.Context, playerID, teamID int64) error
}
