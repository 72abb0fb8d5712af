package roster

import (
	"fmt"
	"strings"
)

// Player is a named professional player. Several identities may point at one player.
type Player struct {
	ID          int64
	ProName     string
	Nationality string
	TeamID      int64
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ProName) == "" {
		return fmt.Errorf("player pro name is required")
	}
	return nil
}

// Team is curated by hand; the importer only reads it.
type Team struct {
	ID       int64
	ClanName string
	ClanTag  string
}
