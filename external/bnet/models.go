package bnet

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
)

const gameMode1v1 = "1v1"

// flexInt accepts ids and counters sent either as JSON numbers or strings.
type flexInt int64

func (v *flexInt) UnmarshalJSON(raw []byte) error {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return err
		}
		n = int64(f)
	}
	*v = flexInt(n)
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ladderSummary struct {
	ShowCaseEntries []showCaseEntry `json:"showCaseEntries"`
}

type showCaseEntry struct {
	LadderID flexInt `json:"ladderId"`
	Team     struct {
		LocalizedGameMode string `json:"localizedGameMode"`
	} `json:"team"`
}

// showcase returns the first showcased ladder for mode.
func (s ladderSummary) showcase(mode string) (showCaseEntry, bool) {
	for _, entry := range s.ShowCaseEntries {
		if entry.Team.LocalizedGameMode == mode {
			return entry, true
		}
	}
	return showCaseEntry{}, false
}

type ladderBoard struct {
	LadderTeams             []ladderTeam `json:"ladderTeams"`
	CurrentLadderMembership struct {
		LadderID flexInt `json:"ladderId"`
	} `json:"currentLadderMembership"`
}

type ladderTeam struct {
	TeamMembers   []teamMember `json:"teamMembers"`
	PreviousRank  flexInt      `json:"previousRank"`
	Points        flexInt      `json:"points"`
	Wins          flexInt      `json:"wins"`
	Losses        flexInt      `json:"losses"`
	MMR           flexInt      `json:"mmr"`
	JoinTimestamp flexInt      `json:"joinTimestamp"`
}

type teamMember struct {
	ID           flexInt `json:"id"`
	Realm        flexInt `json:"realm"`
	Region       flexInt `json:"region"`
	DisplayName  string  `json:"displayName"`
	ClanTag      string  `json:"clanTag"`
	ClanName     string  `json:"clanName"`
	FavoriteRace string  `json:"favoriteRace"`
}

// snapshot finds the locator's row. Rank is the 1-based row position.
func (b ladderBoard) snapshot(locator identity.Locator, showcaseLadderID int64) (ladder.Snapshot, bool) {
	ladderID := int64(b.CurrentLadderMembership.LadderID)
	if ladderID == 0 {
		ladderID = showcaseLadderID
	}

	for i, team := range b.LadderTeams {
		if len(team.TeamMembers) == 0 || int64(team.TeamMembers[0].ID) != locator.ProfileID {
			continue
		}
		member := team.TeamMembers[0]
		snapshot := ladder.Snapshot{
			Locator:      locator,
			LadderID:     ladderID,
			DisplayName:  member.DisplayName,
			ClanTag:      member.ClanTag,
			ClanName:     member.ClanName,
			FavoriteRace: identity.ParseRace(member.FavoriteRace),
			MMR:          int(team.MMR),
			Rank:         i + 1,
			Points:       int(team.Points),
			PreviousRank: int(team.PreviousRank),
			Wins:         int(team.Wins),
			Losses:       int(team.Losses),
		}
		if team.JoinTimestamp > 0 {
			snapshot.JoinedAt = time.Unix(int64(team.JoinTimestamp), 0).UTC()
		}
		return snapshot, true
	}
	return ladder.Snapshot{}, false
}
