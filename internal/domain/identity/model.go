package identity

import (
	"fmt"
	"strings"
	"time"
)

// Locator addresses one account on the ranking service.
type Locator struct {
	Region    int
	Realm     int
	ProfileID int64
}

func (l Locator) String() string {
	return fmt.Sprintf("%d/%d/%d", l.Region, l.Realm, l.ProfileID)
}

func (l Locator) Validate() error {
	if l.Region <= 0 {
		return fmt.Errorf("locator region must be > 0")
	}
	if l.Realm <= 0 {
		return fmt.Errorf("locator realm must be > 0")
	}
	if l.ProfileID <= 0 {
		return fmt.Errorf("locator profile id must be > 0")
	}
	return nil
}

// Less orders locators by region, realm, then profile id.
func (l Locator) Less(other Locator) bool {
	if l.Region != other.Region {
		return l.Region < other.Region
	}
	if l.Realm != other.Realm {
		return l.Realm < other.Realm
	}
	return l.ProfileID < other.ProfileID
}

type Race string

const (
	RaceUnknown Race = ""
	RaceProtoss Race = "protoss"
	RaceTerran  Race = "terran"
	RaceZerg    Race = "zerg"
)

func ParseRace(v string) Race {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "protoss", "prot", "p":
		return RaceProtoss
	case "terran", "terr", "t":
		return RaceTerran
	case "zerg", "z":
		return RaceZerg
	default:
		return RaceUnknown
	}
}

// Standing is the ranked part of an identity. It is nil for placeholder identities.
type Standing struct {
	LadderID     int64
	MMR          int
	Rank         int
	Points       int
	PreviousRank int
	Wins         int
	Losses       int
	JoinedAt     time.Time
}

// Identity is the durable record for one Locator. It is never rewritten after insert.
type Identity struct {
	ID             int64
	Locator        Locator
	DisplayName    string
	ClanTag        string
	ClanName       string
	FavoriteRace   Race
	Standing       *Standing
	RosterPlayerID int64
	CreatedAt      time.Time
}

func (i Identity) Placeholder() bool {
	return i.Standing == nil
}

func (i Identity) Validate() error {
	if err := i.Locator.Validate(); err != nil {
		return err
	}
	return nil
}
