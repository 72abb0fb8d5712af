package replay

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/identity"
)

const GameType1v1 = "1v1"

// Participant is a human player as recorded inside a decoded replay.
type Participant struct {
	PID     int
	Name    string
	ClanTag string
	Race    identity.Race
	Locator identity.Locator
}

// Decoded is the structured view of one replay file produced by the decoder.
type Decoded struct {
	Hash          digest.Digest
	MapHash       digest.Digest
	GameType      string
	Category      string
	Versions      []int64
	Expansion     string
	Frames        int64
	GameFPS       float64
	RealType      string
	IsLadder      bool
	IsPrivate     bool
	Speed         string
	Region        string
	StartTime     time.Time
	EndTime       time.Time
	TimeZoneHours float64
	RealLength    time.Duration
	Participants  []Participant
	WinnerLocator *identity.Locator
}

func (d Decoded) Is1v1() bool {
	return strings.EqualFold(strings.TrimSpace(d.GameType), GameType1v1)
}

// LocalStart shifts the UTC start time by the recorded time zone offset.
func (d Decoded) LocalStart() time.Time {
	return d.StartTime.Add(zoneOffset(d.TimeZoneHours))
}

func (d Decoded) LocalEnd() time.Time {
	return d.EndTime.Add(zoneOffset(d.TimeZoneHours))
}

func zoneOffset(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// Record is the persisted replay, keyed by the digest of the replay file.
type Record struct {
	ID           int64
	Hash         digest.Digest
	OriginalPath string
	MapID        int64
	WinnerID     int64
	Versions     []int64
	Category     string
	StartTime    time.Time
	EndTime      time.Time
	RealLength   time.Duration
	Expansion    string
	Frames       int64
	GameFPS      float64
	RealType     string
	IsLadder     bool
	IsPrivate    bool
	Speed        string
	Region       string
}

func (r Record) Validate() error {
	if r.Hash.IsZero() {
		return fmt.Errorf("replay hash is required")
	}
	if r.MapID <= 0 {
		return fmt.Errorf("replay map id is required")
	}
	if len(r.Versions) == 0 {
		return fmt.Errorf("replay versions are required")
	}
	return nil
}

// IdentityLink joins a replay to one participant identity.
type IdentityLink struct {
	ReplayID   int64
	IdentityID int64
	Slot       int
}
