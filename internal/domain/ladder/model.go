package ladder

import (
	"time"

	"github.com/riskibarqy/overmind/internal/domain/identity"
)

// Snapshot is point-in-time ranking data for one locator. It is never stored verbatim.
type Snapshot struct {
	Locator      identity.Locator
	LadderID     int64
	DisplayName  string
	ClanTag      string
	ClanName     string
	FavoriteRace identity.Race
	MMR          int
	Rank         int
	Points       int
	PreviousRank int
	Wins         int
	Losses       int
	JoinedAt     time.Time
	Ranked       bool
}

// Standing returns the ranked fields, or nil when the snapshot carries no ladder data.
func (s Snapshot) Standing() *identity.Standing {
	if !s.Ranked {
		return nil
	}
	return &identity.Standing{
		LadderID:     s.LadderID,
		MMR:          s.MMR,
		Rank:         s.Rank,
		Points:       s.Points,
		PreviousRank: s.PreviousRank,
		Wins:         s.Wins,
		Losses:       s.Losses,
		JoinedAt:     s.JoinedAt,
	}
}

type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

type FailureKind string

const (
	FailureRateLimited  FailureKind = "rate_limited"
	FailureTransient    FailureKind = "transient"
	FailureUnauthorized FailureKind = "unauthorized"
	FailureCircuitOpen  FailureKind = "circuit_open"
	FailureDecode       FailureKind = "decode"
	FailureCanceled     FailureKind = "canceled"
)

// Result distinguishes a ranked answer, a definitive absence and a failed lookup.
type Result struct {
	Status   Status
	Snapshot Snapshot
	Kind     FailureKind
	Err      error
}

func Found(snapshot Snapshot) Result {
	snapshot.Ranked = true
	return Result{Status: StatusFound, Snapshot: snapshot}
}

func NotFound(locator identity.Locator) Result {
	return Result{Status: StatusNotFound, Snapshot: Snapshot{Locator: locator}}
}

func Failed(locator identity.Locator, kind FailureKind, err error) Result {
	return Result{Status: StatusFailed, Snapshot: Snapshot{Locator: locator}, Kind: kind, Err: err}
}
