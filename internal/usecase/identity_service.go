package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
	"github.com/riskibarqy/overmind/internal/domain/matching"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	"github.com/riskibarqy/overmind/internal/platform/cache"
	"github.com/riskibarqy/overmind/internal/platform/logging"
)

type IdentityServiceConfig struct {
	// LadderSoftFail stores a placeholder identity when the ladder lookup fails.
	LadderSoftFail bool
	SnapshotTTL    time.Duration
}

func DefaultIdentityServiceConfig() IdentityServiceConfig {
	return IdentityServiceConfig{
		LadderSoftFail: true,
		SnapshotTTL:    30 * time.Minute,
	}
}

// IdentitySet holds the identities resolved for one replay.
type IdentitySet struct {
	byLocator map[identity.Locator]identity.Identity
	ordered   []identity.Identity
	// Warnings carries soft failures, such as a ladder lookup that fell back to a placeholder.
	Warnings []error
}

func (s IdentitySet) Lookup(locator identity.Locator) (identity.Identity, bool) {
	item, ok := s.byLocator[locator]
	return item, ok
}

// Identities returns the resolved identities in locator order.
func (s IdentitySet) Identities() []identity.Identity {
	return append([]identity.Identity(nil), s.ordered...)
}

func (s IdentitySet) Len() int {
	return len(s.ordered)
}

type IdentityService struct {
	fetcher   ladder.Fetcher
	snapshots *cache.Store[ladder.Snapshot]
	cfg       IdentityServiceConfig
	logger    *logging.Logger
}

func NewIdentityService(fetcher ladder.Fetcher, cfg IdentityServiceConfig, logger *logging.Logger) *IdentityService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IdentityService{
		fetcher:   fetcher,
		snapshots: cache.NewStore[ladder.Snapshot](cfg.SnapshotTTL),
		cfg:       cfg,
		logger:    logger,
	}
}

// Resolve returns one identity per distinct participant locator, creating
// missing ones from a ladder snapshot. Row locks are taken in one sequence
// for every unit of work: roster inserts in canonical-name order, identity
// inserts in locator order, then team links in player-id order.
func (s *IdentityService) Resolve(ctx context.Context, uow unitofwork.UnitOfWork, pairs []matching.Pair) (IdentitySet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.Resolve")
	defer span.End()

	set := IdentitySet{byLocator: make(map[identity.Locator]identity.Identity, len(pairs))}

	ordered := append([]matching.Pair(nil), pairs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Participant.Locator.Less(ordered[j].Participant.Locator)
	})

	missing := make([]matching.Pair, 0, len(ordered))
	seen := make(map[identity.Locator]struct{}, len(ordered))
	for _, pair := range ordered {
		locator := pair.Participant.Locator
		if _, ok := seen[locator]; ok {
			continue
		}
		seen[locator] = struct{}{}

		if err := locator.Validate(); err != nil {
			return IdentitySet{}, errors.Mark(errors.Wrapf(err, "participant %q", pair.Participant.Name), ErrInvalidInput)
		}

		existing, found, err := uow.Identities().GetByLocator(ctx, locator)
		if err != nil {
			return IdentitySet{}, errors.Wrapf(err, "get identity %s", locator)
		}
		if found {
			set.byLocator[locator] = existing
			continue
		}
		missing = append(missing, pair)
	}

	playerIDs, err := s.ensurePlayers(ctx, uow, missing)
	if err != nil {
		return IdentitySet{}, err
	}

	created := make([]identity.Identity, 0, len(missing))
	for _, pair := range missing {
		locator := pair.Participant.Locator
		snapshot, warning, err := s.snapshot(ctx, locator)
		if err != nil {
			return IdentitySet{}, err
		}
		if warning != nil {
			set.Warnings = append(set.Warnings, warning)
			s.logger.WarnContext(ctx, "ladder lookup failed, storing placeholder identity",
				"locator", locator.String(),
				"participant", pair.Participant.Name,
				"error", warning,
			)
		}

		candidate := buildIdentity(pair, snapshot, playerIDs[pair.Canonical])
		stored, inserted, err := uow.Identities().Insert(ctx, candidate)
		if err != nil {
			return IdentitySet{}, errors.Wrapf(err, "insert identity %s", locator)
		}
		if inserted {
			created = append(created, stored)
		} else {
			s.logger.DebugContext(ctx, "identity created concurrently, using stored row", "locator", locator.String())
		}
		set.byLocator[locator] = stored
	}

	if err := s.linkTeams(ctx, uow, created); err != nil {
		return IdentitySet{}, err
	}

	for _, pair := range ordered {
		if item, ok := set.byLocator[pair.Participant.Locator]; ok && !containsIdentity(set.ordered, item.ID) {
			set.ordered = append(set.ordered, item)
		}
	}

	return set, nil
}

func (s *IdentityService) ensurePlayers(ctx context.Context, uow unitofwork.UnitOfWork, pairs []matching.Pair) (map[string]int64, error) {
	names := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair.Canonical) != "" {
			names = append(names, pair.Canonical)
		}
	}
	sort.Strings(names)

	ids := make(map[string]int64, len(names))
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}

		player, found, err := uow.Roster().GetPlayerByProName(ctx, name)
		if err != nil {
			return nil, errors.Wrapf(err, "get roster player %q", name)
		}
		if !found {
			player, _, err = uow.Roster().InsertPlayer(ctx, roster.Player{ProName: name})
			if err != nil {
				return nil, errors.Wrapf(err, "insert roster player %q", name)
			}
		}
		ids[name] = player.ID
	}
	return ids, nil
}

// snapshot returns the ladder data for locator. A failed lookup yields an
// error in hard-fail mode and a warning with a locator-only snapshot otherwise.
func (s *IdentityService) snapshot(ctx context.Context, locator identity.Locator) (ladder.Snapshot, error, error) {
	snapshot, err := s.snapshots.GetOrLoad(ctx, locator.String(), func(ctx context.Context) (ladder.Snapshot, error) {
		result := s.fetcher.Fetch(ctx, locator)
		switch result.Status {
		case ladder.StatusFound, ladder.StatusNotFound:
			return result.Snapshot, nil
		default:
			return ladder.Snapshot{}, &ladderFailure{result: result}
		}
	})
	if err == nil {
		return snapshot, nil, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ladder.Snapshot{}, nil, ctxErr
	}

	kind := ladder.FailureKind("")
	var failure *ladderFailure
	if errors.As(err, &failure) {
		kind = failure.result.Kind
	}
	external := errors.Mark(errors.Wrapf(err, "ladder lookup %s (%s)", locator, kind), ErrExternalService)
	if !s.cfg.LadderSoftFail {
		return ladder.Snapshot{}, nil, external
	}
	return ladder.Snapshot{Locator: locator}, external, nil
}

// linkTeams assigns teams by clan tag for newly created identities. Team
// links update a non-key players column, so they do not contend with the
// foreign-key checks of identity inserts.
func (s *IdentityService) linkTeams(ctx context.Context, uow unitofwork.UnitOfWork, items []identity.Identity) error {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RosterPlayerID < items[j].RosterPlayerID
	})
	for _, item := range items {
		if err := s.linkTeam(ctx, uow, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *IdentityService) linkTeam(ctx context.Context, uow unitofwork.UnitOfWork, item identity.Identity) error {
	if item.RosterPlayerID == 0 || strings.TrimSpace(item.ClanTag) == "" {
		return nil
	}
	team, found, err := uow.Roster().GetTeamByClanTag(ctx, item.ClanTag)
	if err != nil {
		return errors.Wrapf(err, "get team by clan tag %q", item.ClanTag)
	}
	if !found {
		return nil
	}
	if err := uow.Roster().AssignTeam(ctx, item.RosterPlayerID, team.ID); err != nil {
		return errors.Wrapf(err, "assign team %d to player %d", team.ID, item.RosterPlayerID)
	}
	return nil
}

type ladderFailure struct {
	result ladder.Result
}

func (e *ladderFailure) Error() string {
	if e.result.Err != nil {
		return e.result.Err.Error()
	}
	return "ladder lookup " + string(e.result.Kind)
}

func (e *ladderFailure) Unwrap() error {
	return e.result.Err
}

func buildIdentity(pair matching.Pair, snapshot ladder.Snapshot, playerID int64) identity.Identity {
	item := identity.Identity{
		Locator:        pair.Participant.Locator,
		DisplayName:    snapshot.DisplayName,
		ClanTag:        snapshot.ClanTag,
		ClanName:       snapshot.ClanName,
		FavoriteRace:   snapshot.FavoriteRace,
		Standing:       snapshot.Standing(),
		RosterPlayerID: playerID,
	}
	if item.DisplayName == "" {
		item.DisplayName = pair.Participant.Name
	}
	if item.ClanTag == "" {
		item.ClanTag = pair.Participant.ClanTag
	}
	return item
}

func containsIdentity(items []identity.Identity, id int64) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}
