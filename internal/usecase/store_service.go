package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	"github.com/riskibarqy/overmind/internal/platform/logging"
)

// StoreService persists maps and replays keyed by content digest and keeps
// the archive copy of each replay.
type StoreService struct {
	decoder ReplayDecoder
	archive ArchiveStore
	logger  *logging.Logger
}

func NewStoreService(decoder ReplayDecoder, archive ArchiveStore, logger *logging.Logger) *StoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StoreService{decoder: decoder, archive: archive, logger: logger}
}

// EnsureMap returns the stored map for the replay, loading and inserting it on first sight.
func (s *StoreService) EnsureMap(ctx context.Context, uow unitofwork.UnitOfWork, path string, decoded replay.Decoded) (gamemap.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StoreService.EnsureMap")
	defer span.End()

	existing, found, err := uow.Maps().GetByHash(ctx, decoded.MapHash)
	if err != nil {
		return gamemap.Record{}, errors.Wrapf(err, "get map %s", decoded.MapHash)
	}
	if found {
		return existing, nil
	}

	loaded, err := s.decoder.LoadMap(ctx, path, decoded)
	if err != nil {
		return gamemap.Record{}, err
	}
	if loaded.Hash.IsZero() {
		loaded.Hash = decoded.MapHash
	}
	if err := loaded.Validate(); err != nil {
		return gamemap.Record{}, decodeError(err, "map %s", decoded.MapHash)
	}

	stored, created, err := uow.Maps().Insert(ctx, loaded)
	if err != nil {
		return gamemap.Record{}, errors.Wrapf(err, "insert map %s", decoded.MapHash)
	}
	if created {
		s.logger.DebugContext(ctx, "map stored", "map_hash", decoded.MapHash.Hex(), "name", stored.Name)
	}
	return stored, nil
}

// EnsureReplay inserts the replay and its identity links unless the digest is
// already stored. The winner comes from identities only and is never fetched.
func (s *StoreService) EnsureReplay(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	decoded replay.Decoded,
	mapRecord gamemap.Record,
	identities IdentitySet,
	path string,
) (replay.Record, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StoreService.EnsureReplay")
	defer span.End()

	existing, found, err := uow.Replays().GetByHash(ctx, decoded.Hash)
	if err != nil {
		return replay.Record{}, false, errors.Wrapf(err, "get replay %s", decoded.Hash)
	}
	if found {
		return existing, false, nil
	}

	record := replay.Record{
		Hash:         decoded.Hash,
		OriginalPath: path,
		MapID:        mapRecord.ID,
		WinnerID:     s.winnerID(ctx, decoded, identities),
		Versions:     append([]int64(nil), decoded.Versions...),
		Category:     decoded.Category,
		StartTime:    decoded.LocalStart(),
		EndTime:      decoded.LocalEnd(),
		RealLength:   decoded.RealLength.Truncate(time.Second),
		Expansion:    decoded.Expansion,
		Frames:       decoded.Frames,
		GameFPS:      decoded.GameFPS,
		RealType:     decoded.RealType,
		IsLadder:     decoded.IsLadder,
		IsPrivate:    decoded.IsPrivate,
		Speed:        decoded.Speed,
		Region:       decoded.Region,
	}
	if err := record.Validate(); err != nil {
		return replay.Record{}, false, decodeError(err, "replay %s", decoded.Hash)
	}

	stored, created, err := uow.Replays().Insert(ctx, record)
	if err != nil {
		return replay.Record{}, false, errors.Wrapf(err, "insert replay %s", decoded.Hash)
	}
	if !created {
		return stored, false, nil
	}

	links := make([]replay.IdentityLink, 0, len(decoded.Participants))
	linked := make(map[int64]struct{}, len(decoded.Participants))
	for slot, participant := range decoded.Participants {
		item, ok := identities.Lookup(participant.Locator)
		if !ok {
			continue
		}
		if _, dup := linked[item.ID]; dup {
			continue
		}
		linked[item.ID] = struct{}{}
		links = append(links, replay.IdentityLink{ReplayID: stored.ID, IdentityID: item.ID, Slot: slot})
	}
	if err := uow.Replays().InsertLinks(ctx, links); err != nil {
		return replay.Record{}, false, errors.Wrapf(err, "link identities to replay %d", stored.ID)
	}

	return stored, true, nil
}

// Archive ensures the content-addressed copy of srcPath exists.
func (s *StoreService) Archive(ctx context.Context, hash digest.Digest, srcPath string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StoreService.Archive")
	defer span.End()

	archived, err := s.archive.Write(ctx, hash, srcPath)
	if err != nil {
		return "", errors.Wrapf(err, "archive %s", hash)
	}
	return archived, nil
}

func (s *StoreService) winnerID(ctx context.Context, decoded replay.Decoded, identities IdentitySet) int64 {
	if decoded.WinnerLocator == nil {
		s.logger.DebugContext(ctx, "replay has no winner", "hash", decoded.Hash.Hex())
		return 0
	}
	winner, ok := identities.Lookup(*decoded.WinnerLocator)
	if !ok {
		s.logger.WarnContext(ctx, "winner is not a resolved participant",
			"hash", decoded.Hash.Hex(),
			"winner_locator", decoded.WinnerLocator.String(),
		)
		return 0
	}
	return winner.ID
}
