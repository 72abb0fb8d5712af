package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/matching"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
	"github.com/riskibarqy/overmind/internal/platform/logging"
)

// ImportState is a step of the per-file import.
type ImportState string

const (
	StatePending            ImportState = "pending"
	StateDecoded            ImportState = "decoded"
	StateNameExtracted      ImportState = "name_extracted"
	StateMatched            ImportState = "matched"
	StateIdentitiesResolved ImportState = "identities_resolved"
	StatePersisted          ImportState = "persisted"
	StateArchived           ImportState = "archived"
	StateFailed             ImportState = "failed"
)

// ImportOutcome is the terminal result of importing one file.
type ImportOutcome struct {
	Path         string
	Hash         digest.Digest
	State        ImportState
	FailedAt     ImportState
	Duplicate    bool
	ArchivedPath string
	ReplayID     int64
	Swapped      bool
	Degenerate   bool
	Warnings     []error
	Err          error
	Elapsed      time.Duration
}

func (o ImportOutcome) Succeeded() bool {
	return o.State == StateArchived
}

type ImportServiceConfig struct {
	LoadLevel LoadLevel
}

type ImportService struct {
	decoder    ReplayDecoder
	aliases    *naming.AliasTable
	extractor  *naming.Extractor
	barcodes   *naming.BarcodeLog
	uows       unitofwork.Factory
	identities *IdentityService
	store      *StoreService
	cfg        ImportServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewImportService(
	decoder ReplayDecoder,
	aliases *naming.AliasTable,
	barcodes *naming.BarcodeLog,
	uows unitofwork.Factory,
	identities *IdentityService,
	store *StoreService,
	cfg ImportServiceConfig,
	logger *logging.Logger,
) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LoadLevel <= 0 {
		cfg.LoadLevel = DefaultLoadLevel
	}
	return &ImportService{
		decoder:    decoder,
		aliases:    aliases,
		extractor:  naming.NewExtractor(aliases),
		barcodes:   barcodes,
		uows:       uows,
		identities: identities,
		store:      store,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportFile runs one file through decode, naming, matching, identity
// resolution, persistence and archiving inside a single unit of work. The
// unit of work commits only after the archive copy exists.
func (s *ImportService) ImportFile(ctx context.Context, path string) ImportOutcome {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportFile")
	defer span.End()

	start := s.now()
	out := ImportOutcome{Path: path, State: StatePending}
	finish := func(err error) ImportOutcome {
		if err != nil {
			out.FailedAt = out.State
			out.State = StateFailed
			out.Err = err
		}
		out.Elapsed = s.now().Sub(start)
		return out
	}

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	decoded, err := s.decoder.Decode(ctx, path, s.cfg.LoadLevel)
	if err != nil {
		return finish(err)
	}
	if !decoded.Is1v1() {
		return finish(decodeError(nil, "game type %q is not 1v1", decoded.GameType))
	}
	out.Hash = decoded.Hash
	out.State = StateDecoded

	uow, err := s.uows.Begin(ctx)
	if err != nil {
		return finish(errors.Wrap(err, "begin unit of work"))
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			s.logger.WarnContext(ctx, "rollback unit of work", "path", path, "error", rbErr)
		}
	}()

	duplicate, err := uow.Replays().ExistsByHash(ctx, decoded.Hash)
	if err != nil {
		return finish(errors.Wrapf(err, "check replay %s", decoded.Hash))
	}
	if duplicate {
		archived, err := s.store.Archive(ctx, decoded.Hash, path)
		if err != nil {
			return finish(err)
		}
		out.Duplicate = true
		out.ArchivedPath = archived
		out.State = StateArchived
		return finish(nil)
	}

	extraction := s.extractor.Extract(path)
	s.barcodes.Record(extraction.Barcodes)
	if !extraction.Labeled() {
		out.Warnings = append(out.Warnings, errors.Mark(errors.Newf("no player names in %q, using in-replay names", path), ErrUnlabeled))
	}
	out.State = StateNameExtracted

	match := matching.Match(extraction.Candidates, decoded.Participants, s.aliases.Resolve)
	if !match.Confident {
		return finish(errors.Mark(
			errors.WithDetailf(errors.Newf("participants of %q do not match path names", path), "best score %.3f", match.Best),
			ErrAmbiguousMatch,
		))
	}
	out.Swapped = match.Swapped
	out.Degenerate = match.Degenerate
	out.State = StateMatched

	identities, err := s.identities.Resolve(ctx, uow, match.Pairs)
	if err != nil {
		return finish(err)
	}
	out.Warnings = append(out.Warnings, identities.Warnings...)
	out.State = StateIdentitiesResolved

	mapRecord, err := s.store.EnsureMap(ctx, uow, path, decoded)
	if err != nil {
		return finish(err)
	}
	record, created, err := s.store.EnsureReplay(ctx, uow, decoded, mapRecord, identities, path)
	if err != nil {
		return finish(err)
	}
	out.ReplayID = record.ID
	out.Duplicate = !created
	out.State = StatePersisted

	archived, err := s.store.Archive(ctx, decoded.Hash, path)
	if err != nil {
		return finish(err)
	}
	out.ArchivedPath = archived

	if err := uow.Commit(); err != nil {
		return finish(errors.Wrap(err, "commit unit of work"))
	}
	committed = true
	out.State = StateArchived

	return finish(nil)
}
