package usecase

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/replay"
)

// LoadLevel controls how much of a replay the decoder parses.
type LoadLevel int

const DefaultLoadLevel LoadLevel = 2

// ReplayDecoder turns a replay file into its structured view. Failures must
// be marked with ErrDecode.
type ReplayDecoder interface {
	Decode(ctx context.Context, path string, level LoadLevel) (replay.Decoded, error)
	LoadMap(ctx context.Context, path string, decoded replay.Decoded) (gamemap.Record, error)
}

// ArchiveStore keeps one content-addressed copy per replay digest.
type ArchiveStore interface {
	Exists(hash digest.Digest) (bool, error)
	// Write copies srcPath to the entry for hash unless present and returns the entry path.
	Write(ctx context.Context, hash digest.Digest, srcPath string) (string, error)
}

// FailureRecorder persists paths that could not be imported.
type FailureRecorder interface {
	Record(path string) error
}
