package archive

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/valyala/bytebufferpool"
)

const Extension = ".SC2Replay"

// copyBuffers backs the archive copy loop.
var copyBuffers bytebufferpool.Pool

// Store keeps one copy of every imported replay at <dir>/<hex digest>.SC2Replay.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(hash digest.Digest) string {
	return filepath.Join(s.dir, hash.Hex()+Extension)
}

func (s *Store) Exists(hash digest.Digest) (bool, error) {
	_, err := os.Stat(s.Path(hash))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat archive entry %s: %w", hash, err)
	}
}

// Write copies srcPath into the archive unless an entry for hash exists. The
// copy goes through a temp file in the archive dir and is renamed into place
// only when its digest matches hash.
func (s *Store) Write(ctx context.Context, hash digest.Digest, srcPath string) (string, error) {
	target := s.Path(hash)
	exists, err := s.Exists(hash)
	if err != nil {
		return "", err
	}
	if exists {
		return target, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open replay %s: %w", srcPath, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, ".incoming-*"+Extension)
	if err != nil {
		return "", fmt.Errorf("create temp archive entry: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	hasher := sha256.New()
	buf := copyBuffers.Get()
	defer copyBuffers.Put(buf)
	if cap(buf.B) < 64*1024 {
		buf.B = make([]byte, 64*1024)
	}
	buf.B = buf.B[:cap(buf.B)]

	if _, err := io.CopyBuffer(io.MultiWriter(tmp, hasher), src, buf.B); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("copy replay %s: %w", srcPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("sync archive entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive entry: %w", err)
	}

	written, err := digest.FromBytes(hasher.Sum(nil))
	if err != nil {
		return "", err
	}
	if written != hash {
		return "", fmt.Errorf("archive digest mismatch for %s: wrote %s", hash, written)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("move archive entry into place: %w", err)
	}
	keep = true
	return target, nil
}

// Discard reports entry paths without touching the filesystem. Dry runs use it.
type Discard struct {
	Dir string
}

func (d Discard) Exists(digest.Digest) (bool, error) {
	return false, nil
}

func (d Discard) Write(_ context.Context, hash digest.Digest, _ string) (string, error) {
	return filepath.Join(d.Dir, hash.Hex()+Extension), nil
}
