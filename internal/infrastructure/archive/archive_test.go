package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReplay(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestStore_WriteCopiesOnce(t *testing.T) {
	t.Parallel()

	content := []byte("replay bytes")
	hash := digest.Sum(content)
	src := writeReplay(t, t.TempDir(), "Serral vs Maru.SC2Replay", content)

	store, err := NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	exists, err := store.Exists(hash)
	require.NoError(t, err)
	assert.False(t, exists)

	target, err := store.Write(context.Background(), hash, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), hash.Hex()+".SC2Replay"), target)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, os.Remove(src))
	again, err := store.Write(context.Background(), hash, src)
	require.NoError(t, err, "existing entries are not rewritten")
	assert.Equal(t, target, again)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_WriteRejectsDigestMismatch(t *testing.T) {
	t.Parallel()

	src := writeReplay(t, t.TempDir(), "a.SC2Replay", []byte("actual"))
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	wrong := digest.Sum([]byte("expected"))
	_, err = store.Write(context.Background(), wrong, src)
	require.Error(t, err)

	exists, err := store.Exists(wrong)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files are cleaned up")
}

func TestStore_WriteMissingSource(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Write(context.Background(), digest.Sum([]byte("x")), filepath.Join(t.TempDir(), "missing.SC2Replay"))
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	hash := digest.Sum([]byte("x"))
	target, err := Discard{Dir: "/data"}.Write(context.Background(), hash, "/nowhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", hash.Hex()+".SC2Replay"), target)
}
