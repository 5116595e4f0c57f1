package remapstore

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poku-e/tubtakes/internal/config"
	"github.com/poku-e/tubtakes/internal/shortcode"
)

func TestMemoryStoreLoadDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(0, 0)
	_, ok, err := m.Load(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	rec := shortcode.Record{Raw: "SA1,", Fingerprint: 42}
	require.NoError(t, m.Store(ctx, "a", rec))
	got, ok, err := m.Load(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	require.NoError(t, m.Delete(ctx, "a"))
	_, ok, _ = m.Load(ctx, "a")
	require.False(t, ok)
	require.NoError(t, m.Delete(ctx, "missing"))
}

func TestMemoryEvictsOldestSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(2, 0)
	require.NoError(t, m.Store(ctx, "a", shortcode.Record{Raw: "a"}))
	require.NoError(t, m.Store(ctx, "b", shortcode.Record{Raw: "b"}))
	require.NoError(t, m.Store(ctx, "c", shortcode.Record{Raw: "c"}))

	require.Equal(t, 2, m.Len())
	_, ok, _ := m.Load(ctx, "a")
	require.False(t, ok)
	_, ok, _ = m.Load(ctx, "c")
	require.True(t, ok)
}

func TestMemoryExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(0, 20*time.Millisecond)
	require.NoError(t, m.Store(ctx, "a", shortcode.Record{Raw: "a"}))
	require.Eventually(t, func() bool {
		_, ok, _ := m.Load(ctx, "a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "remap.json")

	rec := shortcode.Record{Raw: "SA1,AB2,", Fingerprint: 7}
	require.NoError(t, NewFile(path, 0).Store(ctx, "slot", rec))

	got, ok, err := NewFile(path, 0).Load(ctx, "slot")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	f := NewFile(path, 0)
	require.NoError(t, f.Delete(ctx, "slot"))
	_, ok, err = f.Load(ctx, "slot")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "remap.json")

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFile(path, time.Hour)
	f.now = func() time.Time { return clock }

	require.NoError(t, f.Store(ctx, "old", shortcode.Record{Raw: "old"}))
	_, ok, err := f.Load(ctx, "old")
	require.NoError(t, err)
	require.True(t, ok)

	clock = clock.Add(2 * time.Hour)
	_, ok, err = f.Load(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok)

	// storing another slot prunes the expired one from disk
	require.NoError(t, f.Store(ctx, "new", shortcode.Record{Raw: "new"}))
	entries, err := f.read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries, "new")
}

func TestFileRejectsCorruptData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "remap.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFile(path, 0).Load(context.Background(), "slot")
	require.ErrorContains(t, err, "parse remap store")
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(config.RemapConfig{Backend: config.RemapBackendMemory, MaxSlots: 4})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	s, err = Open(config.RemapConfig{Backend: config.RemapBackendFile, Path: filepath.Join(t.TempDir(), "r.json")})
	require.NoError(t, err)
	require.IsType(t, &File{}, s)

	s, err = Open(config.RemapConfig{Backend: config.RemapBackendNone})
	require.NoError(t, err)
	require.Nil(t, s)

	_, err = Open(config.RemapConfig{Backend: config.RemapBackendFile})
	require.Error(t, err)
	_, err = Open(config.RemapConfig{Backend: "redis"})
	require.Error(t, err)
}

func TestCompressorAgainstStores(t *testing.T) {
	t.Parallel()

	raw := "SA1,AB2,B01,"
	code := base64.StdEncoding.EncodeToString([]byte(raw))

	stores := map[string]shortcode.RemapStore{
		"memory": NewMemory(8, time.Hour),
		"file":   NewFile(filepath.Join(t.TempDir(), "remap.json"), time.Hour),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := shortcode.New(store, shortcode.WithSlot("user-1"))

			short, err := c.Compress(ctx, code)
			require.NoError(t, err)
			require.True(t, shortcode.IsShort(short))

			exp, err := c.Decompress(ctx, short)
			require.NoError(t, err)
			require.True(t, exp.Exact)
			require.Equal(t, code, exp.Code)

			require.NoError(t, c.Forget(ctx))
			exp, err = c.Decompress(ctx, short)
			require.NoError(t, err)
			require.True(t, exp.RemapMissing)
			require.Equal(t, 3, exp.Placeholders)
		})
	}
}
