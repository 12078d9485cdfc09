package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnyUserName/coverhue/internal/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "palettes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBins() palette.Histogram {
	return palette.NewHistogram([]palette.Bin{
		{Count: 60, Hue: 10, Saturation: 0.8, Value: 0.8},
		{Count: 40, Hue: 200, Saturation: 0.7, Value: 0.6},
	})
}

func TestStore_PutGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, Entry{Key: "abc", Width: 600, Height: 600, Bins: sampleBins()}))
	e, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 600, e.Width)
	assert.Equal(t, sampleBins(), e.Bins)
	assert.WithinDuration(t, time.Now(), e.UpdatedAt, time.Minute)
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Entry{Key: "abc", Width: 1, Height: 1, Bins: sampleBins()}))
	require.NoError(t, s.Put(ctx, Entry{Key: "abc", Width: 2, Height: 2, Bins: sampleBins()[:1]}))

	e, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, e.Width)
	assert.Len(t, e.Bins, 1)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), Entry{Key: "k", Width: 3, Height: 4, Bins: sampleBins()}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Prune(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	require.NoError(t, s.Put(ctx, Entry{Key: "old", Bins: sampleBins(), UpdatedAt: old}))
	require.NoError(t, s.Put(ctx, Entry{Key: "new", Bins: sampleBins()}))

	n, err := s.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Adapter(t *testing.T) {
	c := NewCache(openTemp(t), nil)

	_, ok := c.LookupPalette("x")
	assert.False(t, ok)

	c.StorePalette("x", 10, 20, sampleBins())
	h, ok := c.LookupPalette("x")
	require.True(t, ok)
	dom, _ := h.Dominant()
	assert.Equal(t, 10.0, dom.Hue)
}
