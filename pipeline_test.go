package spritefile

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/spritefile/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))

	ctx := context.Background()
	require.NoError(t, Save(ctx, testSprite(t, raster.Indexed, 1), filepath.Join(dir, "a.ico")))
	require.NoError(t, Save(ctx, testSprite(t, raster.RGB, 1), filepath.Join(dir, "sub", "b.pcx")))
	require.NoError(t, Save(ctx, testSprite(t, raster.RGB, 1), filepath.Join(dir, ".hidden", "c.pcx")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pcx"), []byte("not a pcx"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	c := newTestCatalog(t)
	logs := new(bytes.Buffer)
	s := NewScanner(c, slog.New(slog.NewTextHandler(logs, nil)))
	require.NoError(t, s.Scan(ctx, dir))

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ico := entries[0]
	assert.Equal(t, filepath.Join(dir, "a.ico"), ico.Path)
	assert.Equal(t, "ico", ico.Format)
	assert.Equal(t, raster.Indexed, ico.PixelFormat)
	assert.Equal(t, 4, ico.Width)
	assert.Equal(t, 3, ico.Height)
	assert.Equal(t, 256, ico.Colors)

	b, err := os.ReadFile(ico.Path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%X", sha1.Sum(b)), ico.SHA1)

	pcx := entries[1]
	assert.Equal(t, filepath.Join(dir, "sub", "b.pcx"), pcx.Path)
	assert.Equal(t, raster.RGB, pcx.PixelFormat)
	assert.Equal(t, 0, pcx.Colors)

	assert.Contains(t, logs.String(), "broken.pcx")
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(context.Background(), testSprite(t, raster.Indexed, 1), filepath.Join(dir, "a.pcx")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScanner(newTestCatalog(t), nil).Scan(ctx, dir)
	assert.Error(t, err)
}

func TestScanCatalogError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(context.Background(), testSprite(t, raster.Indexed, 1), filepath.Join(dir, "a.pcx")))

	c, err := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.Error(t, NewScanner(c, nil).Scan(context.Background(), dir))
}
