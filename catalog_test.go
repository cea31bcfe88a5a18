package spritefile

import (
	"path/filepath"
	"testing"

	"github.com/bodgit/spritefile/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	c, err := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
	})
	return c
}

func TestCatalog(t *testing.T) {
	c := newTestCatalog(t)

	e, err := c.Find("/sprites/missing.ico")
	require.NoError(t, err)
	assert.Nil(t, e)

	a := Entry{
		Path:        "/sprites/b.pcx",
		SHA1:        "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709",
		Format:      "pcx",
		Width:       32,
		Height:      16,
		PixelFormat: raster.Indexed,
		Frames:      1,
		Colors:      256,
	}
	b := Entry{
		Path:        "/sprites/a.ico",
		SHA1:        "0000000000000000000000000000000000000000",
		Format:      "ico",
		Width:       16,
		Height:      16,
		PixelFormat: raster.RGB,
		Frames:      1,
	}
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	e, err = c.Find(a.Path)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, a, *e)

	// Adding the same path again replaces the entry
	a.Width = 64
	require.NoError(t, c.Add(a))

	entries, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []Entry{b, a}, entries)
}

func TestCatalogReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.db")

	c, err := NewCatalog(file)
	require.NoError(t, err)
	require.NoError(t, c.Add(Entry{Path: "x.png", Format: "png", PixelFormat: raster.Grayscale}))
	require.NoError(t, c.Close())

	c, err = NewCatalog(file)
	require.NoError(t, err)
	defer c.Close()

	e, err := c.Find("x.png")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, raster.Grayscale, e.PixelFormat)
}
