package main

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/spritefile/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePAL(t *testing.T) {
	a := raster.NewPalette(2)
	require.NoError(t, a.SetEntry(1, color.RGBA{0x10, 0x20, 0x30, 0xff}))
	b := raster.GrayRamp()

	file := filepath.Join(t.TempDir(), "sprite.pal")
	require.NoError(t, writePAL(file, []*raster.Palette{a, b}))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	pals, err := raster.ReadPAL(f)
	require.NoError(t, err)
	require.Len(t, pals, 2)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xff}, pals[0].Entry(1))
	assert.True(t, b.Equal(pals[1]))
}

func TestWritePALError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing", "sprite.pal")
	assert.Error(t, writePAL(file, []*raster.Palette{raster.GrayRamp()}))

	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}
