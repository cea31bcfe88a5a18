package spritefile

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/bodgit/spritefile/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormats(t *testing.T) {
	var names []string
	for _, f := range Formats() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"bmp", "ico", "pcx", "png"}, names)
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("ico")
	require.True(t, ok)
	assert.True(t, f.Has(FlagLoad|FlagSave|FlagFrames))
	assert.False(t, f.Has(FlagSequences))
	assert.Equal(t, 255, f.MaxDimension)

	_, ok = Lookup("gif")
	assert.False(t, ok)
}

func TestForFilename(t *testing.T) {
	tables := []struct {
		file   string
		format string
		err    error
	}{
		{"sprite.ico", "ico", nil},
		{"/tmp/SPRITE.PCX", "pcx", nil},
		{"dir.d/frame.Png", "png", nil},
		{"sprite.bmp", "bmp", nil},
		{"notes.txt", "", ErrUnknownFormat},
		{"README", "", ErrUnknownFormat},
	}

	for _, table := range tables {
		t.Run(table.file, func(t *testing.T) {
			f, err := ForFilename(table.file)
			if table.err != nil {
				assert.Equal(t, table.err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, table.format, f.Name)
		})
	}
}

func TestSupports(t *testing.T) {
	f := &Format{Flags: FlagLoad | FlagIndexed}
	assert.True(t, f.Supports(raster.Indexed))
	assert.False(t, f.Supports(raster.RGB))
	assert.False(t, f.Supports(raster.Grayscale))
}

func TestRegister(t *testing.T) {
	orig, ok := Lookup("bmp")
	require.True(t, ok)
	defer Register(orig)

	Register(&Format{Name: "bmp", Extensions: []string{"dib"}})
	f, err := ForFilename("a.dib")
	require.NoError(t, err)
	assert.Equal(t, "bmp", f.Name)
	assert.Len(t, Formats(), 4)
}

func TestSetLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	SetLogger(slog.New(slog.NewTextHandler(buf, nil)))
	Logger().Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	SetLogger(nil)
	Logger().Error("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}
