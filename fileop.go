package spritefile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/spritefile/sprite"
)

var (
	errNotLoadable = errors.New("spritefile: format cannot be loaded")
	errNotSavable  = errors.New("spritefile: format cannot be saved")
	errPixelFormat = errors.New("spritefile: pixel format not supported by format")
)

// FileOp is a single load or save of a sprite file. It implements
// sprite.Monitor so the codec can report progress and notice when the
// context is cancelled.
type FileOp struct {
	Filename string
	Logger   *slog.Logger

	// OnProgress receives values from 0 to 1, may be nil
	OnProgress func(float64)
	// OnError is called with any error before it is returned, may be nil
	OnError func(error)

	ctx context.Context
}

// Option configures a FileOp.
type Option func(*FileOp)

// WithLogger sets the logger, otherwise the package logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(op *FileOp) {
		op.Logger = l
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn func(float64)) Option {
	return func(op *FileOp) {
		op.OnProgress = fn
	}
}

// WithErrorHandler sets the error callback.
func WithErrorHandler(fn func(error)) Option {
	return func(op *FileOp) {
		op.OnError = fn
	}
}

// NewFileOp returns a FileOp for filename. Cancelling ctx stops the
// operation at the next point the codec checks.
func NewFileOp(ctx context.Context, filename string, opts ...Option) *FileOp {
	op := &FileOp{
		Filename: filename,
		Logger:   Logger(),
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(op)
	}
	if op.Logger == nil {
		op.Logger = Logger()
	}
	op.Logger = op.Logger.With("file", filename)
	return op
}

// Progress implements sprite.Monitor.
func (op *FileOp) Progress(f float64) {
	if op.OnProgress != nil {
		op.OnProgress(f)
	}
}

// Stopped implements sprite.Monitor.
func (op *FileOp) Stopped() bool {
	return op.ctx.Err() != nil
}

func (op *FileOp) fail(err error) error {
	op.Logger.Error("operation failed", "error", err)
	if op.OnError != nil {
		op.OnError(err)
	}
	return err
}

func (op *FileOp) read(r io.Reader, f *Format) (*sprite.Sprite, error) {
	if !f.Has(FlagLoad) {
		return nil, errNotLoadable
	}

	s, err := f.Read(r, op)
	if err != nil {
		return nil, err
	}
	if f.Has(FlagStoppable) && op.Stopped() {
		op.Logger.Warn("load stopped, image is incomplete")
	}

	op.Logger.Debug("loaded", "format", f.Name, "width", s.Width(), "height", s.Height(), "pixel_format", s.PixelFormat(), "frames", s.FrameCount())
	return s, nil
}

// Load reads the sprite in op.Filename using the format matching its
// extension.
func (op *FileOp) Load() (*sprite.Sprite, error) {
	f, err := ForFilename(op.Filename)
	if err != nil {
		return nil, op.fail(err)
	}

	file, err := os.Open(op.Filename)
	if err != nil {
		return nil, op.fail(err)
	}
	defer file.Close()

	s, err := op.read(bufio.NewReader(file), f)
	if err != nil {
		return nil, op.fail(err)
	}
	return s, nil
}

type frameMonitor struct {
	op       *FileOp
	n, count int
}

func (m frameMonitor) Progress(f float64) {
	m.op.Progress((float64(m.n) + f) / float64(m.count))
}

func (m frameMonitor) Stopped() bool {
	return m.op.Stopped()
}

func sequenceName(file string, n, count int) string {
	ext := filepath.Ext(file)
	return fmt.Sprintf("%s%0*d%s", strings.TrimSuffix(file, ext), len(strconv.Itoa(count)), n+1, ext)
}

func (op *FileOp) writeFile(file string, f *Format, s sprite.Source, n int, m sprite.Monitor) (err error) {
	out, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file)
		}
	}()

	w := bufio.NewWriter(out)
	if err := f.Write(w, s, n, m); err != nil {
		return err
	}
	return w.Flush()
}

func (op *FileOp) write(f *Format, s sprite.Source) error {
	if !f.Has(FlagSave) {
		return errNotSavable
	}
	if !f.Supports(s.PixelFormat()) {
		return fmt.Errorf("%w: %s", errPixelFormat, s.PixelFormat())
	}
	if f.MaxDimension > 0 && (s.Width() > f.MaxDimension || s.Height() > f.MaxDimension) {
		op.Logger.Warn("sprite is larger than the format supports", "format", f.Name, "max", f.MaxDimension)
	}

	count := s.FrameCount()
	switch {
	case count > 1 && f.Has(FlagSequences):
		for n := 0; n < count; n++ {
			file := sequenceName(op.Filename, n, count)
			if err := op.writeFile(file, f, s, n, frameMonitor{op, n, count}); err != nil {
				return err
			}
			op.Logger.Debug("saved frame", "frame", n, "to", file)
		}
	default:
		if count > 1 && !f.Has(FlagFrames) {
			op.Logger.Warn("format holds a single frame, only the first is saved", "format", f.Name, "frames", count)
		}
		if err := op.writeFile(op.Filename, f, s, 0, op); err != nil {
			return err
		}
	}

	op.Logger.Debug("saved", "format", f.Name, "frames", count)
	return nil
}

// Save writes s to op.Filename using the format matching its extension.
func (op *FileOp) Save(s sprite.Source) error {
	f, err := ForFilename(op.Filename)
	if err != nil {
		return op.fail(err)
	}
	if err := op.write(f, s); err != nil {
		return op.fail(err)
	}
	return nil
}

// Load reads the sprite in filename.
func Load(ctx context.Context, filename string, opts ...Option) (*sprite.Sprite, error) {
	return NewFileOp(ctx, filename, opts...).Load()
}

// Save writes s to filename. Formats that hold one frame per file write
// name1.ext, name2.ext and so on instead.
func Save(ctx context.Context, s sprite.Source, filename string, opts ...Option) error {
	return NewFileOp(ctx, filename, opts...).Save(s)
}
