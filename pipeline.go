package spritefile

import (
	"bufio"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultWorkers = 10

	// Ignore any file greater than 16 MB
	maxFileSize = 16 << (10 * 2)
)

// Scanner walks a directory tree recording every sprite file it can load
// in a Catalog.
type Scanner struct {
	catalog *Catalog
	logger  *slog.Logger
	workers int
}

// NewScanner returns a Scanner adding to c. A nil logger uses the package
// logger.
func NewScanner(c *Catalog, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = Logger()
	}
	return &Scanner{
		catalog: c,
		logger:  logger,
		workers: defaultWorkers,
	}
}

func (s *Scanner) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || info.Size() > maxFileSize {
				return nil
			}

			f, err := ForFilename(file)
			if err != nil || !f.Has(FlagLoad) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (s *Scanner) index(ctx context.Context, file string) (*Entry, error) {
	f, err := ForFilename(file)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	h := sha1.New()
	r := io.TeeReader(in, h)

	op := NewFileOp(ctx, file, WithLogger(s.logger))
	sp, err := op.read(bufio.NewReader(r), f)
	if err != nil {
		return nil, err
	}

	// Hash whatever the decoder left unread
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}

	e := &Entry{
		Path:        file,
		SHA1:        fmt.Sprintf("%X", h.Sum(nil)),
		Format:      f.Name,
		Width:       sp.Width(),
		Height:      sp.Height(),
		PixelFormat: sp.PixelFormat(),
		Frames:      sp.FrameCount(),
	}
	if p := sp.Palette(0); p != nil {
		e.Colors = p.Len()
	}
	return e, nil
}

func (s *Scanner) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			e, err := s.index(ctx, file)
			if err != nil {
				s.logger.Warn("skipping file", "file", file, "error", err)
				continue
			}

			if err := s.catalog.Add(*e); err != nil {
				errc <- err
				return
			}
			s.logger.Info("added", "file", file, "format", e.Format, "sha1", e.SHA1)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and adds every loadable sprite file to the catalog.
// Files that fail to decode are logged and skipped; a catalog error stops
// the scan.
func (s *Scanner) Scan(ctx context.Context, path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < s.workers; i++ {
		errc, err := s.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
