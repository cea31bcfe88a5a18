/*
Package spritefile loads and saves pixel-art sprites in the ICO and PCX
formats, plus PNG and BMP through the standard image codecs.

Formats are described by a registry of Format values recording what each
one can load and save. Load and Save pick the format from the file
extension and run the codec through a FileOp, which reports progress and
errors and lets a context stop a PCX decode between scanlines.

A Catalog records the sprites found under a directory tree in a SQLite
database.
*/
package spritefile

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger sets the default logger used by FileOp and Scanner. By default
// nothing is logged. Passing nil restores that.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the default logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
