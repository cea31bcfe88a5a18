package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/bodgit/spritefile"
	"github.com/bodgit/spritefile/ico"
	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"github.com/urfave/cli/v2"
)

const defaultDB = "spritefile.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	var w io.Writer = io.Discard
	if c.Bool("verbose") {
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	spritefile.SetLogger(logger)
	return logger
}

func targetFormat(c *cli.Context) (raster.PixelFormat, bool, error) {
	var (
		format raster.PixelFormat
		n      int
	)
	for _, f := range []raster.PixelFormat{raster.RGB, raster.Grayscale, raster.Indexed} {
		if c.Bool(f.String()) {
			format = f
			n++
		}
	}
	switch n {
	case 0:
		return 0, false, nil
	case 1:
		return format, true, nil
	default:
		return 0, false, errors.New("only one of --rgb, --grayscale or --indexed can be used")
	}
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	format, ok, err := targetFormat(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	s, err := spritefile.Load(c.Context, c.Args().Get(0), spritefile.WithLogger(logger))
	if err != nil {
		return cli.Exit(err, 1)
	}

	if ok && format != s.PixelFormat() {
		logger.Info("converting", "from", s.PixelFormat(), "to", format)
		if s, err = sprite.Convert(s, format); err != nil {
			return cli.Exit(err, 1)
		}
	}

	if err := spritefile.Save(c.Context, s, c.Args().Get(1), spritefile.WithLogger(logger)); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)
	file := c.Args().First()

	f, err := spritefile.ForFilename(file)
	if err != nil {
		return cli.Exit(err, 1)
	}

	s, err := spritefile.Load(c.Context, file, spritefile.WithLogger(logger))
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
	fmt.Fprintf(w, "Format:\t%s\n", f.Name)
	fmt.Fprintf(w, "Size:\t%dx%d\n", s.Width(), s.Height())
	fmt.Fprintf(w, "Pixel format:\t%s\n", s.PixelFormat())
	fmt.Fprintf(w, "Frames:\t%d\n", s.FrameCount())
	if p := s.Palette(0); p != nil {
		fmt.Fprintf(w, "Colors:\t%d\n", p.Len())
	}

	if f.Name == "ico" {
		r, err := os.Open(file)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer r.Close()

		entries, err := ico.ReadDirectory(r)
		if err != nil {
			return cli.Exit(err, 1)
		}
		for i, e := range entries {
			width, height := e.Size()
			fmt.Fprintf(w, "Image %d:\t%dx%d, %d bpp, %d bytes at %d\n", i, width, height, e.BitCount, e.BytesInRes, e.ImageOffset)
		}
	}

	return w.Flush()
}

func palette(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	s, err := spritefile.Load(c.Context, c.Args().Get(0), spritefile.WithLogger(logger))
	if err != nil {
		return cli.Exit(err, 1)
	}

	var pals []*raster.Palette
	for n := 0; n < s.FrameCount(); n++ {
		if p := s.Palette(n); p != nil {
			pals = append(pals, p)
		}
	}
	if len(pals) == 0 {
		return cli.Exit(fmt.Sprintf("%s has no palette", c.Args().Get(0)), 1)
	}

	if err := writePAL(c.Args().Get(1), pals); err != nil {
		return cli.Exit(err, 1)
	}
	logger.Info("wrote palettes", "count", len(pals), "file", c.Args().Get(1))

	return nil
}

func writePAL(file string, pals []*raster.Palette) (err error) {
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

	return raster.WritePAL(out, pals...)
}

func scan(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	db, err := spritefile.NewCatalog(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	if err := spritefile.NewScanner(db, logger).Scan(c.Context, c.Args().First()); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func list(c *cli.Context) error {
	newLogger(c)

	db, err := spritefile.NewCatalog(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	entries, err := db.List()
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tFORMAT\tSIZE\tPIXELS\tFRAMES\tCOLORS\tSHA1")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%d\t%d\t%s\n", e.Path, e.Format, e.Width, e.Height, e.PixelFormat, e.Frames, e.Colors, e.SHA1)
	}

	return w.Flush()
}

func main() {
	app := cli.NewApp()

	app.Name = "spritefile"
	app.Usage = "Sprite file conversion and cataloguing utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITEFILE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert a sprite between formats",
			Description: "The output format is chosen by the file extension. Formats holding one frame per file write numbered files.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  raster.RGB.String(),
					Usage: "convert to RGB",
				},
				&cli.BoolFlag{
					Name:  raster.Grayscale.String(),
					Usage: "convert to grayscale",
				},
				&cli.BoolFlag{
					Name:  raster.Indexed.String(),
					Usage: "convert to indexed color",
				},
			},
			Action: convert,
		},
		{
			Name:      "info",
			Usage:     "Describe a sprite file",
			ArgsUsage: "FILE",
			Action:    info,
		},
		{
			Name:      "palette",
			Usage:     "Export the palettes of a sprite as a RIFF palette file",
			ArgsUsage: "FILE PALETTE",
			Action:    palette,
		},
		{
			Name:      "scan",
			Usage:     "Scan filesystem and add sprite files to the catalog",
			ArgsUsage: "DIRECTORY",
			Action:    scan,
		},
		{
			Name:   "list",
			Usage:  "List the catalog",
			Action: list,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
