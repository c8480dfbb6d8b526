package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/pixelrendr"
	"github.com/bodgit/pixelrendr/library"
	"github.com/bodgit/pixelrendr/loader"
	"github.com/bodgit/pixelrendr/palette"
	"github.com/bodgit/pixelrendr/store"
	"github.com/bodgit/pixelrendr/tile"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const defaultDB = "pixelrendr.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	if c.Bool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

func openDB(c *cli.Context) (*store.SpriteDB, *zap.Logger, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, nil, err
	}

	db, err := store.NewSpriteDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return db, logger, nil
}

func newRendr(c *cli.Context, db *store.SpriteDB, logger *zap.Logger) (*pixelrendr.PixelRendr, error) {
	pal, err := db.Palette()
	if err != nil {
		return nil, err
	}

	filters, err := db.Filters()
	if err != nil {
		return nil, err
	}

	raw, err := db.Library()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return pixelrendr.New(pixelrendr.Settings{
		Palette: pal,
		Library: raw,
		Filters: filters,
		Scale:   c.Int("scale"),
		Loader:  loader.File{Dir: cwd},
		Logger:  logger,
	})
}

func splitKey(key string) []string {
	var path []string
	for _, s := range strings.Split(key, "/") {
		if s != "" {
			path = append(path, s)
		}
	}
	return path
}

func writeResult(w io.Writer, result library.Result, width int) error {
	if d, ok := result.(*library.Directory); ok {
		for _, k := range d.Keys() {
			if _, err := fmt.Fprintln(w, k); err != nil {
				return err
			}
		}
		return nil
	}
	return tile.Encode(w, result, width)
}

func main() {
	app := cli.NewApp()

	app.Name = "pixelrendr"
	app.Usage = "Pixel-art sprite library utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	scaleFlag := &cli.IntFlag{
		Name:  "scale",
		Value: 1,
		Usage: "output pixels per source pixel",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PIXELRENDR_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Import palette, filters and library from JSON",
			Description: "The document holds \"palette\", \"filters\" and \"library\" keys and replaces the contents of the database.",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, logger, err := openDB(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()
				defer logger.Sync()

				if err := db.ImportJSON(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}
				logger.Info("imported library", zap.String("file", c.Args().First()))

				return nil
			},
		},
		{
			Name:        "palette",
			Usage:       "Generate a palette from an image",
			Description: "Prints the palette, one \"r,g,b,a\" color per line.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: 256,
					Usage: "maximum number of colors",
				},
				&cli.BoolFlag{
					Name:  "zero",
					Usage: "always include a transparent color",
				},
				&cli.BoolFlag{
					Name:  "save",
					Usage: "store as the default palette",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := loader.File{}.Load(c.Context, c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				p := palette.Generate(m, c.Int("colors"), c.Bool("zero"))
				for _, px := range p {
					fmt.Println(px)
				}

				if !c.Bool("save") {
					return nil
				}

				db, logger, err := openDB(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()
				defer logger.Sync()

				if err := db.SetPalette(p); err != nil {
					return cli.Exit(err, 1)
				}
				logger.Info("saved palette", zap.Int("colors", len(p)))

				return nil
			},
		},
		{
			Name:        "encode",
			Usage:       "Encode an image with the default palette",
			Description: "Prints the encoded sprite and optionally stores it in the library.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "key",
					Usage: "store the sprite under `KEY`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, logger, err := openDB(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()
				defer logger.Sync()

				r, err := newRendr(c, db, logger)
				if err != nil {
					return cli.Exit(err, 1)
				}

				s, err := r.EncodeURI(c.Context, c.Args().First(), nil)
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Println(s)

				if key := c.String("key"); key != "" {
					if err := db.PutSprite(splitKey(key), s); err != nil {
						return cli.Exit(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Encode every image below a directory",
			Description: "Each image is stored in the library under its path, without the extension.",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "jobs",
					Value: 10,
					Usage: "number of images to encode concurrently",
				},
				&cli.StringFlag{
					Name:  "prefix",
					Usage: "store sprites below `KEY`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, logger, err := openDB(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()
				defer logger.Sync()

				r, err := newRendr(c, db, logger)
				if err != nil {
					return cli.Exit(err, 1)
				}

				dir, err := filepath.Abs(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				ctx, cancel := context.WithCancel(c.Context)
				defer cancel()

				prefix := splitKey(c.String("prefix"))
				if err := r.Scan(ctx, os.DirFS(dir), c.Int("jobs"), func(key []string, source string) error {
					return db.PutSprite(append(prefix[:len(prefix):len(prefix)], key...), source)
				}); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "decode",
			Usage:       "Decode a sprite to PNG",
			Description: "Multiple sprites are assembled into a single image. Directories are listed instead.",
			ArgsUsage:   "KEY",
			Flags: []cli.Flag{
				scaleFlag,
				&cli.IntFlag{
					Name:     "width",
					Usage:    "sprite width in output pixels",
					Required: true,
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "sprite height in output pixels",
				},
				&cli.BoolFlag{
					Name:  "flip-horiz",
					Usage: "mirror horizontally",
				},
				&cli.BoolFlag{
					Name:  "flip-vert",
					Usage: "mirror vertically",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write to `FILE` instead of stdout",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, logger, err := openDB(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()
				defer logger.Sync()

				r, err := newRendr(c, db, logger)
				if err != nil {
					return cli.Exit(err, 1)
				}

				result, err := r.Decode(c.Args().First(), pixelrendr.Attributes{
					"spriteWidth":  c.Int("width"),
					"spriteHeight": c.Int("height"),
					"flipHoriz":    c.Bool("flip-horiz"),
					"flipVert":     c.Bool("flip-vert"),
				})
				if err != nil {
					return cli.Exit(err, 1)
				}

				var w io.Writer = os.Stdout
				if output := c.String("output"); output != "" {
					f, err := os.Create(output)
					if err != nil {
						return cli.Exit(err, 1)
					}
					defer f.Close()
					w = f
				}

				if err := writeResult(w, result, c.Int("width")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
