package main

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/pakbmp"
	"github.com/urfave/cli/v2"
)

const defaultDB = "pakbmp.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadConfig(c *cli.Context) (pakbmp.Config, error) {
	if c.String("config") == "" {
		return pakbmp.DefaultConfig(), nil
	}
	return pakbmp.LoadConfig(c.String("config"))
}

// run builds a converter from the global flags and passes it the first
// argument. Only the scan command uses the catalogue.
func run(withCatalogue bool, fn func(*pakbmp.Converter, string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		logger := newLogger(c)

		config, err := loadConfig(c)
		if err != nil {
			return cli.Exit(err, 1)
		}

		var catalogue *pakbmp.Catalogue
		if withCatalogue {
			catalogue, err = pakbmp.NewCatalogue(c.String("db"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer catalogue.Close()
		}

		if err := fn(pakbmp.New(config, catalogue, logger), c.Args().First()); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "pakbmp"
	app.Usage = "Electronic Arts PAK image and Windows BMP converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"PAKBMP_CONFIG"},
			Usage:   "path to TOML configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PAKBMP_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalogue database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "pak2bmp",
			Usage:       "Convert a PAK image and its palette to a BMP",
			Description: "The palette is expected alongside FILE with a .PAL extension and the bitmap is written with a .BMP extension.",
			ArgsUsage:   "FILE",
			Action: run(false, func(m *pakbmp.Converter, file string) error {
				_, err := m.PakToBMP(file)
				return err
			}),
		},
		{
			Name:        "bmp2pak",
			Usage:       "Convert a 320x200 256 color BMP to a PAK image and palette",
			Description: "The image and palette are written alongside FILE with .PAK and .PAL extensions.",
			ArgsUsage:   "FILE",
			Action: run(false, func(m *pakbmp.Converter, file string) error {
				_, _, err := m.BMPToPak(file)
				return err
			}),
		},
		{
			Name:        "import",
			Usage:       "Convert a PNG, GIF, JPEG or BMP to a PAK image and palette",
			Description: "The picture is scaled and cropped to 320x200 and reduced to 256 colors if necessary.",
			ArgsUsage:   "FILE",
			Action: run(false, func(m *pakbmp.Converter, file string) error {
				_, _, err := m.Import(file)
				return err
			}),
		},
		{
			Name:        "scan",
			Usage:       "Convert every PAK image under a directory to BMP",
			Description: "Converted bitmaps are recorded in the catalogue database and reused for identical images.",
			ArgsUsage:   "DIRECTORY",
			Action: run(true, func(m *pakbmp.Converter, dir string) error {
				return m.Scan(dir)
			}),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
