package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/config"
	"github.com/revelaction/semalign/logging"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

const configKey = "config"

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := newApp(ui).Run(os.Args); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "semalign: %v\n", err)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "semalign",
		Usage:     "align the sense annotations of a SemCor style corpus to character offsets",
		Writer:    ui.Out,
		ErrWriter: ui.Err,

		HideVersion:          true,
		EnableBashCompletion: true,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"SEMALIGN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
		},

		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}

			if c.IsSet("log-level") {
				cfg.Log.Level = c.String("log-level")
			}
			if c.IsSet("log-format") {
				cfg.Log.Format = c.String("log-format")
			}

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(cfg.Log.Format)
			if err != nil {
				return err
			}
			logging.Init(ui.Err, level, format)

			c.App.Metadata = map[string]interface{}{configKey: cfg}
			return nil
		},

		Commands: []*cli.Command{
			convertCmd(ui),
			fixCmd(ui),
			docCmd(ui),
			sentenceCmd(ui),
			inspectCmd(ui),
			statCmd(ui),
			unkCmd(ui),
			sensesCmd(ui),
			copyCmd(ui),
			bashCmd(ui),
			versionCmd(ui),
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// appConfig returns the configuration loaded before the command ran.
func appConfig(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// storeFlag is the record store of the reading commands.
func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "store",
		Aliases:  []string{"s"},
		Usage:    "record store: a JSON lines directory or a SQLite file",
		EnvVars:  []string{"SEMALIGN_STORE"},
		Required: true,
	}
}
