package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/corpus"
	"github.com/revelaction/semalign/repair"
)

type FixOptions struct {
	From string
	To   string
	Glob string

	NoProgress bool
}

func fixCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "repair raw tag files into well formed XML",
		ArgsUsage: "<from-dir> <to-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "glob", Usage: "only repair files matching the pattern", Value: "*"},
			&cli.BoolFlag{Name: "no-progress", Usage: "do not show the progress bar"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("fix needs a source and a destination directory. Usage: semalign fix <from-dir> <to-dir>")
			}
			return fixCommand(FixOptions{
				From:       c.Args().Get(0),
				To:         c.Args().Get(1),
				Glob:       c.String("glob"),
				NoProgress: c.Bool("no-progress"),
			}, ui)
		},
	}
}

// fixCommand mirrors the tree of opts.From into opts.To. Files already
// present in opts.To are left alone.
func fixCommand(opts FixOptions, ui UI) error {
	files, err := corpus.Walk(opts.From, opts.Glob)
	if err != nil {
		return err
	}

	var bar *uiprogress.Bar
	if !opts.NoProgress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(files))
		bar.AppendCompleted()
		bar.PrependElapsed()
		defer uiprogress.Stop()
	}

	var repaired, existing int
	for _, src := range files {
		rel, err := filepath.Rel(opts.From, src)
		if err != nil {
			return err
		}

		err = repair.File(src, filepath.Join(opts.To, rel))
		switch {
		case errors.Is(err, repair.ErrExists):
			existing++
		case err != nil:
			return fmt.Errorf("failed to repair %s: %w", src, err)
		default:
			repaired++
		}

		if bar != nil {
			bar.Incr()
		}
	}

	fmt.Fprintf(ui.Out, "🔧 repaired %d files, %d already present in %s\n", repaired, existing, opts.To)
	return nil
}
