package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/config"
	"github.com/revelaction/semalign/corpus"
	"github.com/revelaction/semalign/diag"
	"github.com/revelaction/semalign/pipeline"
)

type ConvertOptions struct {
	Root string
	Dirs []string
	Glob string

	// Limit processes only the first files. 0 means all.
	Limit int

	Store     string
	Format    string
	Name      string
	Overwrite bool
	Inventory string

	NoProgress bool
	JSON       bool
}

func convertCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "align the sense tagged files of a corpus and store the records",
		ArgsUsage: "<corpus-root>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "dir", Usage: "tagged directory relative to the root", Value: cli.NewStringSlice(corpus.DefaultDirs...)},
			&cli.StringFlag{Name: "glob", Usage: "walk the whole root for files matching the pattern instead of the tagged directories"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "process only the first N files"},
			&cli.StringFlag{Name: "store", Aliases: []string{"s"}, Usage: "output: a directory (jsonl, tsv) or a SQLite file", EnvVars: []string{"SEMALIGN_STORE"}, Required: true},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "jsonl, tsv or sqlite. Guessed from the store path when empty"},
			&cli.StringFlag{Name: "name", Usage: "base name of the tsv files", Value: "semcor"},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace existing jsonl outputs"},
			&cli.StringFlag{Name: "inventory", Aliases: []string{"i"}, Usage: "sense inventory: a key<TAB>id file or a SQLite file", EnvVars: []string{"SEMALIGN_INVENTORY"}, Required: true},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "files processed at once"},
			&cli.BoolFlag{Name: "with-nonsense", Usage: "keep placeholder senses of proper names and the copula"},
			&cli.BoolFlag{Name: "keep-unresolved", Usage: "keep senses without canonical id, tagged with their key"},
			&cli.BoolFlag{Name: "fail-fast", Usage: "stop at the first skipped sentence or unreadable file"},
			&cli.BoolFlag{Name: "no-progress", Usage: "do not show the progress bar"},
			&cli.BoolFlag{Name: "json", Usage: "print the run report as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("convert needs the corpus root. Usage: semalign convert [options] <corpus-root>")
			}

			opts := ConvertOptions{
				Root:       c.Args().First(),
				Dirs:       c.StringSlice("dir"),
				Glob:       c.String("glob"),
				Limit:      c.Int("limit"),
				Store:      c.String("store"),
				Format:     c.String("format"),
				Name:       c.String("name"),
				Overwrite:  c.Bool("overwrite"),
				Inventory:  c.String("inventory"),
				NoProgress: c.Bool("no-progress"),
				JSON:       c.Bool("json"),
			}

			cfg := appConfig(c)
			if c.IsSet("workers") {
				cfg.Workers = c.Int("workers")
			}
			if c.IsSet("with-nonsense") {
				cfg.WithNonsense = c.Bool("with-nonsense")
			}
			if c.IsSet("keep-unresolved") {
				cfg.KeepUnresolved = c.Bool("keep-unresolved")
			}
			if c.IsSet("fail-fast") {
				cfg.FailFast = c.Bool("fail-fast")
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			return convertCommand(ctx, opts, cfg, ui)
		},
	}
}

// convertFiles returns the files to process, in order, cut to the limit.
func convertFiles(opts ConvertOptions) ([]string, error) {
	var (
		files []string
		err   error
	)

	if opts.Glob != "" {
		files, err = corpus.Walk(opts.Root, opts.Glob)
	} else {
		set := corpus.NewFileSet(opts.Root)
		set.Dirs = opts.Dirs
		files, err = set.Files()
	}
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 && opts.Limit < len(files) {
		files = files[:opts.Limit]
	}
	return files, nil
}

func convertCommand(ctx context.Context, opts ConvertOptions, cfg config.Config, ui UI) (err error) {
	files, err := convertFiles(opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no corpus files found under %s", opts.Root)
	}

	p := &Pool{Size: cfg.Workers}
	defer func() {
		if cerr := p.Close(); err == nil {
			err = cerr
		}
	}()

	inv, err := NewInventory(p, opts.Inventory)
	if err != nil {
		return err
	}

	runId := uuid.NewString()
	sink, closeSink, err := NewSink(p, opts, runId)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSink(); err == nil {
			err = cerr
		}
	}()

	runner := pipeline.NewRunner(cfg.NewProcessor(inv))
	runner.RunId = runId
	runner.FailFast = cfg.FailFast
	// all docs share the tsv files
	runner.Ordered = sinkFormat(opts.Format, opts.Store) == FormatTSV
	if cfg.Workers > 0 {
		runner.Workers = cfg.Workers
	}

	if !opts.NoProgress {
		var current atomic.Value
		current.Store("")

		uiprogress.Start()
		bar := uiprogress.AddBar(len(files))
		bar.AppendCompleted()
		bar.PrependElapsed()
		bar.AppendFunc(func(b *uiprogress.Bar) string {
			return current.Load().(string)
		})

		runner.OnFile = func(path string, err error) {
			current.Store(path)
			bar.Incr()
		}
		defer uiprogress.Stop()
	}

	rep, err := runner.Run(ctx, files, sink)
	if err != nil {
		return err
	}

	return printReport(rep, opts.JSON, ui)
}

func printReport(rep pipeline.Report, asJSON bool, ui UI) error {
	if asJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintf(ui.Out, "🏁 run %s in %s\n", rep.RunId, rep.Duration.Round(time.Millisecond))
	fmt.Fprintf(ui.Out, "📖 files %d, docs %d, existing %d, failed %d\n", rep.Files, rep.Docs, rep.Existing, rep.Failed)
	fmt.Fprintf(ui.Out, "✍  sentences %d, records %d, skipped %d, annotations %d\n", rep.Sentences, rep.Records, rep.Skipped, rep.Annotations)
	fmt.Fprintf(ui.Out, "🔑 lookups: hits %d, misses %d, loads %d\n", rep.Cache.Hits, rep.Cache.Misses, rep.Cache.Loads)

	for _, k := range diag.Kinds() {
		if n := rep.Counts[k]; n > 0 {
			fmt.Fprintf(ui.Out, "%25s %d\n", k, n)
		}
	}
	return nil
}
