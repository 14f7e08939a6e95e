package main

import (
	"errors"
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/storage"
	"github.com/revelaction/semalign/storage/filesystem"
	"github.com/revelaction/semalign/storage/sqlite/zombiezen"
)

type CopyOptions struct {
	From string
	To   string

	NoProgress bool
}

func copyCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "copy the docs of a record store into another, f.ex. a JSON lines directory into a SQLite file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "source store", Required: true},
			&cli.StringFlag{Name: "to", Usage: "destination store: a directory or a SQLite file", Required: true},
			&cli.BoolFlag{Name: "no-progress", Usage: "do not show the progress bar"},
		},
		Action: func(c *cli.Context) error {
			return copyCommand(CopyOptions{
				From:       c.String("from"),
				To:         c.String("to"),
				NoProgress: c.Bool("no-progress"),
			}, ui)
		},
	}
}

func newCopySink(p *Pool, path string) (storage.RecordWriter, error) {
	if !isSQLite(path) {
		return filesystem.NewDocStore(path)
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	if err := zombiezen.CreateSchemas(pool, zombiezen.RecordsSchema); err != nil {
		return nil, fmt.Errorf("failed to create records tables: %w", err)
	}
	return zombiezen.NewDocStore(pool), nil
}

func copyCommand(opts CopyOptions, ui UI) error {
	p := &Pool{}
	defer p.Close()

	src, err := NewRecordRepository(p, opts.From)
	if err != nil {
		return err
	}

	dst, err := newCopySink(p, opts.To)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Reading docs from %s...\n", opts.From)
	docs, err := src.List("")
	if err != nil {
		return err
	}

	var bar *uiprogress.Bar
	if !opts.NoProgress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(docs))
		bar.AppendCompleted()
		bar.PrependElapsed()
		defer uiprogress.Stop()
	}

	count, existing := 0, 0
	for _, docMeta := range docs {
		doc, err := src.Read(docMeta.Title)
		if err != nil {
			return fmt.Errorf("failed to read doc %s: %w", docMeta.Title, err)
		}

		err = dst.Write(doc)
		switch {
		case errors.Is(err, storage.ErrDocExists):
			existing++
		case err != nil:
			return fmt.Errorf("failed to write doc %s: %w", docMeta.Title, err)
		default:
			count++
		}

		if bar != nil {
			bar.Incr()
		}
	}

	fmt.Fprintf(ui.Out, "Successfully copied %d docs from %s to %s, %d already present\n", count, opts.From, opts.To, existing)
	return nil
}
