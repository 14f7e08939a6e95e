package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/render"
	"github.com/revelaction/semalign/storage"
)

type DocOptions struct {
	Store  string
	Format string
	Start  int
	Count  int
	JSON   bool
	Tokens bool
}

func docCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "doc",
		Usage:     "list the stored docs, or show the records of one",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "text, tag, sense or aggr", Value: render.Defaultformat},
			&cli.IntFlag{Name: "start", Usage: "first record to show"},
			&cli.IntFlag{Name: "count", Usage: "number of records to show, -1 for all", Value: -1},
			&cli.BoolFlag{Name: "json", Usage: "print the records as JSON"},
			&cli.BoolFlag{Name: "tokens", Usage: "include the source tokens in the JSON output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return errors.New("doc takes at most one title")
			}

			p := &Pool{}
			defer p.Close()

			repo, err := NewRecordRepository(p, c.String("store"))
			if err != nil {
				return err
			}

			return docCommand(repo, DocOptions{
				Format: c.String("format"),
				Start:  c.Int("start"),
				Count:  c.Int("count"),
				JSON:   c.Bool("json"),
				Tokens: c.Bool("tokens"),
			}, c.Args().First(), ui)
		},
	}
}

func docCommand(repo storage.RecordReader, opts DocOptions, title string, ui UI) error {
	if title == "" {
		return listDocs(repo, ui)
	}

	doc, err := repo.Read(title)
	if err != nil {
		return fmt.Errorf("doc %s: %w", title, err)
	}

	start := opts.Start
	if start < 0 {
		start = 0
	}
	if start >= len(doc.Records) {
		return nil
	}

	records := doc.Records[start:]
	if opts.Count >= 0 && opts.Count < len(records) {
		records = records[:opts.Count]
	}

	if opts.JSON {
		jr := render.NewJSONRenderer(ui.Out)
		jr.WithTokens = opts.Tokens
		return jr.Render(records)
	}

	r := render.NewRenderer()
	r.Out = ui.Out
	r.Format = opts.Format
	r.HasPrefix = true
	return r.Render(records)
}

func listDocs(repo storage.RecordReader, ui UI) error {
	docs, err := repo.List("")
	if err != nil {
		return err
	}

	for _, doc := range docs {
		fmt.Fprintf(ui.Out, "📖 %-10s %s\n", doc.Corpus, doc.Title)
	}

	return nil
}
