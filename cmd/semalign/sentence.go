package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/render"
	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
)

func sentenceCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "sentence",
		Usage:     "show a stored sentence, its annotations and tokens",
		ArgsUsage: "<sentence-id>",
		Flags:     []cli.Flag{storeFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("sentence needs a sentence id, f.ex. br-a01-1-1")
			}

			p := &Pool{}
			defer p.Close()

			repo, err := NewRecordRepository(p, c.String("store"))
			if err != nil {
				return err
			}
			return sentenceCommand(repo, c.Args().First(), ui)
		},
	}
}

func sentenceCommand(repo storage.RecordReader, id string, ui UI) error {
	rec, err := repo.Sentence(id)
	if err != nil {
		return fmt.Errorf("sentence %s: %w", id, err)
	}

	r := render.NewRenderer()
	r.Out = ui.Out
	r.HasPrefix = true
	if err := r.Render([]sent.Record{rec}); err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)

	r.HasPrefix = false
	r.Format = "tag"
	if err := r.Render([]sent.Record{rec}); err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)

	for _, token := range rec.Tokens {
		fmt.Fprintf(ui.Out, "%20q %15q %5s %22s %s\n", token.Text, token.Lemma, token.Kind, token.SenseKey, token.Relation)
	}

	return nil
}
