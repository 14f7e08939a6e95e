package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/stat"
	"github.com/revelaction/semalign/storage"
)

func unkCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "unk",
		Usage:     "list the known and unknown concepts of the store or of one doc, most frequent first",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "print only the first N concepts of each list"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return errors.New("unk takes at most one title")
			}

			p := &Pool{}
			defer p.Close()

			repo, err := NewRecordRepository(p, c.String("store"))
			if err != nil {
				return err
			}
			return unkCommand(repo, c.Int("limit"), c.Args().First(), ui)
		},
	}
}

func unkCommand(repo storage.RecordReader, limit int, title string, ui UI) error {
	concepts := stat.NewConcepts()

	titles := []string{title}
	if title == "" {
		docs, err := repo.List("")
		if err != nil {
			return err
		}
		titles = titles[:0]
		for _, d := range docs {
			titles = append(titles, d.Title)
		}
	}

	for _, t := range titles {
		doc, err := repo.Read(t)
		if err != nil {
			return fmt.Errorf("doc %s: %w", t, err)
		}
		concepts.Aggregate(doc)
	}

	known, unknown := concepts.Known(), concepts.Unknown()

	fmt.Fprintln(ui.Out, "# Known concepts")
	fmt.Fprintln(ui.Out, "synset\tlemma\tcount")
	printConcepts(known, limit, ui)

	fmt.Fprintln(ui.Out, "# Unknown concepts")
	fmt.Fprintln(ui.Out, "sensekey\tlemma\tcount")
	printConcepts(unknown, limit, ui)
	if len(unknown) == 0 {
		fmt.Fprintln(ui.Out, "no unresolved annotations stored. Convert with --keep-unresolved to record them")
	}

	fmt.Fprintln(ui.Out, "# Total")
	fmt.Fprintf(ui.Out, "Known: %d concepts, %d instances\n", len(known), concepts.KnownInstances)
	fmt.Fprintf(ui.Out, "Unknown: %d concepts, %d instances\n", len(unknown), concepts.UnknownInstances)
	return nil
}

func printConcepts(list []stat.Concept, limit int, ui UI) {
	for i, c := range list {
		if limit > 0 && i == limit {
			break
		}
		fmt.Fprintf(ui.Out, "%s\t%s\t%d\n", c.Tag, c.Lemma, c.Count)
	}
}
