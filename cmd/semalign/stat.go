package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/stat"
	"github.com/revelaction/semalign/storage"
)

type StatOptions struct {
	// Dist prints the tokens per sentence distribution
	Dist bool

	// Top prints the most frequent sense tags
	Top int
}

func statCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "count the sentences, tokens and annotations of the store or of one doc",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.BoolFlag{Name: "dist", Usage: "print the tokens per sentence distribution"},
			&cli.IntFlag{Name: "top", Usage: "print the N most frequent sense tags"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return errors.New("stat takes at most one title")
			}

			p := &Pool{}
			defer p.Close()

			repo, err := NewRecordRepository(p, c.String("store"))
			if err != nil {
				return err
			}
			return statCommand(repo, StatOptions{Dist: c.Bool("dist"), Top: c.Int("top")}, c.Args().First(), ui)
		},
	}
}

func statCommand(repo storage.RecordReader, opts StatOptions, title string, ui UI) error {
	hdl := stat.NewHandler()

	if title != "" {
		doc, err := repo.Read(title)
		if err != nil {
			return fmt.Errorf("doc %s: %w", title, err)
		}
		hdl.Aggregate(doc)
	} else {
		docs, err := repo.List("")
		if err != nil {
			return err
		}
		for _, d := range docs {
			doc, err := repo.Read(d.Title)
			if err != nil {
				return fmt.Errorf("doc %s: %w", d.Title, err)
			}
			hdl.Aggregate(doc)
		}
	}

	stats := hdl.Get()
	fmt.Fprintf(ui.Out, "Num docs %d, num sentences %d, num tokens %d, num tokens per sentence %d\n", stats.NumDocs, stats.NumSentences, stats.NumTokens, stats.TokensPerSentenceMean)
	fmt.Fprintf(ui.Out, "Num annotations %d, resolved %d, distinct senses %d\n", stats.NumAnnotations, stats.NumResolved, len(stats.Senses))

	if opts.Dist {
		lengths := make([]int, 0, len(stats.TokensPerSentenceDis))
		for l := range stats.TokensPerSentenceDis {
			lengths = append(lengths, l)
		}
		sort.Ints(lengths)
		for _, l := range lengths {
			fmt.Fprintf(ui.Out, "%5d %d\n", l, stats.TokensPerSentenceDis[l])
		}
	}

	if opts.Top > 0 {
		tags := make([]string, 0, len(stats.Senses))
		for t := range stats.Senses {
			tags = append(tags, t)
		}
		sort.Slice(tags, func(i, j int) bool {
			if stats.Senses[tags[i]] != stats.Senses[tags[j]] {
				return stats.Senses[tags[i]] > stats.Senses[tags[j]]
			}
			return tags[i] < tags[j]
		})
		for i, t := range tags {
			if i == opts.Top {
				break
			}
			fmt.Fprintf(ui.Out, "%6d %s\n", stats.Senses[t], t)
		}
	}

	return nil
}
