package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/inspect"
	"github.com/revelaction/semalign/render"
)

func inspectCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "browse the stored records from an interactive prompt",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.BoolFlag{Name: "no-color", Usage: "do not color the annotated spans"},
			&cli.BoolFlag{Name: "no-prefix", Usage: "do not prefix records with their id"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "text, tag, sense or aggr", Value: render.Defaultformat},
		},
		Action: func(c *cli.Context) error {
			p := &Pool{}
			defer p.Close()

			repo, err := NewRecordRepository(p, c.String("store"))
			if err != nil {
				return err
			}

			r := render.NewRenderer()
			r.Out = ui.Out
			r.HasColor = !c.Bool("no-color")
			r.HasPrefix = !c.Bool("no-prefix")
			r.Format = c.String("format")

			h := inspect.NewHandler(repo, r)
			h.Out = ui.Out
			return h.Run()
		},
	}
}
