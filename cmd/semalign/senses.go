package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/semalign/storage/filesystem"
	"github.com/revelaction/semalign/storage/sqlite/zombiezen"
)

type ImportSensesOptions struct {
	From string
	To   string
}

func sensesCmd(ui UI) *cli.Command {
	return &cli.Command{
		Name:  "senses",
		Usage: "manage the sense inventory",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "import a key<TAB>id inventory file into a SQLite inventory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "tab separated inventory file", Required: true},
					&cli.StringFlag{Name: "to", Usage: "SQLite file", EnvVars: []string{"SEMALIGN_INVENTORY"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					return importSensesCommand(c.Context, ImportSensesOptions{From: c.String("from"), To: c.String("to")}, ui)
				},
			},
		},
	}
}

func importSensesCommand(ctx context.Context, opts ImportSensesOptions, ui UI) error {
	m, err := filesystem.LoadInventory(opts.From)
	if err != nil {
		return err
	}

	pool, err := zombiezen.NewPool(opts.To, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := zombiezen.CreateSchemas(pool, zombiezen.SensesSchema); err != nil {
		return fmt.Errorf("failed to create senses table: %w", err)
	}

	n, err := zombiezen.NewInventory(pool).Import(ctx, m)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Successfully imported %d senses from %s to %s\n", n, opts.From, opts.To)
	return nil
}
