package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func submitCommand() *cli.Command {
	var (
		cfg      config
		original string
		modified string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "original",
			Aliases:     []string{"o"},
			Usage:       "Clause text as it appears in contracts",
			Required:    true,
			Destination: &original,
		},
		&cli.StringFlag{
			Name:        "modified",
			Aliases:     []string{"m"},
			Usage:       "Replacement text to propose for similar clauses",
			Required:    true,
			Destination: &modified,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "submit",
		Usage: "Record a clause change without going through a review",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			uc, err := cfg.newReadOnlyUseCase(ctx)
			if err != nil {
				return err
			}

			if err := uc.SubmitManualChange(ctx, original, modified); err != nil {
				return err
			}

			fmt.Println("Clause change recorded.")
			return nil
		},
	}
}
