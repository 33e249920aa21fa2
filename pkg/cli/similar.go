package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func similarCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of matches",
			Value:       4,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "similar",
		Usage:     "Search recorded clause decisions by similarity",
		ArgsUsage: "<clause-text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return goerr.New("clause text is required")
			}

			ctx = cfg.setupLogging(ctx)

			uc, err := cfg.newReadOnlyUseCase(ctx)
			if err != nil {
				return err
			}

			matches, err := uc.SearchSimilar(ctx, query, int(limit))
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				fmt.Println("No similar clause decisions found.")
				return nil
			}

			for i, m := range matches {
				fmt.Printf("%d. Original: %s\n", i+1, m.Original)
				if m.Modified != "" {
					fmt.Printf("   Modified: %s\n", m.Modified)
				}
				fmt.Printf("   Ignored: %v\n\n", m.Ignored)
			}

			return nil
		},
	}
}
