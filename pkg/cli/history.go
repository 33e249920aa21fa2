package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "history",
		Usage: "List all recorded clause decisions",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			uc, err := cfg.newReadOnlyUseCase(ctx)
			if err != nil {
				return err
			}

			snippets, err := uc.ListSnippets(ctx)
			if err != nil {
				return err
			}

			if len(snippets) == 0 {
				fmt.Println("No clause decisions recorded.")
				return nil
			}

			for i, sn := range snippets {
				fmt.Printf("%d. Original: %s\n", i+1, sn.Original)
				if sn.Modified != "" {
					fmt.Printf("   Modified: %s\n", sn.Modified)
				}
				fmt.Printf("   Ignored: %v\n", sn.Ignored)
				fmt.Printf("   Recorded: %s\n\n", sn.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}
}
