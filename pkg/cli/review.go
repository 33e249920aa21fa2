package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func reviewCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), uploadFlags(&cfg)...)

	return &cli.Command{
		Name:      "review",
		Usage:     "Review a contract PDF and print the suggested changes",
		ArgsUsage: "<pdf-path>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("pdf path is required")
			}

			ctx = cfg.setupLogging(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return goerr.Wrap(err, "failed to open document", goerr.V("path", path))
			}
			defer f.Close()

			session := uc.Sessions().Create()

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Reviewing contract..."
			sp.Start()
			suggestions, err := uc.ProcessUpload(ctx, session, path, f)
			sp.Stop()

			if err != nil {
				return err
			}

			if session.IntakeErr != "" {
				fmt.Printf("Document intake failed: %s\n", session.IntakeErr)
				return nil
			}
			if len(suggestions) == 0 {
				fmt.Println("No changes suggested.")
				return nil
			}

			fmt.Printf("%d suggested change(s):\n\n", len(suggestions))
			for _, sg := range suggestions {
				fmt.Printf("[%d] Original: %s\n", sg.ID, sg.Original)
				if sg.Modified != "" {
					fmt.Printf("    Modified: %s\n", sg.Modified)
				}
				if sg.Question != "" {
					fmt.Printf("    Question: %s\n", sg.Question)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
