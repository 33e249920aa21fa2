package cli

import (
	"context"

	"github.com/redlinehq/redline/pkg/server"
	"github.com/redlinehq/redline/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("REDLINE_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, uploadFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the review API for the web UI",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("starting review API", "addr", addr)
			return server.New(uc).Listen(addr)
		},
	}
}
