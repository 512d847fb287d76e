package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/cli/config"
	"github.com/secmon-lab/taproom/pkg/repository/memory"
	"github.com/secmon-lab/taproom/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	var number int
	var asJSON bool
	var appCfg config.AppConfig
	var sourceCfg config.Source

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "number",
			Aliases:     []string{"n"},
			Usage:       "Number of records to fetch (0 uses the configured default)",
			Destination: &number,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the normalized records as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, sourceCfg.Flags()...)

	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Fetch and normalize records without saving them",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			// nothing is written; the repository only satisfies the constructor
			uc := usecase.New(memory.New(), useCaseOptions(app, &sourceCfg)...)

			count := number
			if count == 0 {
				count = uc.Beer.DefaultCount()
			}

			beers, err := uc.Beer.Preview(ctx, count)
			if err != nil {
				return goerr.Wrap(err, "fetch failed")
			}

			w := c.Root().Writer
			if asJSON {
				return writeJSON(w, beers)
			}
			writePreview(w, beers)
			return nil
		},
	}
}
