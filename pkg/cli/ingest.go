package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/cli/config"
	"github.com/secmon-lab/taproom/pkg/usecase"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var number int
	var asJSON bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var sourceCfg config.Source

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "number",
			Aliases:     []string{"n"},
			Usage:       "Number of records to ingest (0 uses the configured default)",
			Destination: &number,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the persisted records as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sourceCfg.Flags()...)

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Fetch, normalize and save a batch of records",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, useCaseOptions(app, &sourceCfg)...)

			count := number
			if count == 0 {
				count = uc.Beer.DefaultCount()
			}

			report, err := uc.Beer.Ingest(ctx, count)
			if err != nil {
				return goerr.Wrap(err, "ingestion failed")
			}

			w := c.Root().Writer
			if asJSON {
				return writeJSON(w, report.Persisted())
			}
			writeReport(w, report)
			return nil
		},
	}
}
