package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/cli/config"
	"github.com/secmon-lab/taproom/pkg/repository/firestore"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := repoCfg.FirestoreFlags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview changes without applying",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", repoCfg.ProjectID(),
				"databaseID", repoCfg.DatabaseID(),
				"collectionPrefix", repoCfg.CollectionPrefix(),
				"dryRun", dryRun)

			client, err := newMigrationClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), repoCfg.CollectionPrefix(), dryRun)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			} else {
				logger.Info("Applying migrations")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations", goerr.V("dryRun", dryRun))
			}
			logger.Info("Migrations finished", "dryRun", dryRun)
			return nil
		},
	}
}

func newMigrationClient(ctx context.Context, projectID, databaseID, prefix string, dryRun bool) (*fireconf.Client, error) {
	databaseID = firestore.DatabaseID(databaseID)
	client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(prefix),
		fireconf.WithLogger(logging.From(ctx)),
		fireconf.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fireconf client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}
	return client, nil
}

func ascending(paths ...string) fireconf.Index {
	fields := make([]fireconf.IndexField, 0, len(paths))
	for _, p := range paths {
		fields = append(fields, fireconf.IndexField{Path: p, Order: fireconf.OrderAscending})
	}
	return fireconf.Index{Fields: fields}
}

// getIndexConfig returns the composite indexes behind the filtered beer
// queries. Every query is ordered by id.
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.BeerCollectionName(prefix),
				Indexes: []fireconf.Index{
					ascending("style", "id"),
					ascending("brand", "id"),
					ascending("style", "brand", "id"),
					ascending("alcohol", "id"),
					ascending("ibu", "id"),
				},
			},
		},
	}
}
