package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/repository/firestore"
	"github.com/secmon-lab/taproom/pkg/repository/memory"
	"github.com/secmon-lab/taproom/pkg/repository/sqlite"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	sqlitePath       string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, sqlite or firestore)",
			Value:       BackendMemory,
			Category:    "Repository",
			Sources:     cli.EnvVars("TAPROOM_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file (sqlite backend)",
			Value:       "taproom.db",
			Category:    "Repository",
			Sources:     cli.EnvVars("TAPROOM_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		r.projectIDFlag(false),
		r.databaseIDFlag(),
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("TAPROOM_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// FirestoreFlags returns only the Firestore flags, with the project ID
// required
func (r *Repository) FirestoreFlags() []cli.Flag {
	return []cli.Flag{
		r.projectIDFlag(true),
		r.databaseIDFlag(),
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Sources:     cli.EnvVars("TAPROOM_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

func (r *Repository) projectIDFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:        "firestore-project-id",
		Usage:       "Firestore Project ID (required when using firestore backend)",
		Required:    required,
		Category:    "Repository",
		Sources:     cli.EnvVars("TAPROOM_FIRESTORE_PROJECT_ID"),
		Destination: &r.projectID,
	}
}

func (r *Repository) databaseIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "firestore-database-id",
		Usage:       "Firestore Database ID",
		Category:    "Repository",
		Sources:     cli.EnvVars("TAPROOM_FIRESTORE_DATABASE_ID"),
		Destination: &r.databaseID,
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionPrefix returns the Firestore collection prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			slog.String("project_id", r.projectID),
			slog.String("database_id", r.databaseID),
			slog.String("collection_prefix", r.collectionPrefix),
		)
		return repo, nil

	case BackendSQLite:
		repo, err := sqlite.New(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", slog.String("path", r.sqlitePath))
		return repo, nil

	case BackendMemory, "":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}
