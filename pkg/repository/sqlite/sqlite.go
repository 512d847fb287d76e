package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS beers (
    id      INTEGER PRIMARY KEY,
    brand   TEXT NOT NULL,
    name    TEXT NOT NULL,
    style   TEXT NOT NULL,
    hop     TEXT NOT NULL,
    yeast   TEXT NOT NULL,
    malts   TEXT NOT NULL,
    ibu     INTEGER NOT NULL,
    alcohol REAL NOT NULL,
    blg     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_beers_style ON beers(style);
CREATE INDEX IF NOT EXISTS idx_beers_brand ON beers(brand);
CREATE INDEX IF NOT EXISTS idx_beers_alcohol ON beers(alcohol);
`

// SQLite stores beers in a single table of a local database file
type SQLite struct {
	db   *sql.DB
	beer *beerRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens (and creates if needed) the database at path
func New(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "taproom.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	// A single connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create schema", goerr.V("path", path))
	}

	return &SQLite{
		db:   db,
		beer: newBeerRepository(db),
	}, nil
}

func (s *SQLite) Beer() interfaces.BeerRepository {
	return s.beer
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
