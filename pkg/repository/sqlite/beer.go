package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
)

const beerColumns = `id, brand, name, style, hop, yeast, malts, ibu, alcohol, blg`

type beerRepository struct {
	db *sql.DB
}

var _ interfaces.BeerRepository = &beerRepository{}

func newBeerRepository(db *sql.DB) *beerRepository {
	return &beerRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBeer(row scanner) (*model.Beer, error) {
	var b model.Beer
	if err := row.Scan(&b.ID, &b.Brand, &b.Name, &b.Style, &b.Hop, &b.Yeast, &b.Malts, &b.IBU, &b.Alcohol, &b.Blg); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *beerRepository) Create(ctx context.Context, beer *model.Beer) (*model.Beer, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO beers (`+beerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		beer.ID, beer.Brand, beer.Name, beer.Style, beer.Hop, beer.Yeast, beer.Malts, beer.IBU, beer.Alcohol, beer.Blg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert beer", goerr.V(model.BeerIDKey, beer.ID))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get affected rows", goerr.V(model.BeerIDKey, beer.ID))
	}
	if n == 0 {
		return nil, goerr.Wrap(model.ErrDuplicateKey, "beer already exists", goerr.V(model.BeerIDKey, beer.ID))
	}

	return beer.Copy(), nil
}

func (r *beerRepository) Get(ctx context.Context, id int64) (*model.Beer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+beerColumns+` FROM beers WHERE id = ?`, id)
	beer, err := scanBeer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
	}
	return beer, nil
}

func (r *beerRepository) List(ctx context.Context, filter model.BeerFilter) ([]*model.Beer, error) {
	query := `SELECT ` + beerColumns + ` FROM beers WHERE 1 = 1`
	var args []any
	if filter.Style != "" {
		query += ` AND style = ?`
		args = append(args, filter.Style)
	}
	if filter.Brand != "" {
		query += ` AND brand = ?`
		args = append(args, filter.Brand)
	}
	query += ` ORDER BY id`

	return r.query(ctx, query, args...)
}

func (r *beerRepository) ListWhere(ctx context.Context, field types.BeerField, cmp types.Comparator, value float64) ([]*model.Beer, error) {
	// field and cmp are interpolated, so both must be one of the known constants
	if err := field.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold field")
	}
	if err := cmp.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold comparator")
	}

	query := `SELECT ` + beerColumns + ` FROM beers WHERE ` + field.String() + ` ` + cmp.String() + ` ? ORDER BY id`
	return r.query(ctx, query, value)
}

func (r *beerRepository) Update(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanBeer(tx.QueryRowContext(ctx, `SELECT `+beerColumns+` FROM beers WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
	}

	updated := patch.Apply(existing)
	if _, err := tx.ExecContext(ctx,
		`UPDATE beers SET brand = ?, name = ?, style = ?, hop = ?, yeast = ?, malts = ?, ibu = ?, alcohol = ?, blg = ? WHERE id = ?`,
		updated.Brand, updated.Name, updated.Style, updated.Hop, updated.Yeast, updated.Malts, updated.IBU, updated.Alcohol, updated.Blg, id); err != nil {
		return nil, goerr.Wrap(err, "failed to update beer", goerr.V(model.BeerIDKey, id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit beer update", goerr.V(model.BeerIDKey, id))
	}
	return updated, nil
}

func (r *beerRepository) Delete(ctx context.Context, id int64) (*model.Beer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanBeer(tx.QueryRowContext(ctx, `SELECT `+beerColumns+` FROM beers WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM beers WHERE id = ?`, id); err != nil {
		return nil, goerr.Wrap(err, "failed to delete beer", goerr.V(model.BeerIDKey, id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit beer deletion", goerr.V(model.BeerIDKey, id))
	}
	return existing, nil
}

func (r *beerRepository) query(ctx context.Context, query string, args ...any) ([]*model.Beer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query beers")
	}
	defer func() { _ = rows.Close() }()

	beers := []*model.Beer{}
	for rows.Next() {
		beer, err := scanBeer(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan beer")
		}
		beers = append(beers, beer)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate beers")
	}

	return beers, nil
}
