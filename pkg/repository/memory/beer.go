package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
)

type beerRepository struct {
	mu    sync.RWMutex
	beers map[int64]*model.Beer
}

var _ interfaces.BeerRepository = &beerRepository{}

func newBeerRepository() *beerRepository {
	return &beerRepository{
		beers: make(map[int64]*model.Beer),
	}
}

func (r *beerRepository) Create(ctx context.Context, beer *model.Beer) (*model.Beer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.beers[beer.ID]; exists {
		return nil, goerr.Wrap(model.ErrDuplicateKey, "beer already exists", goerr.V(model.BeerIDKey, beer.ID))
	}

	r.beers[beer.ID] = beer.Copy()
	return beer.Copy(), nil
}

func (r *beerRepository) Get(ctx context.Context, id int64) (*model.Beer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	beer, exists := r.beers[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
	}

	// Return a copy to prevent external modification
	return beer.Copy(), nil
}

func (r *beerRepository) List(ctx context.Context, filter model.BeerFilter) ([]*model.Beer, error) {
	return r.collect(filter.Match), nil
}

func (r *beerRepository) ListWhere(ctx context.Context, field types.BeerField, cmp types.Comparator, value float64) ([]*model.Beer, error) {
	if err := field.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold field")
	}
	if err := cmp.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold comparator")
	}

	return r.collect(func(beer *model.Beer) bool {
		switch field {
		case types.BeerFieldIBU:
			return cmp.Match(float64(beer.IBU), value)
		default:
			return cmp.Match(beer.Alcohol, value)
		}
	}), nil
}

func (r *beerRepository) Update(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.beers[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
	}

	updated := patch.Apply(existing)
	r.beers[id] = updated
	return updated.Copy(), nil
}

func (r *beerRepository) Delete(ctx context.Context, id int64) (*model.Beer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.beers[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
	}

	delete(r.beers, id)
	return existing, nil
}

func (r *beerRepository) collect(match func(*model.Beer) bool) []*model.Beer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	beers := make([]*model.Beer, 0, len(r.beers))
	for _, beer := range r.beers {
		if match(beer) {
			beers = append(beers, beer.Copy())
		}
	}

	sort.Slice(beers, func(i, j int) bool {
		return beers[i].ID < beers[j].ID
	})
	return beers
}
