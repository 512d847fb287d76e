package interfaces

import (
	"context"

	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
)

// BeerRepository persists beer records keyed by their natural id.
// Every operation is atomic for a single record.
type BeerRepository interface {
	// Create stores a new beer. It returns model.ErrDuplicateKey when a beer
	// with the same id already exists.
	Create(ctx context.Context, beer *model.Beer) (*model.Beer, error)

	// Get retrieves a beer by id
	Get(ctx context.Context, id int64) (*model.Beer, error)

	// List returns beers matching filter ordered by id. An empty filter
	// returns every beer.
	List(ctx context.Context, filter model.BeerFilter) ([]*model.Beer, error)

	// ListWhere returns beers whose numeric field satisfies cmp against value,
	// ordered by id
	ListWhere(ctx context.Context, field types.BeerField, cmp types.Comparator, value float64) ([]*model.Beer, error)

	// Update applies patch to the beer with id and returns the updated record
	Update(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error)

	// Delete removes the beer with id and returns the removed record
	Delete(ctx context.Context, id int64) (*model.Beer, error)
}
