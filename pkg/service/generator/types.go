package generator

import (
	"context"

	"github.com/secmon-lab/taproom/pkg/domain/model"
)

// DefaultURL is the public beer generator feed
const DefaultURL = "https://random-data-api.com/api/v2/beers"

// Service fetches raw beer records from the generator feed
type Service interface {
	// FetchOne retrieves a single record
	FetchOne(ctx context.Context) (*model.RawBeer, error)
	// FetchBatch retrieves count records one after another. Any failure
	// fails the whole batch.
	FetchBatch(ctx context.Context, count int) ([]*model.RawBeer, error)
}
