package firestore

import (
	"context"
	"sort"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const beersCollection = "beers"

type beerDocument struct {
	ID      int64   `firestore:"id"`
	Brand   string  `firestore:"brand"`
	Name    string  `firestore:"name"`
	Style   string  `firestore:"style"`
	Hop     string  `firestore:"hop"`
	Yeast   string  `firestore:"yeast"`
	Malts   string  `firestore:"malts"`
	IBU     int     `firestore:"ibu"`
	Alcohol float64 `firestore:"alcohol"`
	Blg     string  `firestore:"blg"`
}

type beerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.BeerRepository = &beerRepository{}

func newBeerRepository(client *firestore.Client) *beerRepository {
	return &beerRepository{
		client: client,
	}
}

// BeerCollectionName returns the beer collection name for prefix
func BeerCollectionName(prefix string) string {
	if prefix != "" {
		return prefix + "_" + beersCollection
	}
	return beersCollection
}

func (r *beerRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(BeerCollectionName(r.collectionPrefix))
}

func (r *beerRepository) doc(id int64) *firestore.DocumentRef {
	return r.collection().Doc(strconv.FormatInt(id, 10))
}

func toDoc(beer *model.Beer) *beerDocument {
	return &beerDocument{
		ID:      beer.ID,
		Brand:   beer.Brand,
		Name:    beer.Name,
		Style:   beer.Style,
		Hop:     beer.Hop,
		Yeast:   beer.Yeast,
		Malts:   beer.Malts,
		IBU:     beer.IBU,
		Alcohol: beer.Alcohol,
		Blg:     beer.Blg,
	}
}

func fromDoc(doc *beerDocument) *model.Beer {
	return &model.Beer{
		ID:      doc.ID,
		Brand:   doc.Brand,
		Name:    doc.Name,
		Style:   doc.Style,
		Hop:     doc.Hop,
		Yeast:   doc.Yeast,
		Malts:   doc.Malts,
		IBU:     doc.IBU,
		Alcohol: doc.Alcohol,
		Blg:     doc.Blg,
	}
}

func (r *beerRepository) Create(ctx context.Context, beer *model.Beer) (*model.Beer, error) {
	doc := toDoc(beer)

	// Create fails with AlreadyExists instead of overwriting
	if _, err := r.doc(beer.ID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrDuplicateKey, "beer already exists", goerr.V(model.BeerIDKey, beer.ID))
		}
		return nil, goerr.Wrap(err, "failed to create beer", goerr.V(model.BeerIDKey, beer.ID))
	}

	return fromDoc(doc), nil
}

func (r *beerRepository) Get(ctx context.Context, id int64) (*model.Beer, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
	}

	var doc beerDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal beer", goerr.V(model.BeerIDKey, id))
	}

	return fromDoc(&doc), nil
}

func (r *beerRepository) List(ctx context.Context, filter model.BeerFilter) ([]*model.Beer, error) {
	q := r.collection().Query
	if filter.Style != "" {
		q = q.Where("style", "==", filter.Style)
	}
	if filter.Brand != "" {
		q = q.Where("brand", "==", filter.Brand)
	}

	return r.query(ctx, q.OrderBy("id", firestore.Asc))
}

func (r *beerRepository) ListWhere(ctx context.Context, field types.BeerField, cmp types.Comparator, value float64) ([]*model.Beer, error) {
	if err := field.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold field")
	}
	if err := cmp.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold comparator")
	}

	// A range filter requires the first ordering to be on the same field
	q := r.collection().
		Where(field.String(), cmp.String(), value).
		OrderBy(field.String(), firestore.Asc).
		OrderBy("id", firestore.Asc)

	beers, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	sortByID(beers)
	return beers, nil
}

func (r *beerRepository) Update(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error) {
	ref := r.doc(id)

	var updated *model.Beer
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
			}
			return goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
		}

		var doc beerDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal beer", goerr.V(model.BeerIDKey, id))
		}

		updated = patch.Apply(fromDoc(&doc))
		return tx.Set(ref, toDoc(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update beer", goerr.V(model.BeerIDKey, id))
	}

	return updated, nil
}

func (r *beerRepository) Delete(ctx context.Context, id int64) (*model.Beer, error) {
	ref := r.doc(id)

	var deleted *model.Beer
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "beer not found", goerr.V(model.BeerIDKey, id))
			}
			return goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
		}

		var doc beerDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal beer", goerr.V(model.BeerIDKey, id))
		}

		deleted = fromDoc(&doc)
		return tx.Delete(ref)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to delete beer", goerr.V(model.BeerIDKey, id))
	}

	return deleted, nil
}

func (r *beerRepository) query(ctx context.Context, q firestore.Query) ([]*model.Beer, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	beers := []*model.Beer{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate beers")
		}

		var doc beerDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal beer", goerr.V("docID", snap.Ref.ID))
		}

		beers = append(beers, fromDoc(&doc))
	}

	return beers, nil
}

func sortByID(beers []*model.Beer) {
	sort.Slice(beers, func(i, j int) bool {
		return beers[i].ID < beers[j].ID
	})
}
