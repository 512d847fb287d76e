package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
)

func newBeer(id int64, style, brand string, alcohol float64) *model.Beer {
	return &model.Beer{
		ID:      id,
		Brand:   brand,
		Name:    "Test Beer",
		Style:   style,
		Hop:     "Cascade",
		Yeast:   "1056 - American Ale",
		Malts:   "Pilsner",
		IBU:     40,
		Alcohol: alcohol,
		Blg:     "12.3°Blg",
	}
}

// uniqueID keeps ids apart when a shared backend such as Firestore is used
func uniqueID() int64 {
	return time.Now().UnixNano()
}

func runBeerRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create then Get returns the stored beer", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		beer := newBeer(uniqueID(), "IPA", "Sapporo", 5.2)
		created, err := repo.Beer().Create(ctx, beer)
		gt.NoError(t, err).Required()
		gt.Value(t, created).Equal(beer)

		got, err := repo.Beer().Get(ctx, beer.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(beer)
	})

	t.Run("Create rejects a duplicate id and keeps the original", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := uniqueID()
		_, err := repo.Beer().Create(ctx, newBeer(id, "IPA", "Sapporo", 5.2))
		gt.NoError(t, err).Required()

		_, err = repo.Beer().Create(ctx, newBeer(id, "Stout", "Guinness", 4.2))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrDuplicateKey)).True()

		got, err := repo.Beer().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Style).Equal("IPA")
		gt.Value(t, got.Brand).Equal("Sapporo")
	})

	t.Run("Get returns ErrNotFound for a missing id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Beer().Get(context.Background(), uniqueID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Returned beers are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		beer := newBeer(uniqueID(), "IPA", "Sapporo", 5.2)
		created, err := repo.Beer().Create(ctx, beer)
		gt.NoError(t, err).Required()
		created.Style = "mutated"
		beer.Style = "mutated"

		got, err := repo.Beer().Get(ctx, beer.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Style).Equal("IPA")
	})

	t.Run("List filters by style and brand", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		style := "Style-" + time.Now().Format("150405.000000000")
		base := uniqueID()
		for i, brand := range []string{"Kirin", "Asahi", "Kirin"} {
			_, err := repo.Beer().Create(ctx, newBeer(base+int64(i), style, brand, 5.0))
			gt.NoError(t, err).Required()
		}
		_, err := repo.Beer().Create(ctx, newBeer(base+10, style+"-other", "Kirin", 5.0))
		gt.NoError(t, err).Required()

		byStyle, err := repo.Beer().List(ctx, model.BeerFilter{Style: style})
		gt.NoError(t, err).Required()
		gt.Array(t, byStyle).Length(3)
		gt.Value(t, byStyle[0].ID).Equal(base)
		gt.Value(t, byStyle[2].ID).Equal(base + 2)

		both, err := repo.Beer().List(ctx, model.BeerFilter{Style: style, Brand: "Kirin"})
		gt.NoError(t, err).Required()
		gt.Array(t, both).Length(2)

		none, err := repo.Beer().List(ctx, model.BeerFilter{Style: style, Brand: "Nope"})
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("List with empty filter returns every beer ordered by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := uniqueID()
		for _, id := range []int64{base + 2, base, base + 1} {
			_, err := repo.Beer().Create(ctx, newBeer(id, "Lager", "Asahi", 5.0))
			gt.NoError(t, err).Required()
		}

		all, err := repo.Beer().List(ctx, model.BeerFilter{})
		gt.NoError(t, err).Required()
		gt.Bool(t, len(all) >= 3).True()
		for i := 1; i < len(all); i++ {
			gt.Bool(t, all[i-1].ID < all[i].ID).True()
		}
	})

	t.Run("ListWhere compares alcohol numerically and inclusively", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		brand := "Brand-" + time.Now().Format("150405.000000000")
		base := uniqueID()
		for i, abv := range []float64{4.5, 5.0, 10.0} {
			_, err := repo.Beer().Create(ctx, newBeer(base+int64(i), "Lager", brand, abv))
			gt.NoError(t, err).Required()
		}

		upper, err := repo.Beer().ListWhere(ctx, types.BeerFieldAlcohol, types.ComparatorLTE, 5.0)
		gt.NoError(t, err).Required()
		upper = onlyBrand(upper, brand)
		gt.Array(t, upper).Length(2)
		gt.Value(t, upper[0].Alcohol).Equal(4.5)
		gt.Value(t, upper[1].Alcohol).Equal(5.0)

		lower, err := repo.Beer().ListWhere(ctx, types.BeerFieldAlcohol, types.ComparatorGTE, 5.0)
		gt.NoError(t, err).Required()
		lower = onlyBrand(lower, brand)
		gt.Array(t, lower).Length(2)
		// 10.0 must sort above 5.0, which a text comparison would get wrong
		gt.Value(t, lower[1].Alcohol).Equal(10.0)
	})

	t.Run("ListWhere rejects unknown field and comparator", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Beer().ListWhere(ctx, types.BeerField("name; DROP TABLE beers"), types.ComparatorLTE, 1)
		gt.Error(t, err)

		_, err = repo.Beer().ListWhere(ctx, types.BeerFieldIBU, types.Comparator("!="), 1)
		gt.Error(t, err)
	})

	t.Run("Update applies a partial patch", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		beer := newBeer(uniqueID(), "IPA", "Sapporo", 5.2)
		_, err := repo.Beer().Create(ctx, beer)
		gt.NoError(t, err).Required()

		style := "Porter"
		alcohol := 6.27
		updated, err := repo.Beer().Update(ctx, beer.ID, &model.BeerPatch{Style: &style, Alcohol: &alcohol})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Style).Equal("Porter")
		gt.Value(t, updated.Alcohol).Equal(6.3)
		gt.Value(t, updated.Brand).Equal("Sapporo")

		got, err := repo.Beer().Get(ctx, beer.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(updated)
	})

	t.Run("Update returns ErrNotFound for a missing id", func(t *testing.T) {
		repo := newRepo(t)

		style := "Porter"
		_, err := repo.Beer().Update(context.Background(), uniqueID(), &model.BeerPatch{Style: &style})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Delete removes the beer and returns it", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		beer := newBeer(uniqueID(), "IPA", "Sapporo", 5.2)
		_, err := repo.Beer().Create(ctx, beer)
		gt.NoError(t, err).Required()

		deleted, err := repo.Beer().Delete(ctx, beer.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, deleted).Equal(beer)

		_, err = repo.Beer().Get(ctx, beer.ID)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()

		_, err = repo.Beer().Delete(ctx, beer.ID)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})
}

func onlyBrand(beers []*model.Beer, brand string) []*model.Beer {
	var matched []*model.Beer
	for _, b := range beers {
		if b.Brand == brand {
			matched = append(matched, b)
		}
	}
	return matched
}

func TestMemoryBeerRepository(t *testing.T) {
	runBeerRepositoryTest(t, newMemoryRepository)
}

func TestSQLiteBeerRepository(t *testing.T) {
	runBeerRepositoryTest(t, newSQLiteRepository)
}

func TestFirestoreBeerRepository(t *testing.T) {
	runBeerRepositoryTest(t, newFirestoreRepository)
}
