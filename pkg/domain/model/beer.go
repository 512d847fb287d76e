package model

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

// Beer is a persisted beer record. ID is the natural key and never changes
// after creation.
type Beer struct {
	ID      int64   `json:"id"`
	Brand   string  `json:"brand"`
	Name    string  `json:"name"`
	Style   string  `json:"style"`
	Hop     string  `json:"hop"`
	Yeast   string  `json:"yeast"`
	Malts   string  `json:"malts"`
	IBU     int     `json:"ibu"`
	Alcohol float64 `json:"alcohol"`
	Blg     string  `json:"blg"`
}

// Copy returns a shallow copy of the beer
func (b *Beer) Copy() *Beer {
	copied := *b
	return &copied
}

// RawBeer is a record as served by the generator feed. IBU and Alcohol are
// still free-form strings such as "42 IBU" and "5.2%".
type RawBeer struct {
	ID      int64  `json:"id"`
	Brand   string `json:"brand"`
	Name    string `json:"name"`
	Style   string `json:"style"`
	Hop     string `json:"hop"`
	Yeast   string `json:"yeast"`
	Malts   string `json:"malts"`
	IBU     string `json:"ibu"`
	Alcohol string `json:"alcohol"`
	Blg     string `json:"blg"`
}

// Normalize converts the raw measurement strings into typed values
func (r *RawBeer) Normalize() (*Beer, error) {
	ibu, err := ParseIBU(r.IBU)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize beer", goerr.V(BeerIDKey, r.ID), goerr.V(FieldKey, "ibu"))
	}

	alcohol, err := ParseAlcohol(r.Alcohol)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize beer", goerr.V(BeerIDKey, r.ID), goerr.V(FieldKey, "alcohol"))
	}

	return &Beer{
		ID:      r.ID,
		Brand:   r.Brand,
		Name:    r.Name,
		Style:   r.Style,
		Hop:     r.Hop,
		Yeast:   r.Yeast,
		Malts:   r.Malts,
		IBU:     ibu,
		Alcohol: alcohol,
		Blg:     r.Blg,
	}, nil
}

// BeerDraft is the input of a manual create. Pointer fields keep absent
// values apart from zero values.
type BeerDraft struct {
	ID      *int64   `json:"id" validate:"required"`
	Brand   string   `json:"brand" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Style   string   `json:"style" validate:"required"`
	Hop     string   `json:"hop" validate:"required"`
	Yeast   string   `json:"yeast" validate:"required"`
	Malts   string   `json:"malts" validate:"required"`
	IBU     *int     `json:"ibu" validate:"required,gte=0"`
	Alcohol *float64 `json:"alcohol" validate:"required,gte=0"`
	Blg     string   `json:"blg" validate:"required"`
}

// Validate checks that every required field is present
func (d *BeerDraft) Validate() error {
	if d == nil {
		return goerr.Wrap(ErrValidation, "beer body is required")
	}
	if err := beerValidator().Struct(d); err != nil {
		return validationError(err)
	}
	return nil
}

// ToBeer builds the record to persist. Validate must succeed first.
func (d *BeerDraft) ToBeer() *Beer {
	return &Beer{
		ID:      *d.ID,
		Brand:   d.Brand,
		Name:    d.Name,
		Style:   d.Style,
		Hop:     d.Hop,
		Yeast:   d.Yeast,
		Malts:   d.Malts,
		IBU:     *d.IBU,
		Alcohol: RoundAlcohol(*d.Alcohol),
		Blg:     d.Blg,
	}
}

// BeerPatch is a partial update. Nil fields are left unchanged.
type BeerPatch struct {
	ID      *int64   `json:"id,omitempty"`
	Brand   *string  `json:"brand,omitempty" validate:"omitnil,min=1"`
	Name    *string  `json:"name,omitempty" validate:"omitnil,min=1"`
	Style   *string  `json:"style,omitempty" validate:"omitnil,min=1"`
	Hop     *string  `json:"hop,omitempty" validate:"omitnil,min=1"`
	Yeast   *string  `json:"yeast,omitempty" validate:"omitnil,min=1"`
	Malts   *string  `json:"malts,omitempty" validate:"omitnil,min=1"`
	IBU     *int     `json:"ibu,omitempty" validate:"omitnil,gte=0"`
	Alcohol *float64 `json:"alcohol,omitempty" validate:"omitnil,gte=0"`
	Blg     *string  `json:"blg,omitempty" validate:"omitnil,min=1"`
}

// Validate checks the patch against the target id. The id of a beer is
// immutable, so a patch may only repeat it.
func (p *BeerPatch) Validate(id int64) error {
	if p == nil {
		return goerr.Wrap(ErrValidation, "patch body is required")
	}
	if p.ID != nil && *p.ID != id {
		return goerr.Wrap(ErrValidation, "id is immutable",
			goerr.V(BeerIDKey, id),
			goerr.V("patch_id", *p.ID))
	}
	if err := beerValidator().Struct(p); err != nil {
		return validationError(err)
	}
	return nil
}

// Apply returns a copy of beer with the patch applied
func (p *BeerPatch) Apply(beer *Beer) *Beer {
	updated := beer.Copy()
	if p.Brand != nil {
		updated.Brand = *p.Brand
	}
	if p.Name != nil {
		updated.Name = *p.Name
	}
	if p.Style != nil {
		updated.Style = *p.Style
	}
	if p.Hop != nil {
		updated.Hop = *p.Hop
	}
	if p.Yeast != nil {
		updated.Yeast = *p.Yeast
	}
	if p.Malts != nil {
		updated.Malts = *p.Malts
	}
	if p.IBU != nil {
		updated.IBU = *p.IBU
	}
	if p.Alcohol != nil {
		updated.Alcohol = RoundAlcohol(*p.Alcohol)
	}
	if p.Blg != nil {
		updated.Blg = *p.Blg
	}
	return updated
}

// BeerFilter selects beers by exact match. Empty fields do not restrict.
type BeerFilter struct {
	Style string
	Brand string
}

// Match reports whether beer satisfies the filter
func (f BeerFilter) Match(beer *Beer) bool {
	if f.Style != "" && beer.Style != f.Style {
		return false
	}
	if f.Brand != "" && beer.Brand != f.Brand {
		return false
	}
	return true
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func beerValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return goerr.Wrap(ErrValidation, err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return goerr.Wrap(ErrValidation, "invalid fields: "+strings.Join(fields, ", "),
		goerr.V("fields", fields))
}
