package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// BeerField names a numeric, threshold-queryable field of a beer record
type BeerField string

const (
	BeerFieldAlcohol BeerField = "alcohol"
	BeerFieldIBU     BeerField = "ibu"
)

// Validate checks if the BeerField can be used in a threshold query
func (f BeerField) Validate() error {
	switch f {
	case BeerFieldAlcohol, BeerFieldIBU:
		return nil
	default:
		return goerr.New("field is not threshold-queryable", goerr.V("field", f))
	}
}

// String returns the string representation of BeerField
func (f BeerField) String() string {
	return string(f)
}
