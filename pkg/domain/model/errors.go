package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by the store, the generator client and the use cases
var (
	ErrNetwork      = goerr.New("generator source unreachable")
	ErrFormat       = goerr.New("malformed measurement value")
	ErrDuplicateKey = goerr.New("beer with the same id already exists")
	ErrValidation   = goerr.New("invalid input")
	ErrNotFound     = goerr.New("not found")
)

// Context keys for error values
const (
	BeerIDKey    = "beer_id"
	FieldKey     = "field"
	RawValueKey  = "raw_value"
	DimensionKey = "dimension"
	FilterKey    = "filter"
)
