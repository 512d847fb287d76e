package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Comparator is a threshold operator used by numeric store queries
type Comparator string

const (
	ComparatorLTE Comparator = "<="
	ComparatorGTE Comparator = ">="
)

// Validate checks if the Comparator is supported
func (c Comparator) Validate() error {
	switch c {
	case ComparatorLTE, ComparatorGTE:
		return nil
	default:
		return goerr.New("unsupported comparator", goerr.V("comparator", c))
	}
}

// Match reports whether actual satisfies the comparison against threshold
func (c Comparator) Match(actual, threshold float64) bool {
	switch c {
	case ComparatorLTE:
		return actual <= threshold
	case ComparatorGTE:
		return actual >= threshold
	default:
		return false
	}
}

// String returns the string representation of Comparator
func (c Comparator) String() string {
	return string(c)
}
