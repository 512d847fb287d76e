package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Dimension is an independently filterable axis of the beer query API
type Dimension string

const (
	DimensionStyle        Dimension = "style"
	DimensionBrand        Dimension = "brand"
	DimensionAlcoholUpper Dimension = "alcohol-upper"
	DimensionAlcoholLower Dimension = "alcohol-lower"
)

// MemorySlot is the remembered-filter slot a dimension reads and writes.
// Both alcohol dimensions share one slot.
type MemorySlot string

const (
	MemorySlotStyle        MemorySlot = "style"
	MemorySlotBrand        MemorySlot = "brand"
	MemorySlotAlcoholLimit MemorySlot = "alcoholLimit"
)

// Validate checks if the Dimension is known
func (d Dimension) Validate() error {
	switch d {
	case DimensionStyle, DimensionBrand, DimensionAlcoholUpper, DimensionAlcoholLower:
		return nil
	default:
		return goerr.New("unknown filter dimension", goerr.V("dimension", d))
	}
}

// Slot returns the memory slot backing the dimension
func (d Dimension) Slot() MemorySlot {
	switch d {
	case DimensionStyle:
		return MemorySlotStyle
	case DimensionBrand:
		return MemorySlotBrand
	default:
		return MemorySlotAlcoholLimit
	}
}

// IsThreshold reports whether the dimension is a numeric alcohol threshold
func (d Dimension) IsThreshold() bool {
	return d == DimensionAlcoholUpper || d == DimensionAlcoholLower
}

// Comparator returns the threshold comparator for alcohol dimensions
func (d Dimension) Comparator() Comparator {
	if d == DimensionAlcoholLower {
		return ComparatorGTE
	}
	return ComparatorLTE
}

// String returns the string representation of Dimension
func (d Dimension) String() string {
	return string(d)
}
