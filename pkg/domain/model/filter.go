package model

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/types"
)

// FilterMemory holds the last explicit filter value a client used, one slot
// per types.MemorySlot. A missing key means nothing has been remembered yet.
type FilterMemory map[types.MemorySlot]string

// Get returns the remembered value for slot
func (m FilterMemory) Get(slot types.MemorySlot) (string, bool) {
	v, ok := m[slot]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clone returns an independent copy. A nil memory clones to an empty one.
func (m FilterMemory) Clone() FilterMemory {
	if m == nil {
		return FilterMemory{}
	}
	return maps.Clone(m)
}

// FilterSource tells where the effective filter came from
type FilterSource string

const (
	FilterSourceExplicit   FilterSource = "explicit"
	FilterSourceRemembered FilterSource = "remembered"
	FilterSourceNone       FilterSource = "none"
)

// Filter is the effective filter for one dimension after resolution
type Filter struct {
	Dimension types.Dimension
	Source    FilterSource
	// Value is the string criterion for style and brand, and the normalized
	// numeric text for alcohol thresholds.
	Value string
	// Threshold is the parsed Value of alcohol dimensions.
	Threshold float64
}

// Unrestricted reports whether the filter matches every record
func (f Filter) Unrestricted() bool {
	return f.Source == FilterSourceNone
}

// BeerFilter returns the exact-match store filter of style and brand
// dimensions
func (f Filter) BeerFilter() BeerFilter {
	if f.Unrestricted() {
		return BeerFilter{}
	}
	switch f.Dimension {
	case types.DimensionStyle:
		return BeerFilter{Style: f.Value}
	case types.DimensionBrand:
		return BeerFilter{Brand: f.Value}
	default:
		return BeerFilter{}
	}
}

// Describe renders the filter for not-found messages
func (f Filter) Describe() string {
	if f.Unrestricted() {
		return "no beers found"
	}
	switch f.Dimension {
	case types.DimensionStyle:
		return fmt.Sprintf("no beers found within style %q", f.Value)
	case types.DimensionBrand:
		return fmt.Sprintf("no beers found of brand %q", f.Value)
	case types.DimensionAlcoholUpper:
		return fmt.Sprintf("no beers found with alcohol lower than or equal to %s", f.Value)
	case types.DimensionAlcoholLower:
		return fmt.Sprintf("no beers found with alcohol higher than or equal to %s", f.Value)
	default:
		return "no beers found"
	}
}

// ResolveFilter merges an explicit request value with the client's
// remembered value for dim. An explicit value wins and overwrites the
// memory slot; otherwise the remembered value applies; otherwise the
// dimension is unrestricted. Style and brand values are matched verbatim.
// A remembered alcohol limit that is not a number is dropped from the
// memory and the dimension becomes unrestricted. mem is not modified; the
// returned memory is a copy carrying any update.
func ResolveFilter(dim types.Dimension, explicit string, mem FilterMemory) (Filter, FilterMemory, error) {
	if err := dim.Validate(); err != nil {
		return Filter{}, mem, goerr.Wrap(ErrValidation, err.Error(), goerr.V(DimensionKey, dim))
	}

	updated := mem.Clone()
	slot := dim.Slot()

	filter := Filter{Dimension: dim, Source: FilterSourceNone}
	switch {
	case explicit != "":
		filter.Source = FilterSourceExplicit
		filter.Value = explicit
	default:
		if remembered, ok := mem.Get(slot); ok {
			filter.Source = FilterSourceRemembered
			filter.Value = remembered
		}
	}

	if filter.Unrestricted() {
		return filter, updated, nil
	}

	if dim.IsThreshold() {
		threshold, err := parseThreshold(filter.Value)
		if err != nil && filter.Source == FilterSourceRemembered {
			delete(updated, slot)
			return Filter{Dimension: dim, Source: FilterSourceNone}, updated, nil
		}
		if err != nil {
			return Filter{}, mem.Clone(), goerr.Wrap(err, "invalid alcohol limit",
				goerr.V(DimensionKey, dim),
				goerr.V(FilterKey, filter.Value),
				goerr.V("source", filter.Source))
		}
		filter.Threshold = threshold
		filter.Value = strconv.FormatFloat(threshold, 'f', -1, 64)
	}

	if filter.Source == FilterSourceExplicit {
		updated[slot] = filter.Value
	}
	return filter, updated, nil
}

func parseThreshold(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"), 64)
	if err != nil {
		return 0, goerr.Wrap(ErrValidation, fmt.Sprintf("alcohol limit %q is not a number", raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, goerr.Wrap(ErrValidation, fmt.Sprintf("alcohol limit %q is not a finite number", raw))
	}
	return v, nil
}
