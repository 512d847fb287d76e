package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ParseIBU parses the leading whitespace-delimited token of raw, e.g. "42 IBU".
// The sign is not checked.
func ParseIBU(raw string) (int, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, goerr.Wrap(ErrFormat, "empty IBU value", goerr.V(RawValueKey, raw))
	}

	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, goerr.Wrap(ErrFormat, "IBU value is not an integer",
			goerr.V(RawValueKey, raw),
			goerr.V("cause", err.Error()))
	}
	return v, nil
}

// ParseAlcohol parses the number preceding the first '%' of raw, e.g. "5.2%",
// and rounds it to one fractional digit.
func ParseAlcohol(raw string) (float64, error) {
	idx := strings.Index(raw, "%")
	if idx < 0 {
		return 0, goerr.Wrap(ErrFormat, "alcohol value has no percent sign", goerr.V(RawValueKey, raw))
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw[:idx]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, goerr.Wrap(ErrFormat, "alcohol value is not a number", goerr.V(RawValueKey, raw))
	}
	return RoundAlcohol(v), nil
}

// RoundAlcohol rounds v to one fractional digit
func RoundAlcohol(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatAlcohol renders an alcohol value in its canonical one-digit form
func FormatAlcohol(v float64) string {
	return strconv.FormatFloat(RoundAlcohol(v), 'f', 1, 64)
}
