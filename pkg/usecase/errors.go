package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrSourceNotConfigured = errors.New("generator source is not configured")
)

// Context keys for error values
const (
	CountKey   = "count"
	BatchIDKey = "batch_id"
)
