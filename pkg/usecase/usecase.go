package usecase

import (
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/service/generator"
	"github.com/secmon-lab/taproom/pkg/service/metrics"
)

const (
	// DefaultIngestCount is the batch size used when a caller gives none
	DefaultIngestCount = 3
	// DefaultMaxIngestCount caps the batch size of a single ingestion
	DefaultMaxIngestCount = 100
)

type UseCases struct {
	repo         interfaces.Repository
	source       generator.Service
	metrics      *metrics.Collector
	defaultCount int
	maxCount     int

	Beer *BeerUseCase
}

type Option func(*UseCases)

// WithSource sets the generator feed used by ingestion
func WithSource(source generator.Service) Option {
	return func(uc *UseCases) {
		uc.source = source
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(uc *UseCases) {
		uc.metrics = collector
	}
}

// WithDefaultIngestCount sets the batch size used when none is requested
func WithDefaultIngestCount(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.defaultCount = n
		}
	}
}

// WithMaxIngestCount sets the largest accepted batch size
func WithMaxIngestCount(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.maxCount = n
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		defaultCount: DefaultIngestCount,
		maxCount:     DefaultMaxIngestCount,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.defaultCount > uc.maxCount {
		uc.defaultCount = uc.maxCount
	}

	uc.Beer = NewBeerUseCase(repo, uc.source, uc.metrics, uc.defaultCount, uc.maxCount)

	return uc
}
