package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
	"github.com/secmon-lab/taproom/pkg/service/generator"
	"github.com/secmon-lab/taproom/pkg/service/metrics"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
)

type BeerUseCase struct {
	repo         interfaces.Repository
	source       generator.Service
	metrics      *metrics.Collector
	defaultCount int
	maxCount     int
}

func NewBeerUseCase(repo interfaces.Repository, source generator.Service, collector *metrics.Collector, defaultCount, maxCount int) *BeerUseCase {
	return &BeerUseCase{
		repo:         repo,
		source:       source,
		metrics:      collector,
		defaultCount: defaultCount,
		maxCount:     maxCount,
	}
}

// DefaultCount is the batch size applied when a caller does not give one
func (uc *BeerUseCase) DefaultCount() int {
	return uc.defaultCount
}

// MaxCount is the largest accepted batch size
func (uc *BeerUseCase) MaxCount() int {
	return uc.maxCount
}

// Ingest fetches count records, normalizes all of them and then persists
// each one independently. A fetch or normalization failure aborts the batch
// before anything is stored. Persist failures, including duplicate ids, are
// reported per record and do not stop the remaining records.
func (uc *BeerUseCase) Ingest(ctx context.Context, count int) (report *model.IngestReport, err error) {
	started := time.Now()
	defer func() {
		uc.metrics.ObserveIngest(err, time.Since(started))
	}()

	beers, err := uc.fetchNormalized(ctx, count)
	if err != nil {
		return nil, err
	}

	report = &model.IngestReport{
		BatchID:  model.NewIngestBatchID(),
		Outcomes: make([]model.PersistOutcome, 0, len(beers)),
	}
	logger := logging.From(ctx).With(slog.String(BatchIDKey, report.BatchID.String()))

	for _, beer := range beers {
		outcome := model.PersistOutcome{Beer: beer, Status: model.PersistStatusPersisted}

		created, createErr := uc.repo.Beer().Create(ctx, beer)
		switch {
		case createErr == nil:
			outcome.Beer = created
		case errors.Is(createErr, model.ErrDuplicateKey):
			outcome.Status = model.PersistStatusDuplicate
			outcome.Err = createErr
			logger.Warn("skipped beer with duplicate id", slog.Int64("id", beer.ID))
		default:
			outcome.Status = model.PersistStatusFailed
			outcome.Err = createErr
			logger.Error("failed to persist beer", slog.Int64("id", beer.ID), slog.Any("error", createErr))
		}

		uc.metrics.ObservePersist(outcome.Status)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	logger.Info("ingested beers",
		slog.Int(CountKey, count),
		slog.Int("persisted", len(report.Persisted())),
		slog.Int("duplicates", len(report.Duplicates())),
		slog.Int("failures", len(report.Failures())),
		slog.Duration("elapsed", time.Since(started)))

	return report, nil
}

// Preview fetches and normalizes count records without persisting them
func (uc *BeerUseCase) Preview(ctx context.Context, count int) ([]*model.Beer, error) {
	return uc.fetchNormalized(ctx, count)
}

func (uc *BeerUseCase) fetchNormalized(ctx context.Context, count int) ([]*model.Beer, error) {
	if count < 1 || count > uc.maxCount {
		return nil, goerr.Wrap(model.ErrValidation, "number of beers is out of range",
			goerr.V(CountKey, count),
			goerr.V("max", uc.maxCount))
	}
	if uc.source == nil {
		return nil, goerr.Wrap(ErrSourceNotConfigured, "cannot fetch beers")
	}

	raws, err := uc.source.FetchBatch(ctx, count)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch beers", goerr.V(CountKey, count))
	}
	uc.metrics.AddFetched(len(raws))

	beers := make([]*model.Beer, 0, len(raws))
	for _, raw := range raws {
		beer, err := raw.Normalize()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to normalize fetched beers", goerr.V(CountKey, count))
		}
		beers = append(beers, beer)
	}
	return beers, nil
}

// QueryByFilter resolves the effective filter of dim from the explicit
// value and the client's memory, then lists the matching beers. The
// returned memory carries any update and is valid even when the query ends
// with ErrNotFound. On a validation error the memory is returned unchanged.
func (uc *BeerUseCase) QueryByFilter(ctx context.Context, dim types.Dimension, explicit string, mem model.FilterMemory) ([]*model.Beer, model.FilterMemory, error) {
	filter, updated, err := model.ResolveFilter(dim, explicit, mem)
	if err != nil {
		return nil, updated, err
	}
	uc.metrics.ObserveFilter(filter)

	var beers []*model.Beer
	if dim.IsThreshold() && !filter.Unrestricted() {
		beers, err = uc.repo.Beer().ListWhere(ctx, types.BeerFieldAlcohol, dim.Comparator(), filter.Threshold)
	} else {
		beers, err = uc.repo.Beer().List(ctx, filter.BeerFilter())
	}
	if err != nil {
		return nil, updated, goerr.Wrap(err, "failed to query beers",
			goerr.V(model.DimensionKey, dim),
			goerr.V(model.FilterKey, filter.Value))
	}

	if len(beers) == 0 {
		return nil, updated, goerr.Wrap(model.ErrNotFound, filter.Describe(),
			goerr.V(model.DimensionKey, dim),
			goerr.V(model.FilterKey, filter.Value))
	}

	logging.From(ctx).Debug("queried beers",
		slog.String("dimension", dim.String()),
		slog.String("source", string(filter.Source)),
		slog.String("value", filter.Value),
		slog.Int("matched", len(beers)))

	return beers, updated, nil
}

func (uc *BeerUseCase) GetBeer(ctx context.Context, id int64) (*model.Beer, error) {
	beer, err := uc.repo.Beer().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get beer", goerr.V(model.BeerIDKey, id))
	}
	return beer, nil
}

// ListBeers returns every stored beer. An empty store yields an empty list.
func (uc *BeerUseCase) ListBeers(ctx context.Context) ([]*model.Beer, error) {
	beers, err := uc.repo.Beer().List(ctx, model.BeerFilter{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list beers")
	}
	return beers, nil
}

func (uc *BeerUseCase) CreateBeer(ctx context.Context, draft *model.BeerDraft) (*model.Beer, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Beer().Create(ctx, draft.ToBeer())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create beer", goerr.V(model.BeerIDKey, *draft.ID))
	}
	return created, nil
}

func (uc *BeerUseCase) UpdateBeer(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error) {
	if err := patch.Validate(id); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Beer().Update(ctx, id, patch)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update beer", goerr.V(model.BeerIDKey, id))
	}
	return updated, nil
}

func (uc *BeerUseCase) DeleteBeer(ctx context.Context, id int64) (*model.Beer, error) {
	deleted, err := uc.repo.Beer().Delete(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to delete beer", goerr.V(model.BeerIDKey, id))
	}
	return deleted, nil
}
