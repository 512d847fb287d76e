package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/taproom/pkg/domain/model"
)

func ptr[T any](v T) *T {
	return &v
}

func validDraft() *model.BeerDraft {
	return &model.BeerDraft{
		ID:      ptr(int64(1)),
		Brand:   "Kirin",
		Name:    "Ichiban",
		Style:   "Lager",
		Hop:     "Saaz",
		Yeast:   "W-34/70",
		Malts:   "Pilsner",
		IBU:     ptr(0),
		Alcohol: ptr(0.0),
		Blg:     "11°Blg",
	}
}

func TestBeerDraftValidate(t *testing.T) {
	t.Run("zero measurements are valid", func(t *testing.T) {
		gt.NoError(t, validDraft().Validate())
	})

	t.Run("missing fields are reported by json name", func(t *testing.T) {
		draft := validDraft()
		draft.Brand = ""
		draft.IBU = nil

		err := draft.Validate()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
		gt.String(t, err.Error()).Contains("brand")
		gt.String(t, err.Error()).Contains("ibu")
	})

	t.Run("negative alcohol is rejected", func(t *testing.T) {
		draft := validDraft()
		draft.Alcohol = ptr(-1.0)
		gt.Bool(t, errors.Is(draft.Validate(), model.ErrValidation)).True()
	})

	t.Run("nil draft is rejected", func(t *testing.T) {
		var draft *model.BeerDraft
		gt.Bool(t, errors.Is(draft.Validate(), model.ErrValidation)).True()
	})
}

func TestBeerDraftToBeer(t *testing.T) {
	draft := validDraft()
	draft.Alcohol = ptr(4.96)

	beer := draft.ToBeer()
	gt.Value(t, beer.ID).Equal(int64(1))
	gt.Value(t, beer.Alcohol).Equal(5.0)
	gt.Value(t, beer.Brand).Equal("Kirin")
}

func TestBeerPatch(t *testing.T) {
	beer := &model.Beer{ID: 1, Brand: "Kirin", Name: "Ichiban", Style: "Lager", IBU: 20, Alcohol: 5.0}

	t.Run("apply leaves nil fields unchanged", func(t *testing.T) {
		patch := &model.BeerPatch{Style: ptr("Pilsner"), IBU: ptr(25)}
		gt.NoError(t, patch.Validate(1))

		updated := patch.Apply(beer)
		gt.Value(t, updated.Style).Equal("Pilsner")
		gt.Value(t, updated.IBU).Equal(25)
		gt.Value(t, updated.Brand).Equal("Kirin")
		gt.Value(t, beer.Style).Equal("Lager")
	})

	t.Run("repeating the same id is allowed", func(t *testing.T) {
		gt.NoError(t, (&model.BeerPatch{ID: ptr(int64(1))}).Validate(1))
	})

	t.Run("changing the id is rejected", func(t *testing.T) {
		err := (&model.BeerPatch{ID: ptr(int64(2))}).Validate(1)
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})

	t.Run("empty string is rejected", func(t *testing.T) {
		err := (&model.BeerPatch{Name: ptr("")}).Validate(1)
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})
}

func TestBeerFilterMatch(t *testing.T) {
	beer := &model.Beer{Style: "IPA", Brand: "Kirin"}

	gt.Bool(t, model.BeerFilter{}.Match(beer)).True()
	gt.Bool(t, model.BeerFilter{Style: "IPA"}.Match(beer)).True()
	gt.Bool(t, model.BeerFilter{Style: "IPA", Brand: "Asahi"}.Match(beer)).False()
	gt.Bool(t, model.BeerFilter{Style: "ipa"}.Match(beer)).False()
}

func TestIngestReport(t *testing.T) {
	report := &model.IngestReport{
		BatchID: model.NewIngestBatchID(),
		Outcomes: []model.PersistOutcome{
			{Beer: &model.Beer{ID: 1}, Status: model.PersistStatusPersisted},
			{Beer: &model.Beer{ID: 2}, Status: model.PersistStatusDuplicate, Err: model.ErrDuplicateKey},
			{Beer: &model.Beer{ID: 3}, Status: model.PersistStatusFailed, Err: errors.New("boom")},
			{Beer: &model.Beer{ID: 4}, Status: model.PersistStatusPersisted},
		},
	}

	gt.Array(t, report.Persisted()).Length(2)
	gt.Array(t, report.Duplicates()).Length(1)
	gt.Array(t, report.Failures()).Length(1)
	gt.Value(t, report.Persisted()[1].ID).Equal(int64(4))
	gt.Value(t, report.BatchID).NotEqual(model.NewIngestBatchID())
}
