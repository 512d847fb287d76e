package model

import (
	"github.com/google/uuid"
)

// IngestBatchID identifies one ingestion run
type IngestBatchID string

// NewIngestBatchID generates a new batch ID
func NewIngestBatchID() IngestBatchID {
	return IngestBatchID(uuid.New().String())
}

// String returns the string representation of IngestBatchID
func (id IngestBatchID) String() string {
	return string(id)
}

// PersistStatus is the outcome of persisting one normalized record
type PersistStatus string

const (
	PersistStatusPersisted PersistStatus = "persisted"
	PersistStatusDuplicate PersistStatus = "duplicate"
	PersistStatusFailed    PersistStatus = "failed"
)

// PersistOutcome is the per-record result of an ingestion batch
type PersistOutcome struct {
	Beer   *Beer
	Status PersistStatus
	Err    error
}

// IngestReport lists what happened to every record of one batch, in fetch
// order
type IngestReport struct {
	BatchID  IngestBatchID
	Outcomes []PersistOutcome
}

// Persisted returns the records that were stored
func (r *IngestReport) Persisted() []*Beer {
	beers := make([]*Beer, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == PersistStatusPersisted {
			beers = append(beers, o.Beer)
		}
	}
	return beers
}

// Duplicates returns the outcomes rejected because the id already existed
func (r *IngestReport) Duplicates() []PersistOutcome {
	return r.filter(PersistStatusDuplicate)
}

// Failures returns the outcomes that failed for any other reason
func (r *IngestReport) Failures() []PersistOutcome {
	return r.filter(PersistStatusFailed)
}

func (r *IngestReport) filter(status PersistStatus) []PersistOutcome {
	var outcomes []PersistOutcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			outcomes = append(outcomes, o)
		}
	}
	return outcomes
}
