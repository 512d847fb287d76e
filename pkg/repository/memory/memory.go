package memory

import (
	"github.com/secmon-lab/taproom/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every record in process memory. Intended for development and
// tests; nothing survives a restart.
type Memory struct {
	beer *beerRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		beer: newBeerRepository(),
	}
}

func (m *Memory) Beer() interfaces.BeerRepository {
	return m.beer
}

func (m *Memory) Close() error {
	return nil
}
