package dataset

import (
	"fmt"
	"slices"

	"github.com/chrissnell/airquality/internal/types"
)

// Store holds the generated cities and readings. It is built once and never
// mutated, so it is safe for concurrent readers.
type Store struct {
	year     int
	cities   []types.City
	byID     map[string]int
	readings []types.Reading
}

// NewStore runs the generator and validates every reading it produced.
func NewStore(g *Generator) (*Store, error) {
	readings, err := g.Generate()
	if err != nil {
		return nil, fmt.Errorf("error generating readings: %w", err)
	}

	for _, r := range readings {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	s := &Store{
		year:     g.Year,
		cities:   slices.Clone(g.Cities),
		byID:     make(map[string]int, len(g.Cities)),
		readings: readings,
	}
	for i, c := range s.cities {
		s.byID[c.ID] = i
	}

	return s, nil
}

// Year is the calendar year covered by the readings.
func (s *Store) Year() int { return s.year }

// Cities returns a copy of the city list in generation order.
func (s *Store) Cities() []types.City {
	return slices.Clone(s.cities)
}

// Readings returns a copy of every reading, ordered by city then date.
func (s *Store) Readings() []types.Reading {
	return slices.Clone(s.readings)
}

// City looks a city up by ID.
func (s *Store) City(id string) (types.City, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.City{}, false
	}
	return s.cities[i], true
}

// Len is the number of readings.
func (s *Store) Len() int { return len(s.readings) }
