// Package mockup holds the sample listings shown when the HBnB API is unreachable.
package mockup

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"hbnb_web/internal/domain"
)

//go:embed places.json
var placesJSON []byte

type Set struct {
	places []domain.Place
	byID   map[string]int
}

// Load parses the embedded dataset.
func Load() (*Set, error) {
	var ps []domain.Place
	if err := json.Unmarshal(placesJSON, &ps); err != nil {
		return nil, fmt.Errorf("parse sample places: %w", err)
	}
	s := &Set{places: ps, byID: make(map[string]int, len(ps))}
	for i, p := range ps {
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate sample place id %q", p.ID)
		}
		s.byID[p.ID] = i
	}
	return s, nil
}

// MustLoad is Load for program start-up.
func MustLoad() *Set {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Places returns a copy; callers may filter or reorder it freely.
func (s *Set) Places() []domain.Place {
	out := make([]domain.Place, len(s.places))
	copy(out, s.places)
	return out
}

func (s *Set) Place(id string) (domain.Place, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Place{}, false
	}
	return s.places[i], true
}
