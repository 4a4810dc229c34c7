// Package species holds the species-registry input types: habitat and
// mobility tags, an optional trait block, and the Profile resolved from it
// once at load time.
package species

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownSpecies is returned for a species id not in the registry.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrDuplicateSpecies is returned when an id is registered twice.
	ErrDuplicateSpecies = errors.New("duplicate species")
)

// Species is one lineage as supplied by the registry.
type Species struct {
	ID           int      `yaml:"id"`
	Name         string   `yaml:"name"`
	Habitat      Habitat  `yaml:"habitat"`
	Mobility     Mobility `yaml:"mobility"`
	TrophicLevel int      `yaml:"trophic_level"` // 1 = producer
	Traits       Traits   `yaml:"traits"`

	Population float64 `yaml:"population"`
	DeathRate  float64 `yaml:"death_rate"` // fraction per turn
	Tiles      []int   `yaml:"tiles,omitempty"`

	profile  Profile
	resolved bool
}

// Resolve fixes the species' Profile from its traits.
func (s *Species) Resolve() {
	s.profile = Resolve(s.Traits, s.Habitat, s.Mobility)
	s.resolved = true
}

// Profile returns the resolved traits.
func (s *Species) Profile() Profile {
	if !s.resolved {
		return Resolve(s.Traits, s.Habitat, s.Mobility)
	}
	return s.profile
}

// IsProducer reports whether the species sits at the bottom of the food web.
func (s *Species) IsProducer() bool {
	return s.TrophicLevel <= 1
}

// LogValue implements slog.LogValuer.
func (s *Species) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("id", s.ID),
		slog.String("name", s.Name),
		slog.String("habitat", s.Habitat.String()),
		slog.String("mobility", s.Mobility.String()),
		slog.Int("trophic", s.TrophicLevel),
		slog.Float64("population", s.Population),
	)
}

// Registry is an ordered set of species keyed by id. Version increases on
// every change to the set so derived caches can be invalidated.
type Registry struct {
	byID    map[int]*Species
	version uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*Species)}
}

// Add resolves s and stores it.
func (r *Registry) Add(s Species) error {
	if _, ok := r.byID[s.ID]; ok {
		return fmt.Errorf("species %d: %w", s.ID, ErrDuplicateSpecies)
	}
	s.Resolve()
	r.byID[s.ID] = &s
	r.version++
	return nil
}

// Remove deletes a species.
func (r *Registry) Remove(id int) error {
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("species %d: %w", id, ErrUnknownSpecies)
	}
	delete(r.byID, id)
	r.version++
	return nil
}

// Get returns the species with the given id.
func (r *Registry) Get(id int) (*Species, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("species %d: %w", id, ErrUnknownSpecies)
	}
	return s, nil
}

// Len returns the number of species.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Version returns the change counter of the set.
func (r *Registry) Version() uint64 {
	return r.version
}

// All returns the species sorted by id.
func (r *Registry) All() []*Species {
	out := make([]*Species, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Decode reads a YAML list of species.
func Decode(rd io.Reader) ([]Species, error) {
	var list []Species
	if err := yaml.NewDecoder(rd).Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode species: %w", err)
	}
	return list, nil
}
