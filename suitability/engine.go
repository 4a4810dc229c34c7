// Package suitability scores how well each species fits each tile. Feature
// vectors are derived once per side and broadcast-compared into an N×M
// matrix.
package suitability

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/habitat/parallel"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/world"
)

// ErrFieldLength is returned when a prey field does not cover every tile.
var ErrFieldLength = errors.New("field length does not match tile count")

// PreyFields maps a consumer species id to its prey density per tile.
type PreyFields map[int][]float64

// Engine computes score matrices.
type Engine struct {
	weights Weights
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with the given weights.
func NewEngine(w Weights, opts ...Option) *Engine {
	e := &Engine{weights: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Compute scores every species against every tile of w.
func (e *Engine) Compute(list []*species.Species, w *world.World, prey PreyFields) (*Matrix, error) {
	m := &Matrix{
		index: make(map[int]int, len(list)),
		ids:   make([]int, len(list)),
		tiles: len(w.Tiles),
	}
	for i, s := range list {
		if _, dup := m.index[s.ID]; dup {
			return nil, fmt.Errorf("species %d: %w", s.ID, species.ErrDuplicateSpecies)
		}
		m.index[s.ID] = i
		m.ids[i] = s.ID
	}
	for id, field := range prey {
		if _, ok := m.index[id]; !ok {
			return nil, fmt.Errorf("prey field for species %d: %w", id, species.ErrUnknownSpecies)
		}
		if len(field) != len(w.Tiles) {
			return nil, fmt.Errorf("prey field for species %d has %d values for %d tiles: %w",
				id, len(field), len(w.Tiles), ErrFieldLength)
		}
	}

	if len(list) == 0 || len(w.Tiles) == 0 {
		return m, nil
	}

	sf := SpeciesFeatures(list)
	tf := TileFeatures(w)
	m.scores = mat.NewDense(len(list), len(w.Tiles), nil)

	preyRows := make([][]float64, len(list))
	for i, s := range list {
		preyRows[i] = prey[s.ID]
	}

	raw := m.scores.RawMatrix()
	srows := sf.RawMatrix()
	trows := tf.RawMatrix()
	parallel.For(len(w.Tiles), func(start, end int) {
		for j := start; j < end; j++ {
			tv := trows.Data[j*trows.Stride : j*trows.Stride+TileFeatureWidth]
			for i := range list {
				sv := srows.Data[i*srows.Stride : i*srows.Stride+SpeciesFeatureWidth]
				p := math.NaN()
				if preyRows[i] != nil {
					p = preyRows[i][j]
				}
				raw.Data[i*raw.Stride+j] = e.weights.scorePair(sv, tv, p)
			}
		}
	})

	e.logger.Debug("suitability computed", "species", len(list), "tiles", len(w.Tiles))
	return m, nil
}

// Matrix is an N×M score matrix with species rows and tile columns.
type Matrix struct {
	scores *mat.Dense
	index  map[int]int
	ids    []int
	tiles  int
}

// Dims returns the species and tile counts.
func (m *Matrix) Dims() (nSpecies, nTiles int) {
	return len(m.ids), m.tiles
}

// SpeciesIDs returns the species ids in row order.
func (m *Matrix) SpeciesIDs() []int {
	return append([]int(nil), m.ids...)
}

// Scores exposes the underlying matrix for read-only bulk use. It is nil
// when either dimension is zero.
func (m *Matrix) Scores() mat.Matrix {
	if m.scores == nil {
		return nil
	}
	return m.scores
}

func (m *Matrix) row(speciesID int) (int, error) {
	i, ok := m.index[speciesID]
	if !ok {
		return 0, fmt.Errorf("species %d: %w", speciesID, species.ErrUnknownSpecies)
	}
	return i, nil
}

// At returns the score of one species on one tile.
func (m *Matrix) At(speciesID, tileID int) (float64, error) {
	i, err := m.row(speciesID)
	if err != nil {
		return 0, err
	}
	if tileID < 0 || tileID >= m.tiles {
		return 0, fmt.Errorf("tile %d: %w", tileID, world.ErrUnknownTile)
	}
	return m.scores.At(i, tileID), nil
}

// Row returns a copy of a species' scores across all tiles.
func (m *Matrix) Row(speciesID int) ([]float64, error) {
	i, err := m.row(speciesID)
	if err != nil {
		return nil, err
	}
	if m.tiles == 0 {
		return nil, nil
	}
	return mat.Row(nil, i, m.scores), nil
}

// Best returns the highest-scoring tile for a species, ties going to the
// lower id, and its score.
func (m *Matrix) Best(speciesID int) (int, float64, error) {
	i, err := m.row(speciesID)
	if err != nil {
		return -1, 0, err
	}
	best, score := -1, 0.0
	for j := 0; j < m.tiles; j++ {
		if v := m.scores.At(i, j); v > score {
			best, score = j, v
		}
	}
	return best, score, nil
}
