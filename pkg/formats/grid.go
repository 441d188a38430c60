// Package formats provides codecs for the terratile input and output formats:
// JSON elevation grids and binary STL meshes.
package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrGridShape reports an elevation grid that violates the input contract:
// dimensions below 2x2 or a sample count that does not match width*height.
var ErrGridShape = errors.New("invalid elevation grid shape")

// ElevationGrid is a rectangular raster of elevation samples in row-major
// order: the sample for cell (i, j) is Elevations[j*Width+i].
type ElevationGrid struct {
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Elevations   []float64 `json:"elevations"`
	MinElevation float64   `json:"minElevation"`
	MaxElevation float64   `json:"maxElevation"`
}

// Validate checks the grid shape contract: both dimensions at least 2 and
// exactly Width*Height samples.
func (g *ElevationGrid) Validate() error {
	if g.Width < 2 || g.Height < 2 {
		return fmt.Errorf("%w: dimensions %dx%d, need at least 2x2", ErrGridShape, g.Width, g.Height)
	}
	if len(g.Elevations) != g.Width*g.Height {
		return fmt.Errorf("%w: %d samples for %dx%d grid, want %d",
			ErrGridShape, len(g.Elevations), g.Width, g.Height, g.Width*g.Height)
	}
	return nil
}

// At returns the elevation sample at cell (i, j). Bounds are not checked.
func (g *ElevationGrid) At(i, j int) float64 {
	return g.Elevations[j*g.Width+i]
}

// Range returns MaxElevation - MinElevation.
func (g *ElevationGrid) Range() float64 {
	return g.MaxElevation - g.MinElevation
}

// SampleRange returns the minimum and maximum of the actual samples, which
// may differ from the declared MinElevation/MaxElevation bounds.
func (g *ElevationGrid) SampleRange() (min, max float64) {
	if len(g.Elevations) == 0 {
		return 0, 0
	}
	min, max = g.Elevations[0], g.Elevations[0]
	for _, e := range g.Elevations[1:] {
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}
	return min, max
}

// ParseGrid parses an elevation grid from JSON bytes and validates its shape.
// A declared MinElevation above MaxElevation is treated as a flat range.
func ParseGrid(data []byte) (*ElevationGrid, error) {
	var g ElevationGrid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing elevation grid: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.MinElevation > g.MaxElevation {
		g.MaxElevation = g.MinElevation
	}
	return &g, nil
}

// ParseGridFile parses an elevation grid from a JSON file on disk.
func ParseGridFile(path string) (*ElevationGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading elevation grid: %w", err)
	}
	return ParseGrid(data)
}
