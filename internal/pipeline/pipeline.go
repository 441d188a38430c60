// Package pipeline runs the full heightfield-to-STL conversion: build the
// dense surface, simplify it, extrude a printable base, scale to physical
// size and serialize. Stages run strictly in sequence; each consumes the
// previous stage's mesh.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terratile/internal/config"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/internal/simplify"
	"github.com/Faultbox/terratile/pkg/formats"
	"github.com/Faultbox/terratile/pkg/mesh"
)

// stlHeader identifies files written by this tool.
const stlHeader = "Binary STL - terratile TIN export"

// Result summarizes a completed conversion for the caller.
type Result struct {
	Success    bool   `json:"success"`
	Vertices   int    `json:"vertices"`
	Faces      int    `json:"faces"`
	OutputPath string `json:"outputPath"`
}

// Run converts the elevation grid into a binary STL at outputPath.
//
// The decimator is the optional external simplification capability; nil means
// unavailable, which degrades to the internal fallback strategy with a
// warning rather than aborting. All other stage errors are fatal and carry
// the failing stage in their message.
func Run(grid *formats.ElevationGrid, outputPath string, cfg *config.Config, dec simplify.Decimator) (*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("validating input grid: %w", err)
	}

	logger.Info("building mesh",
		zap.Int("width", grid.Width),
		zap.Int("height", grid.Height))
	surface, err := mesh.BuildFromGrid(grid, cfg.Print.VerticalExaggeration, cfg.Print.MeshSize)
	if err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}
	logger.Info("initial mesh",
		zap.Int("vertices", len(surface.Vertices)),
		zap.Int("faces", len(surface.Faces)))

	simplified, strategy, err := simplify.Simplify(surface, simplify.Config{
		TargetFaces:      cfg.Simplify.TargetFaces,
		QualityThreshold: cfg.Simplify.QualityThreshold,
		PreserveBoundary: cfg.Simplify.PreserveBoundary,
		PreserveNormal:   cfg.Simplify.PreserveNormal,
		PreserveTopology: cfg.Simplify.PreserveTopology,
		HighQuality:      cfg.Simplify.HighQuality,
		Decimator:        dec,
	})
	if err != nil {
		if !errors.Is(err, simplify.ErrDecimatorUnavailable) {
			return nil, fmt.Errorf("simplifying mesh: %w", err)
		}
		logger.Warn("external decimator unavailable, using fallback simplification",
			zap.Error(err))
	}
	logger.Info("simplified mesh",
		zap.String("strategy", string(strategy)),
		zap.Int("vertices", len(simplified.Vertices)),
		zap.Int("faces", len(simplified.Faces)))

	if len(simplified.Perimeter) == 0 {
		logger.Warn("mesh carries no perimeter chain, base extrusion will reconstruct a square grid boundary")
	}
	solid, err := mesh.Extrude(simplified, cfg.Print.BaseThicknessMM)
	if err != nil {
		return nil, fmt.Errorf("extruding base: %w", err)
	}
	logger.Info("added base",
		zap.Int("vertices", len(solid.Vertices)),
		zap.Int("faces", len(solid.Faces)))

	if err := mesh.ScaleToTile(solid, cfg.Print.TileSizeMM); err != nil {
		return nil, fmt.Errorf("scaling to tile size: %w", err)
	}
	logger.Info("scaled to print size", zap.Float64("tile_size_mm", cfg.Print.TileSizeMM))

	if err := formats.WriteSTLFile(outputPath, stlHeader, solid.Vertices, solid.Faces); err != nil {
		return nil, fmt.Errorf("serializing STL: %w", err)
	}
	logger.Info("wrote STL",
		zap.String("path", outputPath),
		zap.Int("triangles", len(solid.Faces)))

	return &Result{
		Success:    true,
		Vertices:   len(solid.Vertices),
		Faces:      len(solid.Faces),
		OutputPath: outputPath,
	}, nil
}
