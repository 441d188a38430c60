// Package simplify reduces terrain mesh face counts while preserving the
// tile outline and terrain features. Two strategies sit behind the Decimator
// capability: an optional external quadric-decimation implementation, and the
// built-in importance-sampling fallback.
package simplify

import (
	"errors"

	"github.com/Faultbox/terratile/pkg/geom"
)

// ErrDecimatorUnavailable reports that high-quality simplification was
// requested but no external decimator is present or it failed. Callers
// recover by using the fallback strategy; the returned mesh is still valid.
var ErrDecimatorUnavailable = errors.New("external decimator unavailable")

// DecimateOptions are the knobs passed to an external decimator.
type DecimateOptions struct {
	TargetFaces      int
	QualityThreshold float64
	PreserveBoundary bool
	PreserveNormal   bool
	PreserveTopology bool
}

// Decimator is the external mesh simplification capability: given vertices,
// faces and a target face count it returns a smaller vertices/faces pair that
// approximates the surface, preserving boundary and normals per the options.
type Decimator interface {
	Decimate(vertices []geom.Vec3, faces [][3]int, opts DecimateOptions) ([]geom.Vec3, [][3]int, error)
}

// Config selects and parameterizes the simplification strategy.
type Config struct {
	// TargetFaces is the desired face count; zero derives
	// max(1000, originalFaceCount/10).
	TargetFaces      int
	QualityThreshold float64
	PreserveBoundary bool
	PreserveNormal   bool
	PreserveTopology bool

	// HighQuality prefers the external decimator when one is wired in.
	HighQuality bool
	// Decimator is the external capability; nil means not available. The
	// availability check happens once at startup and is threaded through
	// here rather than consulted as global state.
	Decimator Decimator
}

// DefaultConfig returns the standard simplification settings.
func DefaultConfig() Config {
	return Config{
		QualityThreshold: 0.3,
		PreserveBoundary: true,
		PreserveNormal:   true,
		PreserveTopology: true,
		HighQuality:      true,
	}
}
