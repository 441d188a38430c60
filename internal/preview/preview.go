// Package preview renders an elevation grid as a hillshaded relief image so a
// tile can be inspected before committing to a print.
package preview

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/terratile/pkg/formats"
	"github.com/Faultbox/terratile/pkg/geom"
)

// Options controls the hillshade render.
type Options struct {
	// Size is the output edge length in pixels; zero keeps the grid
	// resolution.
	Size int
	// AzimuthDeg is the sun direction clockwise from north.
	AzimuthDeg float64
	// AltitudeDeg is the sun elevation above the horizon.
	AltitudeDeg float64
}

// DefaultOptions returns the conventional north-west sun at 45 degrees.
func DefaultOptions() Options {
	return Options{Size: 512, AzimuthDeg: 315, AltitudeDeg: 45}
}

// reliefGain stretches the normalized elevation range so gradients survive
// the unit-cell projection.
const reliefGain = 8

// Render produces a grayscale hillshade of the grid using Lambert shading of
// the local surface normal against the configured sun direction.
func Render(g *formats.ElevationGrid, opts Options) (*image.NRGBA, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	elevRange := g.Range()
	if elevRange <= 0 {
		elevRange = 1
	}

	sun := sunVector(opts.AzimuthDeg, opts.AltitudeDeg)
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))

	for j := 0; j < g.Height; j++ {
		for i := 0; i < g.Width; i++ {
			dzdx := (sample(g, i+1, j) - sample(g, i-1, j)) / (2 * elevRange) * reliefGain
			dzdy := (sample(g, i, j+1) - sample(g, i, j-1)) / (2 * elevRange) * reliefGain
			normal := geom.Vec3{X: -dzdx, Y: -dzdy, Z: 1}.Normalize()

			shade := normal.Dot(sun)
			if shade < 0 {
				shade = 0
			}
			v := uint8(shade*255 + 0.5)

			off := img.PixOffset(i, j)
			img.Pix[off] = v
			img.Pix[off+1] = v
			img.Pix[off+2] = v
			img.Pix[off+3] = 255
		}
	}

	if opts.Size > 0 && (opts.Size != g.Width || opts.Size != g.Height) {
		dst := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		return dst, nil
	}
	return img, nil
}

// Save encodes the render as a WebP file.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview file: %w", err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}

// sample reads elevation at (i, j) with clamped borders.
func sample(g *formats.ElevationGrid, i, j int) float64 {
	if i < 0 {
		i = 0
	}
	if j < 0 {
		j = 0
	}
	if i >= g.Width {
		i = g.Width - 1
	}
	if j >= g.Height {
		j = g.Height - 1
	}
	return g.At(i, j)
}

// sunVector converts azimuth/altitude in degrees into a unit direction toward
// the sun. Azimuth is clockwise from north (+y).
func sunVector(azimuthDeg, altitudeDeg float64) geom.Vec3 {
	az := azimuthDeg * math.Pi / 180
	alt := altitudeDeg * math.Pi / 180
	return geom.Vec3{
		X: math.Sin(az) * math.Cos(alt),
		Y: math.Cos(az) * math.Cos(alt),
		Z: math.Sin(alt),
	}
}
