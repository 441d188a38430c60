package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/terratile/pkg/geom"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrFaceIndex    = errors.New("face index out of range")
)

// stlHeaderSize is the fixed prefix of a binary STL file: 80 identification
// bytes followed by a uint32 triangle count.
const stlHeaderSize = 80

// maxFacePrealloc caps how many faces ReadSTL reserves up front. The declared
// count is untrusted on-disk data; beyond the cap the slices grow as records
// actually arrive.
const maxFacePrealloc = 1 << 16

// stlRecord is the 50-byte on-disk layout of one triangle.
type stlRecord struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

// STL holds a binary STL file read back from disk. Vertices are deduplicated
// on read; Normals holds the stored per-triangle normal in face order.
type STL struct {
	Header   string
	Vertices []geom.Vec3
	Faces    [][3]int
	Normals  []geom.Vec3
}

// WriteSTL writes vertices and faces as a binary STL stream. The per-triangle
// normal is normalize(cross(v1-v0, v2-v0)); degenerate triangles get the zero
// vector. The header is truncated or zero-padded to 80 bytes.
func WriteSTL(w io.Writer, header string, vertices []geom.Vec3, faces [][3]int) error {
	for fi, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrFaceIndex, fi, idx, len(vertices))
			}
		}
	}

	bw := bufio.NewWriter(w)

	var head [stlHeaderSize]byte
	copy(head[:], header)
	if _, err := bw.Write(head[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(faces))); err != nil {
		return err
	}

	for _, f := range faces {
		v0, v1, v2 := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

		rec := stlRecord{
			Normal: [3]float32{float32(n.X), float32(n.Y), float32(n.Z)},
			Verts: [3][3]float32{
				{float32(v0.X), float32(v0.Y), float32(v0.Z)},
				{float32(v1.X), float32(v1.Y), float32(v1.Z)},
				{float32(v2.X), float32(v2.Y), float32(v2.Z)},
			},
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteSTLFile writes a binary STL to path. The data goes to a temporary file
// in the target directory first and is renamed into place on success, so a
// failed write never leaves a partial STL behind.
func WriteSTLFile(path, header string, vertices []geom.Vec3, faces [][3]int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".terratile-*.stl")
	if err != nil {
		return fmt.Errorf("creating STL output: %w", err)
	}

	if err := WriteSTL(tmp, header, vertices, faces); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing STL to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing STL output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming STL output: %w", err)
	}
	return nil
}

// ReadSTL parses a binary STL stream. Identical vertices are merged so the
// result has indexed faces rather than a triangle soup.
func ReadSTL(r io.Reader) (*STL, error) {
	var prefix struct {
		Header [stlHeaderSize]byte
		Count  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &prefix); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedSTL)
	}

	capHint := int(prefix.Count)
	if capHint > maxFacePrealloc {
		capHint = maxFacePrealloc
	}
	out := &STL{
		Header: string(trimTrailingZeros(prefix.Header[:])),
		Faces:  make([][3]int, 0, capHint),
	}
	vertIndex := make(map[[3]float32]int)

	for i := 0; i < int(prefix.Count); i++ {
		var rec stlRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("%w: reading triangle %d of %d", ErrTruncatedSTL, i, prefix.Count)
		}

		out.Normals = append(out.Normals, geom.Vec3{
			X: float64(rec.Normal[0]),
			Y: float64(rec.Normal[1]),
			Z: float64(rec.Normal[2]),
		})

		var face [3]int
		for v, p := range rec.Verts {
			idx, ok := vertIndex[p]
			if !ok {
				idx = len(out.Vertices)
				out.Vertices = append(out.Vertices, geom.Vec3{
					X: float64(p[0]),
					Y: float64(p[1]),
					Z: float64(p[2]),
				})
				vertIndex[p] = idx
			}
			face[v] = idx
		}
		out.Faces = append(out.Faces, face)
	}

	return out, nil
}

// ReadSTLFile parses a binary STL file from disk.
func ReadSTLFile(path string) (*STL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening STL file: %w", err)
	}
	defer f.Close()
	return ReadSTL(bufio.NewReader(f))
}

func trimTrailingZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
