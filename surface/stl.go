package surface

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// ErrEmptyMesh is returned for files without a single triangle
var ErrEmptyMesh = errors.New("mesh has no triangles")

// ParseSTL reads a binary or ASCII STL file into a centred mesh.
func ParseSTL(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL: %w", err)
	}

	var tris []Triangle
	switch {
	case isBinarySTL(data):
		tris, err = parseBinarySTL(data)
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")):
		tris, err = parseASCIISTL(data)
	default:
		return nil, errors.New("unrecognized STL format")
	}
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, ErrEmptyMesh
	}
	return NewMesh(tris), nil
}

// isBinarySTL trusts the triangle count only when it matches the file size;
// binary files may also start with "solid" in their header.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(n)*stlTriangleSize
}

func parseBinarySTL(data []byte) ([]Triangle, error) {
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	tris := make([]Triangle, 0, n)
	off := stlHeaderSize + 4
	for i := 0; i < n; i++ {
		rec := data[off : off+stlTriangleSize]
		var t Triangle
		// skip the stored normal (12 bytes), read 3 vertices
		for j := range 3 {
			base := 12 + j*12
			t.V[j] = Vec3{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+8:]))),
			}
		}
		tris = append(tris, t)
		off += stlTriangleSize
	}
	return tris, nil
}

func parseASCIISTL(data []byte) ([]Triangle, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(bufio.ScanWords)

	var (
		tris  []Triangle
		cur   Triangle
		count int
	)
	for sc.Scan() {
		if sc.Text() != "vertex" {
			continue
		}
		var coords [3]float64
		for k := range 3 {
			if !sc.Scan() {
				return nil, errors.New("truncated vertex in ASCII STL")
			}
			f, err := strconv.ParseFloat(sc.Text(), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex coordinate %q: %w", sc.Text(), err)
			}
			coords[k] = f
		}
		cur.V[count] = Vec3{coords[0], coords[1], coords[2]}
		count++
		if count == 3 {
			tris = append(tris, cur)
			cur = Triangle{}
			count = 0
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan ASCII STL: %w", err)
	}
	if count != 0 {
		return nil, errors.New("ASCII STL ends inside a facet")
	}
	return tris, nil
}

// EncodeBinarySTL writes a mesh as binary STL, used to export synced assets
// and to build fixtures.
func EncodeBinarySTL(w io.Writer, tris []Triangle) error {
	buf := make([]byte, stlHeaderSize+4, stlHeaderSize+4+len(tris)*stlTriangleSize)
	copy(buf, "layerlight binary stl")
	binary.LittleEndian.PutUint32(buf[stlHeaderSize:], uint32(len(tris)))

	rec := make([]byte, stlTriangleSize)
	for _, t := range tris {
		vals := []Vec3{t.Normal, t.V[0], t.V[1], t.V[2]}
		for i, v := range vals {
			binary.LittleEndian.PutUint32(rec[i*12:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(rec[i*12+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(rec[i*12+8:], math.Float32bits(float32(v.Z)))
		}
		rec[48], rec[49] = 0, 0
		buf = append(buf, rec...)
	}
	_, err := w.Write(buf)
	return err
}
