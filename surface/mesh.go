// Package surface renders the lamp mesh in the current color and keeps the
// rendering context alive across losses.
package surface

import "math"

// Vec3 is a point or direction in model space
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector, or the zero vector for degenerate input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Triangle is one face with its geometric normal
type Triangle struct {
	V      [3]Vec3
	Normal Vec3
}

// Mesh is immutable geometry, centred on its bounding-box centre
type Mesh struct {
	Triangles []Triangle
	Min, Max  Vec3
	// Radius is the distance from the origin to the farthest vertex
	Radius float64
}

// NewMesh centres the triangles and computes bounds once.
// Normals are recomputed from winding.
func NewMesh(tris []Triangle) *Mesh {
	m := &Mesh{Triangles: make([]Triangle, len(tris))}
	if len(tris) == 0 {
		return m
	}

	lo, hi := bounds(tris)
	center := lo.Add(hi).Scale(0.5)

	for i, t := range tris {
		var out Triangle
		for j := range 3 {
			out.V[j] = t.V[j].Sub(center)
			if r := out.V[j].Len(); r > m.Radius {
				m.Radius = r
			}
		}
		out.Normal = out.V[1].Sub(out.V[0]).Cross(out.V[2].Sub(out.V[0])).Normalize()
		m.Triangles[i] = out
	}
	m.Min = lo.Sub(center)
	m.Max = hi.Sub(center)
	return m
}

func bounds(tris []Triangle) (Vec3, Vec3) {
	inf := math.Inf(1)
	lo := Vec3{inf, inf, inf}
	hi := Vec3{-inf, -inf, -inf}
	for _, t := range tris {
		for _, v := range t.V {
			lo = Vec3{math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z)}
			hi = Vec3{math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z)}
		}
	}
	return lo, hi
}
