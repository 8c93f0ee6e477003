package surface

// cubeTriangles returns an axis-aligned cube spanning [min, min+size] on every axis.
func cubeTriangles(min, size float64) []Triangle {
	lo, hi := min, min+size
	c := [8]Vec3{
		{lo, lo, lo}, {hi, lo, lo}, {hi, hi, lo}, {lo, hi, lo},
		{lo, lo, hi}, {hi, lo, hi}, {hi, hi, hi}, {lo, hi, hi},
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{2, 3, 7, 6}, // back
		{1, 2, 6, 5}, // right
		{0, 4, 7, 3}, // left
	}
	tris := make([]Triangle, 0, 12)
	for _, f := range faces {
		tris = append(tris,
			Triangle{V: [3]Vec3{c[f[0]], c[f[1]], c[f[2]]}},
			Triangle{V: [3]Vec3{c[f[0]], c[f[2]], c[f[3]]}},
		)
	}
	return tris
}

const asciiTetra = `solid tetra
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 0 0 1
    endloop
  endfacet
endsolid tetra
`
