package surface

import (
	"math"

	"layerlight-storefront/palette"
)

// Scene constants of the product viewer
var (
	Background = palette.ParseHex("#F5F5F5")
	lightDir   = Vec3{1, 1, 0.6}.Normalize()
)

const (
	// Ambient is the light every face receives regardless of orientation
	Ambient = 0.5
	// Diffuse scales the directional light contribution
	Diffuse = 0.5
	// DefaultFOV is the vertical field of view in degrees
	DefaultFOV = 30.0

	nearPlane = 1e-3
	// fitMargin leaves some room around the mesh at zoom 1
	fitMargin = 1.15
)

// Framebuffer is a color buffer with a depth buffer of the same size
type Framebuffer struct {
	Width, Height int
	Pix           []palette.RGB
	depth         []float64
}

// NewFramebuffer allocates a w x h buffer.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates when the size changed.
func (fb *Framebuffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if w == fb.Width && h == fb.Height && fb.Pix != nil {
		return
	}
	fb.Width, fb.Height = w, h
	fb.Pix = make([]palette.RGB, w*h)
	fb.depth = make([]float64, w*h)
}

// Clear fills the color buffer with c and resets depth.
func (fb *Framebuffer) Clear(c palette.RGB) {
	for i := range fb.Pix {
		fb.Pix[i] = c
		fb.depth[i] = math.MaxFloat64
	}
}

// At returns the pixel at (x, y), Background outside the buffer.
func (fb *Framebuffer) At(x, y int) palette.RGB {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return Background
	}
	return fb.Pix[y*fb.Width+x]
}

// Camera describes the orbit around the mesh. The camera sits on +X looking
// at the origin with +Y up; the mesh is stood upright by a -90° turn about X.
type Camera struct {
	FOV   float64 // degrees
	Yaw   float64 // radians about the vertical axis
	Pitch float64 // radians about the horizontal screen axis
	Zoom  float64
	PanX  float64 // screen-space offset in units of mesh radius
	PanY  float64
}

// DefaultCamera is the initial viewer camera.
func DefaultCamera() Camera {
	return Camera{FOV: DefaultFOV, Zoom: 1}
}

// transform applies the model rotation then the orbit. Rotation only.
func (c Camera) transform(v Vec3) Vec3 {
	// -90° about X: (x, y, z) -> (x, z, -y)
	v = Vec3{v.X, v.Z, -v.Y}

	if c.Yaw != 0 {
		s, co := math.Sincos(c.Yaw)
		v = Vec3{v.X*co + v.Z*s, v.Y, -v.X*s + v.Z*co}
	}
	if c.Pitch != 0 {
		s, co := math.Sincos(c.Pitch)
		v = Vec3{v.X*co - v.Y*s, v.X*s + v.Y*co, v.Z}
	}
	return v
}

type projected struct {
	x, y, depth float64
}

// Rasterize draws mesh into fb in the given base color with ambient plus
// Lambert shading. fb is cleared to Background first.
func Rasterize(fb *Framebuffer, mesh *Mesh, cam Camera, base palette.RGB) {
	fb.Clear(Background)
	if mesh == nil || len(mesh.Triangles) == 0 || fb.Width == 0 || fb.Height == 0 {
		return
	}

	fov := cam.FOV
	if fov <= 0 {
		fov = DefaultFOV
	}
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	radius := mesh.Radius
	if radius == 0 {
		radius = 1
	}

	f := 1 / math.Tan(fov*math.Pi/360)
	dist := radius * f * fitMargin / zoom
	aspect := float64(fb.Width) / float64(fb.Height)
	w, h := float64(fb.Width), float64(fb.Height)

	project := func(p Vec3) (projected, bool) {
		depth := dist - p.X
		if depth <= nearPlane {
			return projected{}, false
		}
		sx := -p.Z + cam.PanX*radius
		sy := p.Y + cam.PanY*radius
		return projected{
			x:     (sx*f/(depth*aspect) + 1) * 0.5 * w,
			y:     (1 - sy*f/depth) * 0.5 * h,
			depth: depth,
		}, true
	}

	for _, tri := range mesh.Triangles {
		var pts [3]projected
		visible := true
		for j := range 3 {
			p, ok := project(cam.transform(tri.V[j]))
			if !ok {
				visible = false
				break
			}
			pts[j] = p
		}
		if !visible {
			continue
		}

		n := cam.transform(tri.Normal)
		if n.X < 0 {
			n = n.Scale(-1)
		}
		shade := Ambient + Diffuse*math.Max(0, n.Dot(lightDir))
		fillTriangle(fb, pts, base.Scale(shade))
	}
}

func edge(a, b projected, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func fillTriangle(fb *Framebuffer, p [3]projected, c palette.RGB) {
	area := edge(p[0], p[1], p[2].x, p[2].y)
	if area == 0 {
		return
	}

	minX := int(math.Max(0, math.Floor(math.Min(p[0].x, math.Min(p[1].x, p[2].x)))))
	maxX := int(math.Min(float64(fb.Width-1), math.Ceil(math.Max(p[0].x, math.Max(p[1].x, p[2].x)))))
	minY := int(math.Max(0, math.Floor(math.Min(p[0].y, math.Min(p[1].y, p[2].y)))))
	maxY := int(math.Min(float64(fb.Height-1), math.Ceil(math.Max(p[0].y, math.Max(p[1].y, p[2].y)))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(p[1], p[2], px, py) / area
			w1 := edge(p[2], p[0], px, py) / area
			w2 := edge(p[0], p[1], px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*p[0].depth + w1*p[1].depth + w2*p[2].depth
			idx := y*fb.Width + x
			if z < fb.depth[idx] {
				fb.depth[idx] = z
				fb.Pix[idx] = c
			}
		}
	}
}
