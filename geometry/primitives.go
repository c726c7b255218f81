package geometry

import (
	"github.com/chewxy/math32"
)

// Capsule builds a capped cylinder aligned with the Z axis: a body of
// the given length with hemispherical ends. Used both as the elongated
// placeholder shape and as the base of lofted bodies.
func Capsule(radius, length float32, radialSegments, lengthSegments int) *Mesh {
	if radialSegments < 3 {
		radialSegments = 3
	}
	if lengthSegments < 1 {
		lengthSegments = 1
	}
	profile := make([]float32, lengthSegments+1)
	for i := range profile {
		// Hemispherical taper toward both ends.
		t := float32(i) / float32(lengthSegments) // 0..1 along the body
		d := 2*t - 1                              // -1..1
		profile[i] = radius * math32.Sqrt(math32.Max(0, 1-d*d))
	}
	m := LoftBody(profile, length, radialSegments)
	m.Name = "capsule"
	return m
}

// Cone builds a cone pointing along +Z with an open base fan. Used as
// the compact placeholder shape.
func Cone(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := &Mesh{Name: "cone"}
	apex := Vec3{0, 0, height}
	base := Vec3{0, 0, 0}
	m.Vertices = append(m.Vertices, apex, base)
	m.Normals = append(m.Normals, Vec3{0, 0, 1}, Vec3{0, 0, -1})
	m.UVs = append(m.UVs, Vec2{0.5, 1}, Vec2{0.5, 0})
	for i := 0; i < segments; i++ {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		v := Vec3{radius * math32.Cos(a), radius * math32.Sin(a), 0}
		m.Vertices = append(m.Vertices, v)
		m.Normals = append(m.Normals, v.Normalized())
		m.UVs = append(m.UVs, Vec2{float32(i) / float32(segments), 0})
	}
	for i := 0; i < segments; i++ {
		cur := uint32(2 + i)
		next := uint32(2 + (i+1)%segments)
		// Side triangle and base triangle.
		m.Indices = append(m.Indices, 0, cur, next)
		m.Indices = append(m.Indices, 1, next, cur)
	}
	return m
}

// BillboardQuad builds a flat two-triangle quad of the given size in
// the XZ plane, facing the Y axis. The LOD builder sizes it to the
// source model's bounding box to act as a far-distance impostor.
func BillboardQuad(width, height float32) *Mesh {
	hw, hh := width/2, height/2
	return &Mesh{
		Name: "billboard",
		Vertices: []Vec3{
			{-hw, 0, -hh},
			{hw, 0, -hh},
			{hw, 0, hh},
			{-hw, 0, hh},
		},
		Normals: []Vec3{
			{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
		},
		UVs: []Vec2{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// LoftBody sweeps a circular cross-section along the Z axis, with the
// radius at each ring taken from profile. This is the shared body
// construction for fish-like shapes: a profile like
// [0, 0.4, 0.7, 0.5, 0.1] produces a tapered torpedo form.
func LoftBody(profile []float32, length float32, radialSegments int) *Mesh {
	if radialSegments < 3 {
		radialSegments = 3
	}
	rings := len(profile)
	m := &Mesh{Name: "loft_body"}
	if rings < 2 {
		return m
	}
	for ri, r := range profile {
		z := length * (float32(ri)/float32(rings-1) - 0.5)
		for s := 0; s < radialSegments; s++ {
			a := 2 * math32.Pi * float32(s) / float32(radialSegments)
			m.Vertices = append(m.Vertices, Vec3{r * math32.Cos(a), r * math32.Sin(a), z})
			m.Normals = append(m.Normals, Vec3{math32.Cos(a), math32.Sin(a), 0})
			m.UVs = append(m.UVs, Vec2{
				float32(s) / float32(radialSegments),
				float32(ri) / float32(rings-1),
			})
		}
	}
	for ri := 0; ri < rings-1; ri++ {
		for s := 0; s < radialSegments; s++ {
			a := uint32(ri*radialSegments + s)
			b := uint32(ri*radialSegments + (s+1)%radialSegments)
			c := a + uint32(radialSegments)
			d := b + uint32(radialSegments)
			m.Indices = append(m.Indices, a, c, b)
			m.Indices = append(m.Indices, b, c, d)
		}
	}
	return m
}

// Merge appends the geometry of src into dst, offsetting indices.
// Normals and UVs are padded with zero values when either side lacks
// them so the parallel-array invariant holds.
func Merge(dst, src *Mesh) {
	if src == nil || len(src.Vertices) == 0 {
		return
	}
	base := uint32(len(dst.Vertices))
	padAttrs(dst)
	padAttrs(src)
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	dst.Normals = append(dst.Normals, src.Normals...)
	dst.UVs = append(dst.UVs, src.UVs...)
	for _, idx := range src.Indices {
		dst.Indices = append(dst.Indices, base+idx)
	}
}

func padAttrs(m *Mesh) {
	for len(m.Normals) < len(m.Vertices) {
		m.Normals = append(m.Normals, Vec3{})
	}
	for len(m.UVs) < len(m.Vertices) {
		m.UVs = append(m.UVs, Vec2{})
	}
}

// Translate shifts every vertex of the mesh by offset.
func Translate(m *Mesh, offset Vec3) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(offset)
	}
}
