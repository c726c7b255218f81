// Package geometry provides the mesh, material, and vector value types
// shared by all generation strategies, plus primitive builders and a
// cheap decimation pass used by the LOD builder.
package geometry

import (
	"github.com/chewxy/math32"
)

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length. The zero vector is
// returned unchanged.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Vec2 is a 2-component float32 vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec3 { return b.Max.Sub(b.Min) }

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Mesh is an indexed triangle mesh. Normals and UVs are optional but,
// when present, must be parallel to Vertices.
type Mesh struct {
	Name     string
	Vertices []Vec3
	Normals  []Vec3
	UVs      []Vec2
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Bounds computes the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() Box {
	if m == nil || len(m.Vertices) == 0 {
		return Box{}
	}
	b := Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min.X = math32.Min(b.Min.X, v.X)
		b.Min.Y = math32.Min(b.Min.Y, v.Y)
		b.Min.Z = math32.Min(b.Min.Z, v.Z)
		b.Max.X = math32.Max(b.Max.X, v.X)
		b.Max.Y = math32.Max(b.Max.Y, v.Y)
		b.Max.Z = math32.Max(b.Max.Z, v.Z)
	}
	return b
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	cp := &Mesh{Name: m.Name}
	if m.Vertices != nil {
		cp.Vertices = append([]Vec3(nil), m.Vertices...)
	}
	if m.Normals != nil {
		cp.Normals = append([]Vec3(nil), m.Normals...)
	}
	if m.UVs != nil {
		cp.UVs = append([]Vec2(nil), m.UVs...)
	}
	if m.Indices != nil {
		cp.Indices = append([]uint32(nil), m.Indices...)
	}
	return cp
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Material is a simple PBR-style material description. Textures holds
// identifiers of projected or referenced texture images; the pipeline
// never decodes them past the strategy stage.
type Material struct {
	Name      string   `json:"name"`
	BaseColor Color    `json:"base_color"`
	Metallic  float32  `json:"metallic"`
	Roughness float32  `json:"roughness"`
	Textures  []string `json:"textures,omitempty"`
}

// Clone returns a copy of the material with an independent texture list.
func (mt Material) Clone() Material {
	cp := mt
	if mt.Textures != nil {
		cp.Textures = append([]string(nil), mt.Textures...)
	}
	return cp
}
