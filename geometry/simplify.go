package geometry

// Simplify returns a reduced copy of the mesh targeting roughly
// factor times the original triangle count (0 < factor <= 1).
// It drops triangles at a uniform stride and then compacts unused
// vertices. This is a deliberately cheap decimation pass: LOD levels
// only need monotonically decreasing complexity, not shape-preserving
// simplification.
func Simplify(m *Mesh, factor float32) *Mesh {
	if m == nil {
		return nil
	}
	if factor >= 1 || m.TriangleCount() <= 2 {
		return m.Clone()
	}
	if factor <= 0 {
		factor = 0.05
	}

	total := m.TriangleCount()
	keep := int(float32(total) * factor)
	if keep < 2 {
		keep = 2
	}

	out := &Mesh{Name: m.Name}
	remap := make(map[uint32]uint32, len(m.Vertices))

	// Evenly spaced triangle selection keeps the silhouette roughly
	// intact across the whole body rather than truncating one end.
	stride := float64(total) / float64(keep)
	next := 0.0
	for t := 0; t < total && out.TriangleCount() < keep; t++ {
		if float64(t) < next {
			continue
		}
		next += stride
		for k := 0; k < 3; k++ {
			old := m.Indices[t*3+k]
			nw, ok := remap[old]
			if !ok {
				nw = uint32(len(out.Vertices))
				remap[old] = nw
				out.Vertices = append(out.Vertices, m.Vertices[old])
				if int(old) < len(m.Normals) {
					out.Normals = append(out.Normals, m.Normals[old])
				}
				if int(old) < len(m.UVs) {
					out.UVs = append(out.UVs, m.UVs[old])
				}
			}
			out.Indices = append(out.Indices, nw)
		}
	}
	return out
}
