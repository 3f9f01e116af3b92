package mesh

import "github.com/chewxy/math32"

// Triangle returns the single 2D triangle every walkthrough starts from.
func Triangle() Mesh {
	return NewMesh("triangle", []Vertex2D{
		{Position: [2]float32{-0.5, -0.5}},
		{Position: [2]float32{0.0, 0.5}},
		{Position: [2]float32{0.5, -0.25}},
	})
}

// TexturedTriangle returns Triangle with texture coordinates. Texture coordinate (0, 0) is the
// bottom-left corner of the image.
func TexturedTriangle() Mesh {
	return NewMesh("textured triangle", []TexturedVertex{
		{Position: [2]float32{-0.5, -0.5}, TexCoords: [2]float32{0.0, 0.0}},
		{Position: [2]float32{0.0, 0.5}, TexCoords: [2]float32{0.0, 1.0}},
		{Position: [2]float32{0.5, -0.25}, TexCoords: [2]float32{1.0, 0.0}},
	})
}

// TexturedQuad returns an indexed unit quad centered on the origin covering the full texture.
func TexturedQuad() Mesh {
	return NewMesh("textured quad", []TexturedVertex{
		{Position: [2]float32{-0.5, -0.5}, TexCoords: [2]float32{0, 0}},
		{Position: [2]float32{0.5, -0.5}, TexCoords: [2]float32{1, 0}},
		{Position: [2]float32{0.5, 0.5}, TexCoords: [2]float32{1, 1}},
		{Position: [2]float32{-0.5, 0.5}, TexCoords: [2]float32{0, 1}},
	}, WithIndices([]uint32{0, 1, 2, 0, 2, 3}))
}

// Cube returns an indexed cube with edge length size, centered on the origin. Each face has its
// own four vertices so normals stay flat; triangles wind counter-clockwise seen from outside.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Mesh: 24 vertices, 36 indices
func Cube(size float32) Mesh {
	h := size / 2
	faces := [6]struct {
		normal [3]float32
		u, v   [3]float32
	}{
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
	}

	vertices := make([]NormalVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for a := 0; a < 3; a++ {
				p[a] = (f.normal[a] + c[0]*f.u[a] + c[1]*f.v[a]) * h
			}
			vertices = append(vertices, NormalVertex{Position: p, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh("cube", vertices, WithIndices(indices))
}

// Sphere returns an indexed UV sphere centered on the origin with outward normals.
//
// Parameters:
//   - rings: latitude subdivisions, at least 2
//   - segments: longitude subdivisions, at least 3
//   - radius: the sphere radius
//
// Returns:
//   - Mesh: (rings+1)*(segments+1) vertices, rings*segments*6 indices
func Sphere(rings, segments int, radius float32) Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	vertices := make([]NormalVertex, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			n := [3]float32{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, NormalVertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return NewMesh("sphere", vertices, WithIndices(indices))
}

// ComputeNormals returns per-vertex normals averaged from the faces of an indexed triangle list.
// Vertices touched by no triangle get a zero normal.
//
// Parameters:
//   - positions: the vertex positions
//   - indices: the triangle list indices
//
// Returns:
//   - [][3]float32: one unit normal per position
func ComputeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		if int(ia) >= len(positions) || int(ib) >= len(positions) || int(ic) >= len(positions) {
			continue
		}
		a, b, c := positions[ia], positions[ib], positions[ic]
		e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, idx := range [3]uint32{ia, ib, ic} {
			for k := 0; k < 3; k++ {
				normals[idx][k] += n[k]
			}
		}
	}
	for i, n := range normals {
		length := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if length == 0 {
			continue
		}
		normals[i] = [3]float32{n[0] / length, n[1] / length, n[2] / length}
	}
	return normals
}
