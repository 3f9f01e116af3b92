package mesh

import (
	"github.com/Carmen-Shannon/oxy-primer/common"
)

// Topology is the primitive assembly mode used to draw a mesh.
type Topology int

const (
	// TopologyTriangleList draws every three vertices (or indices) as one triangle.
	TopologyTriangleList Topology = iota

	// TopologyTriangleStrip draws a strip where each new vertex forms a triangle with the previous two.
	TopologyTriangleStrip

	// TopologyLineList draws every two vertices (or indices) as one line.
	TopologyLineList
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label       string
	vertexData  []byte
	vertexCount int
	indices     []uint32
	layout      VertexLayout
	topology    Topology
	boundsMin   [3]float32
	boundsMax   [3]float32
}

// Mesh is an immutable vertex sequence with an optional index list, ready for upload.
type Mesh interface {
	// Label returns the debug label of this mesh.
	//
	// Returns:
	//   - string: the label
	Label() string

	// VertexData returns the packed vertex records.
	//
	// Returns:
	//   - []byte: VertexCount() * Layout().Stride bytes
	VertexData() []byte

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Indexed reports whether the mesh carries an index list.
	//
	// Returns:
	//   - bool: true if IndexCount() > 0
	Indexed() bool

	// Indices returns a copy of the index list, or nil for non-indexed meshes.
	//
	// Returns:
	//   - []uint32: the triangle connectivity
	Indices() []uint32

	// IndexData returns the index list packed as little-endian uint32 values.
	//
	// Returns:
	//   - []byte: IndexCount() * 4 bytes, or nil
	IndexData() []byte

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count (0 if not indexed)
	IndexCount() int

	// Layout returns the vertex record layout.
	//
	// Returns:
	//   - VertexLayout: stride and attributes
	Layout() VertexLayout

	// Topology returns the primitive assembly mode.
	//
	// Returns:
	//   - Topology: the topology
	Topology() Topology

	// Bounds returns the axis-aligned bounding box of all vertex positions.
	//
	// Returns:
	//   - [3]float32: minimum corner
	//   - [3]float32: maximum corner
	Bounds() ([3]float32, [3]float32)
}

var _ Mesh = &mesh{}

// NewMesh packs vertices into an immutable Mesh. The vertex and index slices are copied.
//
// Parameters:
//   - label: the debug label used for GPU resources
//   - vertices: the vertex records
//   - options: functional options (indices, topology)
//
// Returns:
//   - Mesh: the packed mesh
func NewMesh[V Vertex](label string, vertices []V, options ...MeshBuilderOption) Mesh {
	var zero V
	m := &mesh{
		label:       label,
		vertexCount: len(vertices),
		layout:      zero.Layout(),
		topology:    TopologyTriangleList,
	}
	for _, opt := range options {
		opt(m)
	}

	owned := make([]V, len(vertices))
	copy(owned, vertices)
	m.vertexData = common.SliceToBytes(owned)

	for i, v := range vertices {
		p := v.Point()
		if i == 0 {
			m.boundsMin, m.boundsMax = p, p
			continue
		}
		for a := 0; a < 3; a++ {
			m.boundsMin[a] = min(m.boundsMin[a], p[a])
			m.boundsMax[a] = max(m.boundsMax[a], p[a])
		}
	}
	return m
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) VertexCount() int {
	return m.vertexCount
}

func (m *mesh) Indexed() bool {
	return len(m.indices) > 0
}

func (m *mesh) Indices() []uint32 {
	if len(m.indices) == 0 {
		return nil
	}
	out := make([]uint32, len(m.indices))
	copy(out, m.indices)
	return out
}

func (m *mesh) IndexData() []byte {
	return common.SliceToBytes(m.indices)
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) Layout() VertexLayout {
	return m.layout
}

func (m *mesh) Topology() Topology {
	return m.topology
}

func (m *mesh) Bounds() ([3]float32, [3]float32) {
	return m.boundsMin, m.boundsMax
}
