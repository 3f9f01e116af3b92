package mesh

// MeshBuilderOption is a functional option for configuring a mesh during NewMesh.
type MeshBuilderOption func(m *mesh)

// WithIndices attaches an index list defining the primitive connectivity. The slice is copied.
//
// Parameters:
//   - indices: vertex indices
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = append([]uint32(nil), indices...)
	}
}

// WithTopology sets the primitive assembly mode (default TopologyTriangleList).
//
// Parameters:
//   - t: the topology
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithTopology(t Topology) MeshBuilderOption {
	return func(m *mesh) {
		m.topology = t
	}
}
