package mesh

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	errNoPrimitive        = errors.New("glTF document has no such mesh primitive")
	errNoPositions        = errors.New("primitive has no POSITION attribute")
	errUnsupportedMode    = errors.New("only triangle primitives are supported")
	errIndexOutOfBounds   = errors.New("index references a missing vertex")
	errIncompleteTriangle = errors.New("index count is not a multiple of three")
	errMissingAccessor    = errors.New("reference to a missing accessor, buffer view or buffer")
)

// gltfImport selects what LoadGLTF reads from a document.
type gltfImport struct {
	meshIndex      int
	primitiveIndex int
	label          string
}

// GLTFOption is a functional option for LoadGLTF and LoadGLTFFile.
type GLTFOption func(*gltfImport)

// WithPrimitive selects the mesh and primitive to import (default 0, 0).
//
// Parameters:
//   - meshIndex: index into the document's meshes
//   - primitiveIndex: index into that mesh's primitives
//
// Returns:
//   - GLTFOption: option function to apply
func WithPrimitive(meshIndex, primitiveIndex int) GLTFOption {
	return func(g *gltfImport) {
		g.meshIndex = meshIndex
		g.primitiveIndex = primitiveIndex
	}
}

// WithLabel overrides the label of the imported mesh, which defaults to the glTF mesh name.
//
// Parameters:
//   - label: the mesh label
//
// Returns:
//   - GLTFOption: option function to apply
func WithLabel(label string) GLTFOption {
	return func(g *gltfImport) {
		g.label = label
	}
}

// LoadGLTF decodes a glTF document (JSON with embedded buffers, or GLB) and imports one triangle
// primitive as an indexed NormalVertex mesh. Missing normals are computed from the faces and a
// missing index list becomes 0..n-1.
//
// Parameters:
//   - data: the .gltf or .glb bytes
//   - options: primitive selection and label
//
// Returns:
//   - Mesh: the imported mesh
//   - error: error if decoding fails or the primitive cannot be imported
func LoadGLTF(data []byte, options ...GLTFOption) (Mesh, error) {
	doc := gltf.NewDocument()
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glTF: %w", err)
	}
	return importPrimitive(doc, options...)
}

// LoadGLTFFile opens a glTF or GLB file, resolving external buffers relative to its directory,
// and imports one primitive as LoadGLTF does.
//
// Parameters:
//   - path: the file path
//   - options: primitive selection and label
//
// Returns:
//   - Mesh: the imported mesh
//   - error: error if the file cannot be read or imported
func LoadGLTFFile(path string, options ...GLTFOption) (Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return importPrimitive(doc, options...)
}

func importPrimitive(doc *gltf.Document, options ...GLTFOption) (Mesh, error) {
	cfg := &gltfImport{}
	for _, opt := range options {
		opt(cfg)
	}

	if cfg.meshIndex < 0 || cfg.meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d: %w", cfg.meshIndex, errNoPrimitive)
	}
	m := doc.Meshes[cfg.meshIndex]
	if cfg.primitiveIndex < 0 || cfg.primitiveIndex >= len(m.Primitives) {
		return nil, fmt.Errorf("mesh %d primitive %d: %w", cfg.meshIndex, cfg.primitiveIndex, errNoPrimitive)
	}
	prim := m.Primitives[cfg.primitiveIndex]
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("primitive mode %v: %w", prim.Mode, errUnsupportedMode)
	}

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errNoPositions
	}
	// Resolve every accessor before reading so a dangling reference fails the same way
	// whichever attribute carries it.
	posAcr, err := accessor(doc, posIndex, "POSITION")
	if err != nil {
		return nil, err
	}
	var indexAcr, normalAcr *gltf.Accessor
	if prim.Indices != nil {
		if indexAcr, err = accessor(doc, *prim.Indices, "indices"); err != nil {
			return nil, err
		}
	}
	if normalIndex, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normalAcr, err = accessor(doc, normalIndex, "NORMAL"); err != nil {
			return nil, err
		}
	}

	positions, err := modeler.ReadPosition(doc, posAcr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var indices []uint32
	if indexAcr != nil {
		indices, err = modeler.ReadIndices(doc, indexAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, errIncompleteTriangle
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("index %d of %d vertices: %w", idx, len(positions), errIndexOutOfBounds)
		}
	}

	var normals [][3]float32
	if normalAcr != nil {
		normals, err = modeler.ReadNormal(doc, normalAcr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
	}
	if len(normals) != len(positions) {
		normals = ComputeNormals(positions, indices)
	}

	vertices := make([]NormalVertex, len(positions))
	for i, p := range positions {
		vertices[i] = NormalVertex{Position: p, Normal: normals[i]}
	}

	label := cfg.label
	if label == "" {
		label = m.Name
	}
	if label == "" {
		label = fmt.Sprintf("gltf mesh %d", cfg.meshIndex)
	}
	return NewMesh(label, vertices, WithIndices(indices)), nil
}

// accessor resolves an accessor index taken from the file. The accessor's buffer view and that
// view's buffer must exist too, since modeler indexes them without checking.
func accessor(doc *gltf.Document, index int, use string) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, fmt.Errorf("%s accessor %d of %d: %w", use, index, len(doc.Accessors), errMissingAccessor)
	}
	acr := doc.Accessors[index]
	if acr.BufferView == nil {
		return acr, nil
	}
	view := *acr.BufferView
	if view < 0 || view >= len(doc.BufferViews) || doc.BufferViews[view] == nil {
		return nil, fmt.Errorf("%s buffer view %d: %w", use, view, errMissingAccessor)
	}
	if buf := doc.BufferViews[view].Buffer; buf < 0 || buf >= len(doc.Buffers) {
		return nil, fmt.Errorf("%s buffer %d: %w", use, buf, errMissingAccessor)
	}
	return acr, nil
}
