package mesh

// AttributeFormat is the per-vertex attribute type as the GPU sees it.
type AttributeFormat int

const (
	// AttributeFormatFloat32x2 is two 32-bit floats (8 bytes).
	AttributeFormatFloat32x2 AttributeFormat = iota

	// AttributeFormatFloat32x3 is three 32-bit floats (12 bytes).
	AttributeFormatFloat32x3
)

// Size returns the byte size of one attribute of this format.
func (f AttributeFormat) Size() uint64 {
	switch f {
	case AttributeFormatFloat32x2:
		return 8
	case AttributeFormatFloat32x3:
		return 12
	default:
		return 0
	}
}

// Attribute describes one field of a vertex record.
type Attribute struct {
	// Name is the field name, matching the shader input it feeds.
	Name string
	// Format is the attribute type.
	Format AttributeFormat
	// Offset is the byte offset of the field inside the vertex record.
	Offset uint64
	// Location is the shader input location the attribute binds to.
	Location uint32
}

// VertexLayout describes how a vertex record is laid out in an uploaded buffer.
type VertexLayout struct {
	// Stride is the byte size of one vertex record.
	Stride uint64
	// Attributes are the record fields in location order.
	Attributes []Attribute
}

// Vertex is the constraint every vertex record satisfies.
type Vertex interface {
	// Layout returns the buffer layout shared by all records of this type.
	Layout() VertexLayout
	// Point returns the record's position, with z = 0 for 2D records.
	Point() [3]float32
}

// Vertex2D is a bare 2D position.
type Vertex2D struct {
	Position [2]float32
}

var vertex2DLayout = VertexLayout{
	Stride: 8,
	Attributes: []Attribute{
		{Name: "position", Format: AttributeFormatFloat32x2, Offset: 0, Location: 0},
	},
}

func (Vertex2D) Layout() VertexLayout {
	return vertex2DLayout
}

func (v Vertex2D) Point() [3]float32 {
	return [3]float32{v.Position[0], v.Position[1], 0}
}

// TexturedVertex is a 2D position paired with texture coordinates. (0, 0) is the bottom-left
// corner of the texture.
type TexturedVertex struct {
	Position  [2]float32
	TexCoords [2]float32
}

var texturedVertexLayout = VertexLayout{
	Stride: 16,
	Attributes: []Attribute{
		{Name: "position", Format: AttributeFormatFloat32x2, Offset: 0, Location: 0},
		{Name: "tex_coords", Format: AttributeFormatFloat32x2, Offset: 8, Location: 1},
	},
}

func (TexturedVertex) Layout() VertexLayout {
	return texturedVertexLayout
}

func (v TexturedVertex) Point() [3]float32 {
	return [3]float32{v.Position[0], v.Position[1], 0}
}

// NormalVertex is a 3D position with a surface normal.
type NormalVertex struct {
	Position [3]float32
	Normal   [3]float32
}

var normalVertexLayout = VertexLayout{
	Stride: 24,
	Attributes: []Attribute{
		{Name: "position", Format: AttributeFormatFloat32x3, Offset: 0, Location: 0},
		{Name: "normal", Format: AttributeFormatFloat32x3, Offset: 12, Location: 1},
	},
}

func (NormalVertex) Layout() VertexLayout {
	return normalVertexLayout
}

func (v NormalVertex) Point() [3]float32 {
	return v.Position
}
