package common

import (
	"github.com/chewxy/math32"
)

// Matrix4 is a 4x4 matrix stored in column-major order (OpenGL/WebGPU convention).
// Element (row r, column c) lives at index c*4+r.
type Matrix4 = [16]float32

// DepthRange selects the clip-space depth interval a projection maps the near/far planes into.
type DepthRange int

const (
	// DepthRangeZeroToOne maps near to 0 and far to 1 (WebGPU, Vulkan, Direct3D).
	DepthRangeZeroToOne DepthRange = iota

	// DepthRangeMinusOneToOne maps near to -1 and far to 1 (OpenGL).
	DepthRangeMinusOneToOne
)

const (
	// DefaultFov is the vertical field of view used by BuildPerspective, in radians (60 degrees).
	DefaultFov = math32.Pi / 3.0

	// DefaultNear is the near clip distance used by BuildPerspective.
	DefaultNear = 0.1

	// DefaultFar is the far clip distance used by BuildPerspective.
	DefaultFar = 1024.0
)

// Identity returns the 4x4 identity matrix.
//
// Returns:
//   - Matrix4: the identity matrix
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul4 multiplies two 4x4 matrices.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: a * b
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - Matrix4: the product a * b
func Mul4(a, b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// Translation returns a matrix translating by (x, y, z).
//
// Parameters:
//   - x, y, z: translation along each axis
//
// Returns:
//   - Matrix4: the translation matrix
func Translation(x, y, z float32) Matrix4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scaling returns a matrix scaling by (x, y, z).
//
// Parameters:
//   - x, y, z: scale factor along each axis
//
// Returns:
//   - Matrix4: the scale matrix
func Scaling(x, y, z float32) Matrix4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotationX returns a matrix rotating by angle radians around the X axis.
func RotationX(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotationY returns a matrix rotating by angle radians around the Y axis.
func RotationY(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotationZ returns a matrix rotating by angle radians around the Z axis.
func RotationZ(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
//
// Parameters:
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - Matrix4: the composed model matrix
func BuildModelMatrix(pos, rot, scale [3]float32) Matrix4 {
	sx, cx := math32.Sincos(rot[0])
	sy, cy := math32.Sincos(rot[1])
	sz, cz := math32.Sincos(rot[2])

	var out Matrix4

	// R = Ry * Rx * Rz, column-major
	out[0] = (cy*cz + sy*sx*sz) * scale[0]
	out[1] = (cx * sz) * scale[0]
	out[2] = (-sy*cz + cy*sx*sz) * scale[0]

	out[4] = (cy*-sz + sy*sx*cz) * scale[1]
	out[5] = (cx * cz) * scale[1]
	out[6] = (sy*sz + cy*sx*cz) * scale[1]

	out[8] = (sy * cx) * scale[2]
	out[9] = (-sx) * scale[2]
	out[10] = (cy * cx) * scale[2]

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
	return out
}

// perspectiveConfig holds the constants BuildPerspective works from.
type perspectiveConfig struct {
	fov        float32
	near       float32
	far        float32
	depthRange DepthRange
}

// PerspectiveOption is a functional option for BuildPerspective.
type PerspectiveOption func(*perspectiveConfig)

// WithFov overrides the vertical field of view (radians).
func WithFov(fov float32) PerspectiveOption {
	return func(c *perspectiveConfig) {
		c.fov = fov
	}
}

// WithNear overrides the near clip distance.
func WithNear(near float32) PerspectiveOption {
	return func(c *perspectiveConfig) {
		c.near = near
	}
}

// WithFar overrides the far clip distance.
func WithFar(far float32) PerspectiveOption {
	return func(c *perspectiveConfig) {
		c.far = far
	}
}

// WithDepthRange selects the clip-space depth convention of the target backend.
func WithDepthRange(r DepthRange) PerspectiveOption {
	return func(c *perspectiveConfig) {
		c.depthRange = r
	}
}

// BuildPerspective builds a left-handed perspective projection for a viewport of the given size.
// The aspect ratio is height/width and scales the X diagonal term, so [0][0] = f*aspect and
// [1][1] = f where f = 1/tan(fov/2). The third column maps view depth into the selected depth range
// and copies z into w for the perspective divide. Only the width:height ratio matters, so scaling
// both dimensions by the same factor yields the same matrix. Non-positive dimensions are treated as 1.
//
// Parameters:
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//   - opts: optional overrides for fov, near, far and depth range
//
// Returns:
//   - Matrix4: the column-major projection matrix
func BuildPerspective(width, height int, opts ...PerspectiveOption) Matrix4 {
	cfg := perspectiveConfig{
		fov:        DefaultFov,
		near:       DefaultNear,
		far:        DefaultFar,
		depthRange: DepthRangeZeroToOne,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	width = max(width, 1)
	height = max(height, 1)
	aspect := float32(height) / float32(width)
	f := 1.0 / math32.Tan(cfg.fov/2.0)
	near, far := cfg.near, cfg.far

	var out Matrix4
	out[0] = f * aspect
	out[5] = f
	out[11] = 1.0
	switch cfg.depthRange {
	case DepthRangeMinusOneToOne:
		out[10] = (far + near) / (far - near)
		out[14] = -(2.0 * far * near) / (far - near)
	default:
		out[10] = far / (far - near)
		out[14] = -(far * near) / (far - near)
	}
	return out
}
