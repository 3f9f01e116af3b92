package common

import (
	"unsafe"
)

// Color is a linear RGBA clear color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Uniforms is the per-frame value block handed to the shader program of a draw call.
// The field order and sizes match the WGSL struct every built-in program declares:
//
//	struct Globals {
//	    model: mat4x4<f32>,
//	    projection: mat4x4<f32>,
//	    light: vec4<f32>,
//	    params: vec4<f32>,
//	};
//
// Params.X carries the animation time.
type Uniforms struct {
	// Model is the model/world transform derived from the animation time.
	Model Matrix4
	// Projection is the perspective matrix, or identity in variants without projection.
	Projection Matrix4
	// LightDirection is the fixed light direction (xyz), w unused.
	LightDirection [4]float32
	// Params holds scalar inputs; X is the current time.
	Params [4]float32
}

// UniformsSize is the byte size of Uniforms as laid out in GPU memory.
const UniformsSize = uint64(unsafe.Sizeof(Uniforms{}))

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
