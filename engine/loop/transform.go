package loop

import (
	"github.com/Carmen-Shannon/oxy-primer/common"
)

// TransformFunc derives the model/world matrix of a frame from the current time value.
// Each variant plugs in its own formula.
type TransformFunc func(t float32) common.Matrix4

// Static ignores time and always returns the identity matrix.
func Static() TransformFunc {
	return func(float32) common.Matrix4 {
		return common.Identity()
	}
}

// Fixed ignores time and always returns m.
func Fixed(m common.Matrix4) TransformFunc {
	return func(float32) common.Matrix4 {
		return m
	}
}

// TranslateX slides the mesh along X by t*scale.
func TranslateX(scale float32) TransformFunc {
	return func(t float32) common.Matrix4 {
		return common.Translation(t*scale, 0, 0)
	}
}

// RotateZ spins the mesh around Z by t*speed radians.
func RotateZ(speed float32) TransformFunc {
	return func(t float32) common.Matrix4 {
		return common.RotationZ(t * speed)
	}
}

// RotateY spins the mesh around Y by t*speed radians.
func RotateY(speed float32) TransformFunc {
	return func(t float32) common.Matrix4 {
		return common.RotationY(t * speed)
	}
}

// ScaleUniform scales the mesh by base + t*amplitude on every axis.
func ScaleUniform(base, amplitude float32) TransformFunc {
	return func(t float32) common.Matrix4 {
		s := base + t*amplitude
		return common.Scaling(s, s, s)
	}
}

// Compose multiplies the results of fns left to right, so the last function is applied to
// vertices first. With no functions it behaves like Static.
//
// Parameters:
//   - fns: the transform functions to chain
//
// Returns:
//   - TransformFunc: the combined transform
func Compose(fns ...TransformFunc) TransformFunc {
	return func(t float32) common.Matrix4 {
		m := common.Identity()
		for _, fn := range fns {
			m = common.Mul4(m, fn(t))
		}
		return m
	}
}
