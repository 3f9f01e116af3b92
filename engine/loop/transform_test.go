package loop

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/stretchr/testify/assert"
)

func TestBuiltInTransforms(t *testing.T) {
	tests := []struct {
		name string
		fn   TransformFunc
		t    float32
		want common.Matrix4
	}{
		{"static", Static(), 0.3, common.Identity()},
		{"fixed", Fixed(common.Scaling(2, 2, 2)), 0.3, common.Scaling(2, 2, 2)},
		{"translate x", TranslateX(1), 0.25, common.Translation(0.25, 0, 0)},
		{"rotate z", RotateZ(4), 0.125, common.RotationZ(0.5)},
		{"rotate y", RotateY(2), 0.25, common.RotationY(0.5)},
		{"scale", ScaleUniform(1, 2), 0.25, common.Scaling(1.5, 1.5, 1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.t))
		})
	}
}

func TestComposeOrder(t *testing.T) {
	fn := Compose(TranslateX(1), ScaleUniform(2, 0))
	assert.Equal(t, common.Mul4(common.Translation(0.5, 0, 0), common.Scaling(2, 2, 2)), fn(0.5))
	assert.Equal(t, common.Identity(), Compose()(0.5))
}
