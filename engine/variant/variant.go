// Package variant holds the walkthrough programs. Each variant adds one feature to the previous
// one: a plain triangle, time-based animation, texturing, an indexed mesh, lighting with depth
// testing and finally a perspective projection.
package variant

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/loop"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/chewxy/math32"
)

// GlobalsSource declares the Globals uniform block shared by every program. It matches
// common.Uniforms byte for byte.
//
//go:embed assets/globals.wgsl
var GlobalsSource string

var (
	//go:embed assets/flat.vert.wgsl
	flatVertexSource string
	//go:embed assets/solid.frag.wgsl
	solidFragmentSource string
	//go:embed assets/textured.vert.wgsl
	texturedVertexSource string
	//go:embed assets/textured.frag.wgsl
	texturedFragmentSource string
	//go:embed assets/normal.vert.wgsl
	normalVertexSource string
	//go:embed assets/lit.frag.wgsl
	litFragmentSource string

	// CheckerPNG is the 8x8 texture of the Textured variant.
	//
	//go:embed assets/checker.png
	CheckerPNG []byte
)

// TeapotRadius is the radius of the stand-in teapot mesh. Together with the 0.01 model scale it
// keeps the mesh about as large on screen as the classic teapot data.
const TeapotRadius float32 = 50

// DefaultLightDirection is the fixed light of the lit variants.
var DefaultLightDirection = [3]float32{-1.0, 0.4, 0.9}

// Variant is one walkthrough program: its geometry, shader pair, optional texture and the formula
// that turns time into a model matrix.
type Variant struct {
	// Name is the lookup key.
	Name string
	// Description is a one-line summary of what the variant adds.
	Description string
	// Mesh builds the geometry. It runs once during setup.
	Mesh func() (mesh.Mesh, error)
	// MeshFileCompatible marks variants whose shaders take position and normal inputs, so a glTF
	// file can stand in for the built-in mesh.
	MeshFileCompatible bool
	// VertexSource and FragmentSource are the WGSL shader pair.
	VertexSource, FragmentSource string
	// Texture is an encoded PNG for programs with a texture binding, nil otherwise.
	Texture []byte
	// Sampler configures the texture sampler.
	Sampler common.SamplerStagingData
	// Transform derives the model matrix from time.
	Transform loop.TransformFunc
	// Depth enables depth testing, depth writes and per-frame depth clears.
	Depth bool
	// Projection rebuilds the perspective matrix from the viewport every frame.
	Projection bool
	// LightDirection is the fixed light vector passed to lit programs.
	LightDirection [3]float32
}

// Shaders parses the variant's shader pair.
//
// Returns:
//   - shader.Shader: the vertex shader
//   - shader.Shader: the fragment shader
//   - error: error if either source has no entry point
func (v Variant) Shaders() (shader.Shader, shader.Shader, error) {
	vs, err := shader.NewShader(v.Name+".vs", shader.ShaderTypeVertex, v.VertexSource)
	if err != nil {
		return nil, nil, err
	}
	fs, err := shader.NewShader(v.Name+".fs", shader.ShaderTypeFragment, v.FragmentSource)
	if err != nil {
		return nil, nil, err
	}
	return vs, fs, nil
}

// PipelineOptions returns the draw parameters of the variant.
func (v Variant) PipelineOptions() []pipeline.PipelineBuilderOption {
	return []pipeline.PipelineBuilderOption{
		pipeline.WithDepth(v.Depth),
	}
}

// LoopOptions returns the loop options of the variant: its transform, projection, depth clears
// and light direction.
func (v Variant) LoopOptions() []loop.LoopBuilderOption {
	return []loop.LoopBuilderOption{
		loop.WithTransform(v.Transform),
		loop.WithProjection(v.Projection),
		loop.WithDepth(v.Depth),
		loop.WithLightDirection(v.LightDirection),
	}
}

// withGlobals prefixes a shader body with the Globals declaration.
func withGlobals(body string) string {
	return GlobalsSource + "\n" + body
}

// Triangle draws a static red triangle.
func Triangle() Variant {
	return Variant{
		Name:           "triangle",
		Description:    "a single static triangle",
		Mesh:           func() (mesh.Mesh, error) { return mesh.Triangle(), nil },
		VertexSource:   withGlobals(flatVertexSource),
		FragmentSource: solidFragmentSource,
		Transform:      loop.Static(),
	}
}

// Animated slides the triangle along X with time.
func Animated() Variant {
	v := Triangle()
	v.Name = "animated"
	v.Description = "the triangle moved along X by the clock"
	v.Transform = loop.TranslateX(1)
	return v
}

// Textured samples the checker texture on a spinning, sliding triangle.
func Textured() Variant {
	return Variant{
		Name:           "textured",
		Description:    "a textured triangle rotated and moved by the clock",
		Mesh:           func() (mesh.Mesh, error) { return mesh.TexturedTriangle(), nil },
		VertexSource:   withGlobals(texturedVertexSource),
		FragmentSource: texturedFragmentSource,
		Texture:        CheckerPNG,
		Transform:      loop.Compose(loop.TranslateX(1), loop.RotateZ(2*math32.Pi)),
	}
}

// teapotModel is the fixed model matrix of the teapot variants drawn without projection. It shrinks
// the mesh by 0.01 and pushes it to z = 0.5 so it sits inside the [0, 1] clip depth range.
func teapotModel() common.Matrix4 {
	return common.Mul4(common.Translation(0, 0, 0.5), common.Scaling(0.01, 0.01, 0.01))
}

// Teapot draws the indexed teapot mesh in a flat color.
func Teapot() Variant {
	return Variant{
		Name:               "teapot",
		Description:        "an indexed mesh with normals, flat shaded",
		Mesh:               func() (mesh.Mesh, error) { return mesh.Sphere(24, 32, TeapotRadius), nil },
		MeshFileCompatible: true,
		VertexSource:       withGlobals(normalVertexSource),
		FragmentSource:     solidFragmentSource,
		Transform:          loop.Fixed(teapotModel()),
	}
}

// Lit shades the teapot from a fixed light and turns on depth testing. The mesh turns around Y.
func Lit() Variant {
	v := Teapot()
	v.Name = "lit"
	v.Description = "the teapot lit from a fixed direction with depth testing"
	v.FragmentSource = withGlobals(litFragmentSource)
	v.Transform = loop.Compose(loop.Fixed(teapotModel()), loop.RotateY(2*math32.Pi))
	v.Depth = true
	v.LightDirection = DefaultLightDirection
	return v
}

// Perspective places the lit teapot three units in front of the viewer and projects it with a
// perspective matrix rebuilt from the viewport every frame.
func Perspective() Variant {
	v := Lit()
	v.Name = "perspective"
	v.Description = "the lit teapot under a perspective projection"
	v.Mesh = func() (mesh.Mesh, error) { return mesh.Sphere(24, 32, 2*TeapotRadius), nil }
	v.Transform = loop.Fixed(common.Mul4(common.Translation(0, 0, 3), common.Scaling(0.01, 0.01, 0.01)))
	v.Projection = true
	return v
}

var builtins = map[string]func() Variant{
	"triangle":    Triangle,
	"animated":    Animated,
	"textured":    Textured,
	"teapot":      Teapot,
	"lit":         Lit,
	"perspective": Perspective,
}

// Lookup returns the built-in variant with the given name.
//
// Parameters:
//   - name: the variant name
//
// Returns:
//   - Variant: the variant
//   - error: error if no variant has that name
func Lookup(name string) (Variant, error) {
	build, ok := builtins[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (known: %v)", name, Names())
	}
	return build(), nil
}

// Names returns the built-in variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
