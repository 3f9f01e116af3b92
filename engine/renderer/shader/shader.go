package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which programmable stage a shader feeds.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptySource is returned when a shader is created without any WGSL text.
	ErrEmptySource = errors.New("shader source is empty")

	// ErrNoEntryPoint is returned when the WGSL text has no entry point for the shader's stage.
	ErrNoEntryPoint = errors.New("shader source has no entry point for its stage")
)

// shader is the implementation of the Shader interface.
// It holds the WGSL text and the metadata reflected from it that pipeline creation needs.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	vertexLayout               *wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
}

// Shader is a WGSL shader stage ready for pipeline creation. The source is treated as opaque
// text; only the declarations needed to build layouts are reflected from it.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the GPU debug label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader feeds.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// VertexLayout returns the vertex buffer layout reflected from the vertex input struct.
	// Fragment shaders and vertex shaders without a vertex input struct return nil.
	//
	// Returns:
	//   - *wgpu.VertexBufferLayout: the layout, or nil
	VertexLayout() *wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)
}

var _ Shader = &shader{}

// NewShader creates a Shader from inline WGSL text and reflects its entry point, vertex input
// layout and bind group layouts.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader feeds
//   - source: the WGSL source text
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrEmptySource or ErrNoEntryPoint (wrapped with the key) if the source is unusable
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %q: %w", key, ErrEmptySource)
	}
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}
	module := newWGSLModule(source)
	s.entryPoint = module.entryPoint(shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %q (%s): %w", key, shaderType, ErrNoEntryPoint)
	}
	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		s.vertexLayout = module.vertexLayout()
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = module.bindings(visibility)
	return s, nil
}

// NewShaderFromPath reads WGSL text from a file and creates a Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader feeds
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if the file cannot be read or the source is unusable
func NewShaderFromPath(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %q: failed to read source file %q: %w", key, path, err)
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayout() *wgpu.VertexBufferLayout {
	return s.vertexLayout
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}
