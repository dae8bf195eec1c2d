package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader module is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a fragment stage.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string
	defines    map[string]string
	includes   []AnnotationArg
}

// Shader is a pre-processed WGSL stage ready to be compiled into a shader module.
type Shader interface {
	// Key returns the unique identifier of the shader, used as its module label.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source returns the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// EntryPoint returns the name of the stage's entry function.
	//
	// Returns:
	//   - string: the entry point
	EntryPoint() string

	// ShaderType returns the pipeline stage.
	//
	// Returns:
	//   - ShaderType: the stage
	ShaderType() ShaderType

	// Includes returns the shared struct types injected into the source.
	//
	// Returns:
	//   - []AnnotationArg: the included struct types
	Includes() []AnnotationArg

	// Module returns a shader module descriptor for the source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// ShaderBuilderOption is a functional option for configuring a shader.
type ShaderBuilderOption func(*shader)

// WithEntryPoint overrides the entry function name ("vs_main" or "fs_main" by default).
//
// Parameters:
//   - name: the entry point
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}

// WithDefine adds a constant for //@oxy:define annotations.
//
// Parameters:
//   - name: the constant name
//   - value: the WGSL const expression
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithDefine(name, value string) ShaderBuilderOption {
	return func(s *shader) {
		s.defines[name] = value
	}
}

// NewShader pre-processes WGSL source into a Shader.
//
// Parameters:
//   - key: the unique shader identifier
//   - shaderType: the pipeline stage
//   - source: the raw WGSL source with @oxy: annotations
//   - options: functional options
//
// Returns:
//   - Shader: the processed shader
//   - error: error if the source is empty or an annotation is invalid
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		defines:    make(map[string]string),
	}
	switch shaderType {
	case ShaderTypeVertex:
		s.entryPoint = "vs_main"
	case ShaderTypeFragment:
		s.entryPoint = "fs_main"
	}
	for _, opt := range options {
		opt(s)
	}

	pp := NewPreProcessor(s.defines)
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = processed
	s.includes = append([]AnnotationArg(nil), pp.Includes()...)
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Includes() []AnnotationArg {
	return s.includes
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
}
