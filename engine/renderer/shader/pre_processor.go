package shader

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps include arguments to embedded WGSL struct sources.
	structRegistry map[AnnotationArg]string

	// defines maps constant names to WGSL const expressions.
	defines map[string]string

	// includes records the struct types injected by the most recent Process call.
	includes []AnnotationArg
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every annotation line with its WGSL output.
	// A struct included twice is emitted once.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the processed source
	//   - error: error if an annotation is malformed or references an unknown define
	Process(source string) (string, error)

	// Includes returns the struct types injected by the most recent Process call, in source order.
	//
	// Returns:
	//   - []AnnotationArg: the included struct types
	Includes() []AnnotationArg
}

var _ PreProcessor = &preProcessor{}

// DefaultDefines returns the constants every shader may reference.
//
// Returns:
//   - map[string]string: constant names to WGSL const expressions
func DefaultDefines() map[string]string {
	return map[string]string{
		"MAX_LIGHTS": fmt.Sprintf("%du", light.MaxLights),
	}
}

// NewPreProcessor creates a PreProcessor with the engine's GPU struct sources registered.
// Extra defines are merged over DefaultDefines.
//
// Parameters:
//   - defines: additional or overriding constants
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(defines map[string]string) PreProcessor {
	merged := DefaultDefines()
	maps.Copy(merged, defines)
	return &preProcessor{
		structRegistry: map[AnnotationArg]string{
			AnnotationArgCamera: camera.GPUCameraUniformSource,
			AnnotationArgLight:  light.GPULightSource,
			AnnotationArgVertex: model.GPUVertexSource,
			AnnotationArgMesh:   model.GPUMeshUniformSource,
		},
		defines: merged,
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.includes = p.includes[:0]
	seen := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			if seen[a.Args[0]] {
				continue
			}
			seen[a.Args[0]] = true
			out = append(out, strings.TrimRight(p.structRegistry[a.Args[0]], "\n"))
			p.includes = append(p.includes, a.Args[0])
		case AnnotationTypeDefine:
			name := string(a.Args[0])
			value, ok := p.defines[name]
			if !ok {
				return "", fmt.Errorf("line %d: unknown define %q", i+1, name)
			}
			out = append(out, fmt.Sprintf("const %s = %s;", name, value))
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []AnnotationArg {
	return p.includes
}
