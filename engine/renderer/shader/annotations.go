// annotations.go defines the annotation types and parser for the WGSL shader
// pre-processor. Annotations are single-line WGSL comments prefixed with @oxy:
// that inject shared struct definitions and Go-side constants into a shader.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the WGSL source of a registered struct definition.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include camera
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeDefine emits a WGSL const declaration whose value comes from the
	// pre-processor's defines. Shaders reference Go constants such as the light budget
	// without duplicating them.
	//
	// Syntax: //@oxy:define <NAME>
	//
	// Example: //@oxy:define MAX_LIGHTS
	AnnotationTypeDefine AnnotationType = "define"
)

// AnnotationArg is a single argument of an annotation.
type AnnotationArg string

// Struct types accepted by AnnotationTypeInclude.
const (
	AnnotationArgCamera AnnotationArg = "camera"
	AnnotationArgLight  AnnotationArg = "light"
	AnnotationArgVertex AnnotationArg = "vertex"
	AnnotationArgMesh   AnnotationArg = "mesh"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgVertex,
	AnnotationArgMesh,
}

// Annotation represents a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments: the struct type for include, the constant name for define.
	Args []AnnotationArg

	// Line is the 1-based source line the annotation was found on.
	Line int
}

// parseAnnotation parses a single source line. Lines without the annotation prefix yield nil.
//
// Parameters:
//   - line: the source line
//   - lineNum: the 1-based line number, used in error messages
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line holds none
//   - error: error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{Type: AnnotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil
	case AnnotationTypeDefine:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy define annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeDefine, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
