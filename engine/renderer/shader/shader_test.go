package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("  //@oxy:include camera", 3)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeInclude, a.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgCamera}, a.Args)
	assert.Equal(t, 3, a.Line)

	a, err = parseAnnotation("let x = 1.0;", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	_, err = parseAnnotation("//@oxy:include skybox", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 7")

	_, err = parseAnnotation("//@oxy:", 2)
	assert.Error(t, err)

	_, err = parseAnnotation("//@oxy:group 0 0 uniform camera camera", 2)
	assert.Error(t, err)
}

func TestProcessIncludesOnce(t *testing.T) {
	pp := NewPreProcessor(nil)
	out, err := pp.Process("//@oxy:include camera\n//@oxy:include light\n//@oxy:include camera\nfn main() {}")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform"))
	assert.Contains(t, out, strings.TrimSpace(camera.GPUCameraUniformSource))
	assert.Contains(t, out, "struct Light")
	assert.NotContains(t, out, "@oxy:")
	assert.Equal(t, []AnnotationArg{AnnotationArgCamera, AnnotationArgLight}, pp.Includes())
}

func TestProcessDefines(t *testing.T) {
	out, err := NewPreProcessor(map[string]string{"PCF_RADIUS": "1"}).Process("//@oxy:define MAX_LIGHTS\n//@oxy:define PCF_RADIUS")
	require.NoError(t, err)
	assert.Contains(t, out, "const MAX_LIGHTS = 4u;")
	assert.Contains(t, out, "const PCF_RADIUS = 1;")
	assert.Equal(t, light.MaxLights, 4)

	_, err = NewPreProcessor(nil).Process("//@oxy:define NOPE")
	assert.ErrorContains(t, err, "unknown define")
}

func TestNewShader(t *testing.T) {
	s, err := NewShader("mesh_vs", ShaderTypeVertex, "//@oxy:include vertex\n@vertex fn vs_main() {}")
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, "mesh_vs", s.Module().Label)
	assert.Contains(t, s.Source(), "struct VertexInput")
	assert.Equal(t, []AnnotationArg{AnnotationArgVertex}, s.Includes())

	s, err = NewShader("fs", ShaderTypeFragment, "//@oxy:define SOFT\n", WithEntryPoint("main"), WithDefine("SOFT", "true"))
	require.NoError(t, err)
	assert.Equal(t, "main", s.EntryPoint())
	assert.Contains(t, s.Source(), "const SOFT = true;")

	_, err = NewShader("empty", ShaderTypeVertex, "")
	assert.Error(t, err)

	_, err = NewShader("bad", ShaderTypeVertex, "//@oxy:include nothing")
	assert.ErrorContains(t, err, "shader bad")
}
