package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoader(options ...LoaderBuilderOption) Loader {
	options = append([]LoaderBuilderOption{WithFS(os.DirFS("testdata")), WithLogger(quietLogger())}, options...)
	return NewLoader(BackendTypeGLTF, options...)
}

func fixtureSize(t *testing.T) int64 {
	t.Helper()
	var total int64
	for _, name := range []string{"scene.gltf", "scene.bin", "checker.png"} {
		info, err := os.Stat("testdata/quad/" + name)
		require.NoError(t, err)
		total += info.Size()
	}
	return total
}

func TestProgressString(t *testing.T) {
	assert.Equal(t, "Loading: 33.33%", Progress{Loaded: 1, Total: 3}.String())
	assert.Equal(t, "Loading: 100.00%", Progress{Loaded: 2282, Total: 2282}.String())
	assert.Equal(t, float64(0), Progress{Loaded: 10}.Percent())
}

func TestLoadQuadFixture(t *testing.T) {
	result, err := newTestLoader().Load(context.Background(), "quad")
	require.NoError(t, err)
	require.NotNil(t, result.Root)

	assert.Equal(t, "Quad", result.Root.Name())
	assert.Equal(t, Stats{
		Nodes:     2,
		Meshes:    1,
		Triangles: 2,
		Vertices:  4,
		Materials: 1,
		Textures:  1,
		Skipped:   1,
		Bytes:     fixtureSize(t),
	}, result.Stats)

	s := scene.NewScene()
	require.NoError(t, s.Add(result.Root))
	instances := s.MeshNodes()
	require.Len(t, instances, 1)
	panel := instances[0]
	assert.Equal(t, "panel", panel.Node.Name())
	assert.Equal(t, mgl32.Translate3D(0, 1, 0).Mul4(mgl32.Scale3D(2, 2, 2)), panel.World)

	for _, v := range panel.Mesh.Vertices() {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal, "normals are computed from the faces")
	}
	assert.Equal(t, [2]float32{1, 1}, panel.Mesh.Vertices()[2].TexCoord)
	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, panel.Mesh.Indices())

	mat := panel.Mesh.Material()
	assert.Equal(t, "checker", mat.Name)
	assert.Equal(t, float32(0.25), mat.Metallic)
	assert.Equal(t, float32(0.75), mat.Roughness)
	assert.True(t, mat.DoubleSided)

	tex := mat.BaseColorTexture
	require.NotNil(t, tex)
	require.NotNil(t, tex.Staged)
	assert.Equal(t, uint32(2), tex.Staged.Width)
	assert.Equal(t, "image/png", tex.MimeType)
	assert.Equal(t, "checker.png", tex.Path)
	require.NotNil(t, tex.SamplerData)
	assert.Equal(t, wgpu.AddressModeClampToEdge, tex.SamplerData.AddressModeU)
	assert.Equal(t, wgpu.FilterModeNearest, tex.SamplerData.MagFilter)
}

func TestLoadAsyncReportsProgressThenResult(t *testing.T) {
	op := newTestLoader(WithDecodeWorkers(2)).LoadAsync(context.Background(), "quad")
	total := fixtureSize(t)

	var progress []Progress
	var results []*Result
	for ev := range op.Events() {
		if ev.Done() {
			results = append(results, ev.Result)
			continue
		}
		require.Empty(t, results, "no progress after the terminal event")
		progress = append(progress, ev.Progress)
	}

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.NotEmpty(t, progress)
	for i, p := range progress {
		assert.Equal(t, total, p.Total)
		assert.LessOrEqual(t, p.Loaded, total)
		if i > 0 {
			assert.GreaterOrEqual(t, p.Loaded, progress[i-1].Loaded)
		}
	}
	last := progress[len(progress)-1]
	assert.Equal(t, "Loading: 100.00%", last.String())
}

func TestLoadMissingAsset(t *testing.T) {
	l := newTestLoader()

	_, err := l.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = l.Load(context.Background(), "../quad")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = l.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLoadMissingReferencedFile(t *testing.T) {
	fsys := fstest.MapFS{
		"broken/scene.gltf": {Data: []byte(`{"asset":{"version":"2.0"},"buffers":[{"uri":"gone.bin","byteLength":4}]}`)},
	}
	_, err := newTestLoader(WithFS(fsys)).Load(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.bin")
}

func TestLoadDocumentWithoutScene(t *testing.T) {
	fsys := fstest.MapFS{
		"empty/scene.gltf": {Data: []byte(`{"asset":{"version":"2.0"}}`)},
	}
	result, err := newTestLoader(WithFS(fsys)).Load(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrNoScene)
	assert.Nil(t, result.Root)
}

func TestLoadEmbeddedBufferCountsDocumentOnly(t *testing.T) {
	document := []byte(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "triangle", "mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAAAAAAIA/"}]
}`)
	fsys := fstest.MapFS{"tri/scene.gltf": {Data: document}}

	result, err := newTestLoader(WithFS(fsys)).Load(context.Background(), "tri")
	require.NoError(t, err)
	assert.Equal(t, int64(len(document)), result.Stats.Bytes)
	assert.Equal(t, "tri", result.Root.Name(), "unnamed scenes take the asset name")
	assert.Equal(t, 1, result.Stats.Triangles)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestLoader().Load(ctx, "quad")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result.Root)
}
