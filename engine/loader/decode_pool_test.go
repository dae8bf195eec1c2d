package loader

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePoolRunsEveryJob(t *testing.T) {
	d := newDecodePool(3)
	d.Run(nil)
	assert.Nil(t, d.pool, "no pool until there is work")

	var done atomic.Int32
	jobs := make([]func(), 200)
	for i := range jobs {
		jobs[i] = func() { done.Add(1) }
	}
	d.Run(jobs)
	assert.Equal(t, int32(200), done.Load())

	first := d.pool
	d.Run(jobs[:5])
	assert.Equal(t, int32(205), done.Load())
	assert.Same(t, first, d.pool)
}

func TestLoadsShareOneDecodePool(t *testing.T) {
	l := newTestLoader(WithDecodeWorkers(2))
	_, err := l.Load(context.Background(), "quad")
	require.NoError(t, err)

	backend := l.(*loader).backend.(*gltfLoaderBackendImpl)
	pool := backend.decoder.pool
	require.NotNil(t, pool)

	_, err = l.Load(context.Background(), "quad")
	require.NoError(t, err)
	assert.Same(t, pool, backend.decoder.pool)
	assert.Equal(t, 2, backend.decoder.workers)
}
