package loader

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// decodeQueueSize bounds tasks waiting for a decode worker; SubmitTask blocks beyond it.
const decodeQueueSize = 64

// decodePool runs texture decodes on one worker pool shared by every import of a backend.
// The pool is created on first use and lives as long as the backend.
type decodePool struct {
	mu      sync.Mutex
	workers int
	pool    worker.DynamicWorkerPool
}

func newDecodePool(workers int) *decodePool {
	return &decodePool{workers: max(workers, 1)}
}

// Run executes every job on the pool and blocks until all of them returned.
// Concurrent imports take turns.
//
// Parameters:
//   - jobs: the decode jobs
func (d *decodePool) Run(jobs []func()) {
	if len(jobs) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == nil {
		d.pool = worker.NewDynamicWorkerPool(d.workers, decodeQueueSize, time.Second)
	}

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		d.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				job()
				return nil, nil
			},
		})
	}
	wg.Wait()
}
