package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"voxelworld/internal/chunk"
	"voxelworld/internal/meshing"

	"github.com/google/uuid"
)

// ErrTaskPanicked wraps a panic raised while generating or meshing a chunk.
var ErrTaskPanicked = errors.New("world: chunk task panicked")

// Job generates and meshes one chunk.
type Job struct {
	World    uuid.UUID
	Task     *chunk.Task
	Lookup   chunk.LookupFunc
	Previous *chunk.Data
	Strategy chunk.RegenerateStrategy
	Meshing  meshing.MeshingFunc
	Mapper   meshing.TextureMapper
	// Cache is consulted so meshing is skipped when a mesh for the same
	// content already exists.
	Cache   *meshing.Cache
	Results chan<- Result
	// Done is closed when the owning world goes away; pending work and
	// undelivered results are dropped.
	Done <-chan struct{}
}

// Result is what a finished Job hands back to its world.
type Result struct {
	Task   *chunk.Task
	Mesh   *meshing.Mesh
	Bundle any
	Err    error
}

// TaskPool runs chunk jobs on a fixed set of worker goroutines shared by
// every world of a multiverse.
type TaskPool struct {
	jobQueue chan Job
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewTaskPool starts workers goroutines (runtime.NumCPU when <= 0) reading
// from a queue of queueSize jobs.
func NewTaskPool(workers, queueSize int) *TaskPool {
	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	if queueSize <= 0 {
		queueSize = 4096
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &TaskPool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// Submit queues a job without blocking. It returns false when the queue is
// full or the pool is shut down.
func (p *TaskPool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (p *TaskPool) worker(int) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			if job.abandoned() {
				continue
			}
			res := runJob(job)
			select {
			case job.Results <- res:
			case <-job.Done:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (j Job) abandoned() bool {
	select {
	case <-j.Done:
		return true
	default:
		return false
	}
}

// Shutdown stops the workers and waits for them. Queued jobs are dropped.
func (p *TaskPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// QueueLength is the number of jobs waiting for a worker.
func (p *TaskPool) QueueLength() int {
	return len(p.jobQueue)
}

func (p *TaskPool) Workers() int { return p.workers }

func runJob(job Job) (res Result) {
	res.Task = job.Task
	defer func() {
		if r := recover(); r != nil {
			res.Mesh, res.Bundle = nil, nil
			res.Err = fmt.Errorf("%w: chunk %v: %v", ErrTaskPanicked, job.Task.Position, r)
		}
	}()

	job.Task.Generate(job.Lookup, job.Previous, job.Strategy)
	d := job.Task.Data
	if !needsMesh(d) {
		return res
	}
	if job.Cache != nil && job.Cache.Contains(meshing.Key{World: job.World, Hash: d.Hash()}) {
		return res
	}
	res.Mesh, res.Bundle = job.Meshing(d.Voxels(), d.DataShape(), d.MeshShape(), job.Mapper)
	return res
}

// needsMesh is false for empty chunks and single-material full chunks.
// Full chunks of several materials stay Mixed and are meshed.
func needsMesh(d chunk.Data) bool {
	return !d.IsEmpty() && d.FillType() == chunk.FillMixed
}
