package bend

import (
	"fmt"

	"cogentcore.org/core/math32"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of vertices deformed by one goroutine.
const chunkSize = 1024

// CompleteFunc receives the deformed vertices of one container, in the
// container's index order.
type CompleteFunc func(obj *Object, c *Container, deformed []math32.Vector3)

type batchEntry struct {
	obj   *Object
	c     *Container
	out   []math32.Vector3
	place *Placement
	// next is the index of the first vertex not yet dispatched.
	next int
}

type batchTask struct {
	e      *batchEntry
	lo, hi int
}

type batchJob struct {
	tasks    []batchTask
	vertices int
	done     chan struct{}
}

// Batch accumulates the vertices of objects sharing one spline and deforms
// them in parallel jobs of at most the vertex budget.
//
// Start dispatches a job and Complete waits for it. Containers whose
// vertices don't fit in one job are carried over to the next one; their
// callback fires once all of their vertices are done. Each job reads the
// spline through a snapshot, so the spline may be edited while a job runs,
// although a container split across jobs keeps the snapshot of its first job.
//
// Batch is not safe for concurrent use.
type Batch struct {
	spline  *Spline
	budget  int
	workers int

	entries []*batchEntry
	running *batchJob

	jobs     int
	vertices int
}

// NewBatch returns an empty batch for objects bent along sp.
func NewBatch(sp *Spline, st Settings) *Batch {
	return &Batch{
		spline:  sp,
		budget:  max(st.VertexBudget, 1),
		workers: st.workers(),
	}
}

// Spline returns the spline the batch deforms along.
func (b *Batch) Spline() *Spline { return b.spline }

// Add queues the readable containers of obj. It reports whether the queued
// vertices reach the budget, in which case the caller should start the
// batch. Empty containers are ignored. Objects that aren't valid for runtime
// deformation are skipped.
func (b *Batch) Add(obj *Object) (full bool, err error) {
	if b.running != nil {
		return false, warn(ErrBatchRunning, "object", obj.Name)
	}
	if !obj.ValidForRuntimeDeformation() {
		Logger().Warn("skipping object not valid for runtime deformation", "object", obj.Name)
		return b.Pending() >= b.budget, nil
	}
	for _, c := range obj.Containers {
		if len(c.Origin) == 0 {
			continue
		}
		b.entries = append(b.entries, &batchEntry{
			obj: obj,
			c:   c,
			out: make([]math32.Vector3, len(c.Origin)),
		})
	}
	return b.Pending() >= b.budget, nil
}

// Pending returns the number of queued vertices not yet dispatched.
func (b *Batch) Pending() int {
	n := 0
	for _, e := range b.entries {
		n += len(e.c.Origin) - e.next
	}
	return n
}

// Jobs returns the number of jobs dispatched so far.
func (b *Batch) Jobs() int { return b.jobs }

// VertexCount returns the number of vertices dispatched so far.
func (b *Batch) VertexCount() int { return b.vertices }

// Start dispatches up to the vertex budget of queued vertices as one
// parallel job.
func (b *Batch) Start() error {
	if b.running != nil {
		return warn(ErrBatchRunning)
	}
	if b.Pending() == 0 {
		return fmt.Errorf("batch: nothing to start")
	}

	var snap *Snapshot
	job := &batchJob{done: make(chan struct{})}
	for _, e := range b.entries {
		left := len(e.c.Origin) - e.next
		if left == 0 {
			continue
		}
		if e.place == nil {
			if snap == nil {
				snap = b.spline.Snapshot()
			}
			e.place = e.obj.Place(snap)
		}
		n := min(left, b.budget-job.vertices)
		job.tasks = append(job.tasks, batchTask{e, e.next, e.next + n})
		e.next += n
		job.vertices += n
		if job.vertices >= b.budget {
			break
		}
	}
	b.running = job
	b.jobs++
	b.vertices += job.vertices
	Logger().Debug("dispatching deformation job",
		"job", b.jobs, "vertices", job.vertices, "containers", len(job.tasks), "pending", b.Pending())

	go job.run(b.workers)
	return nil
}

func (job *batchJob) run(workers int) {
	defer close(job.done)
	var g errgroup.Group
	g.SetLimit(workers)
	for _, t := range job.tasks {
		for lo := t.lo; lo < t.hi; lo += chunkSize {
			hi := min(lo+chunkSize, t.hi)
			e := t.e
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					e.out[i] = e.place.Deform(e.c.Origin[i])
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}

// IsCompleted reports, without blocking, whether the running job has
// finished. It is true if no job is running.
func (b *Batch) IsCompleted() bool {
	if b.running == nil {
		return true
	}
	select {
	case <-b.running.done:
		return true
	default:
		return false
	}
}

// Complete blocks until the running job is done, then calls fn once for
// every container whose vertices are all deformed and removes those
// containers from the batch.
func (b *Batch) Complete(fn CompleteFunc) {
	if b.running == nil {
		return
	}
	<-b.running.done
	b.running = nil

	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.next < len(e.c.Origin) || e.place == nil {
			kept = append(kept, e)
			continue
		}
		if fn != nil {
			fn(e.obj, e.c, e.out)
		}
	}
	clear(b.entries[len(kept):])
	b.entries = kept
}

// Drain starts and completes jobs until nothing is pending.
func (b *Batch) Drain(fn CompleteFunc) error {
	if b.running != nil {
		b.Complete(fn)
	}
	for b.Pending() > 0 {
		if err := b.Start(); err != nil {
			return err
		}
		b.Complete(fn)
	}
	return nil
}
