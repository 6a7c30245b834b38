package queue

import (
	"context"
	"hash/fnv"
	"slices"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// StatusChange asks for one task to be moved to a new status.
type StatusChange struct {
	TaskID int64
	Status domain.TaskStatus
}

// Result is the outcome of one StatusChange.
type Result struct {
	Change StatusChange
	Task   *domain.Task
	Err    error

	seq int
}

// StatusUpdater is satisfied by service.TaskList and service.TaskService.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error)
}

type job struct {
	seq    int
	change StatusChange
}

// Dispatcher routes status changes to a fixed set of workers using
// consistent hashing on the task ID, guaranteeing per-task ordering.
type Dispatcher struct {
	workers []chan job
	updater StatusUpdater
	log     zerolog.Logger

	wg  sync.WaitGroup
	seq int

	mu      sync.Mutex
	results []Result
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, updater StatusUpdater, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{
		workers: make([]chan job, numWorkers),
		updater: updater,
		log:     log,
	}
}

// Start opens a new round with one goroutine per shard and an empty result
// set. Once ctx is cancelled, queued changes are recorded as failed with
// ctx.Err() instead of being sent. Rounds may repeat but must not overlap.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.results = nil
	d.mu.Unlock()
	d.seq = 0

	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
		d.wg.Add(1)
		go d.runWorker(ctx, i, d.workers[i])
	}
}

// Enqueue sends a change to the worker responsible for its task. It must be
// called between Start and Close, and not concurrently with itself.
func (d *Dispatcher) Enqueue(change StatusChange) {
	d.seq++
	d.workers[d.shardIndex(change.TaskID)] <- job{seq: d.seq, change: change}
}

func (d *Dispatcher) EnqueueBatch(changes []StatusChange) {
	for _, c := range changes {
		d.Enqueue(c)
	}
}

// Close stops accepting work, waits for the workers to drain and returns
// every result in enqueue order.
func (d *Dispatcher) Close() []Result {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	slices.SortFunc(d.results, func(a, b Result) int { return a.seq - b.seq })
	return d.results
}

// Apply runs one Start/Close round over changes and returns its results.
func (d *Dispatcher) Apply(ctx context.Context, changes []StatusChange) []Result {
	d.Start(ctx)
	d.EnqueueBatch(changes)
	return d.Close()
}

// shardIndex maps a task ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(taskID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for j := range ch {
		res := Result{Change: j.change, seq: j.seq}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Task, res.Err = d.updater.UpdateStatus(ctx, j.change.TaskID, j.change.Status)
		}
		if res.Err != nil {
			d.log.Error().Err(res.Err).
				Int64("task_id", j.change.TaskID).
				Int("worker_id", id).
				Msg("status change failed")
		}
		d.mu.Lock()
		d.results = append(d.results, res)
		d.mu.Unlock()
	}
}
