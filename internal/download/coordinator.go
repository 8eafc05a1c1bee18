package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/handiism/musicq/internal/model"
	"github.com/handiism/musicq/internal/queue"
	"github.com/handiism/musicq/internal/status"
)

var (
	// ErrShuttingDown is returned by Submit once Shutdown or Stop was called.
	ErrShuttingDown = errors.New("coordinator is shutting down")

	// ErrEmptySource is returned by Submit for blank input.
	ErrEmptySource = errors.New("empty source")
)

// Options configures a Coordinator.
type Options struct {
	// Workers is the pool size. Values below 1 use DefaultWorkers.
	Workers int

	// Target is the output format. Zero value uses model.MP3At192.
	Target model.TargetFormat

	// OnEvent receives progress events from the pool and coordinator. It is
	// called from worker goroutines and must not block for long.
	OnEvent func(ProgressEvent)
}

// Coordinator owns the queue, status board and worker pool for one session.
//
// The pool starts in NewCoordinator. Front ends call Submit and
// StatusSnapshot, then Shutdown (or Stop) once before exiting.
type Coordinator struct {
	queue  *queue.Queue[model.WorkItem]
	board  *status.Board
	pool   *Pool
	events eventSink

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closing bool
	seq     atomic.Uint64

	waitOnce sync.Once
	done     chan struct{}
}

// NewCoordinator builds the queue, board and pool and starts the workers.
func NewCoordinator(fetcher Fetcher, transcoder Transcoder, opts Options) *Coordinator {
	events := eventSink(opts.OnEvent)
	q := queue.New[model.WorkItem]()
	board := status.NewBoard(func(err error) {
		events.emit(LevelError, "", err.Error())
	})
	pool := NewPool(q, board, fetcher, transcoder, PoolConfig{
		Workers: opts.Workers,
		Target:  opts.Target,
	}, opts.OnEvent)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		queue:  q,
		board:  board,
		pool:   pool,
		events: events,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	pool.Start(ctx)
	return c
}

// Workers returns the pool size.
func (c *Coordinator) Workers() int {
	return c.pool.Workers()
}

// Submit registers sourceRef as a new pending item and queues it. The text
// is not validated beyond trimming; the fetcher decides whether it is
// usable.
func (c *Coordinator) Submit(sourceRef string) (string, error) {
	sourceRef = strings.TrimSpace(sourceRef)
	if sourceRef == "" {
		return "", ErrEmptySource
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return "", ErrShuttingDown
	}

	item := model.NewWorkItem(newID(), c.seq.Add(1), sourceRef)
	if err := c.board.Register(item); err != nil {
		return "", err
	}
	if err := c.queue.Push(item); err != nil {
		// Unreachable while c.mu serializes Submit with closing.
		return "", fmt.Errorf("queue %s: %w", sourceRef, err)
	}

	c.events.emit(LevelVerbose, item.ID, fmt.Sprintf("Queued %s (queue size: %d)", sourceRef, c.queue.Len()))
	return item.ID, nil
}

// StatusSnapshot returns a point-in-time copy of every item.
func (c *Coordinator) StatusSnapshot() status.Snapshot {
	return c.board.Snapshot()
}

// Item returns one item by id.
func (c *Coordinator) Item(id string) (model.WorkItem, bool) {
	return c.board.Get(id)
}

// QueueLen returns the number of items waiting for a worker.
func (c *Coordinator) QueueLen() int {
	return c.queue.Len()
}

// Active returns the number of items currently being processed.
func (c *Coordinator) Active() int {
	return c.pool.Active()
}

// ShuttingDown reports whether Shutdown or Stop has been called.
func (c *Coordinator) ShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// Shutdown stops accepting submissions and waits until every queued and
// active item has reached a terminal state and all workers have exited.
//
// If ctx ends first Shutdown returns ctx.Err(); the workers keep draining
// and a later call can wait again.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	if c.beginClose() {
		c.events.emit(LevelInfo, "", fmt.Sprintf("Waiting for %d active and %d queued downloads", c.pool.Active(), c.queue.Len()))
	}
	c.queue.Close()
	return c.wait(ctx)
}

// Stop stops accepting submissions, drops every item still waiting in the
// queue and waits for active items to finish. Dropped items stay pending on
// the board.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.beginClose()
	c.queue.Close()
	if dropped := c.queue.Discard(); len(dropped) > 0 {
		c.events.emit(LevelWarning, "", fmt.Sprintf("Dropped %d queued downloads", len(dropped)))
	}
	return c.wait(ctx)
}

// Kill cancels in-flight fetches and transcodes. Interrupted items end
// failed. It does not wait; use Done or Shutdown for that.
func (c *Coordinator) Kill() {
	c.beginClose()
	c.queue.Close()
	c.cancel()
}

// Done is closed once every worker has exited. Workers only exit after
// Shutdown, Stop or Kill.
func (c *Coordinator) Done() <-chan struct{} {
	c.startWaiter()
	return c.done
}

// Summary returns final counts from the board.
func (c *Coordinator) Summary() status.Counts {
	return c.board.Snapshot().Counts()
}

// beginClose marks the coordinator closing and reports whether this call
// did it.
func (c *Coordinator) beginClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return false
	}
	c.closing = true
	return true
}

func (c *Coordinator) wait(ctx context.Context) error {
	c.startWaiter()
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) startWaiter() {
	c.waitOnce.Do(func() {
		go func() {
			_ = c.pool.Wait()
			c.cancel()
			close(c.done)
		}()
	})
}

// newID returns a time-ordered UUID v7, falling back to a random v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
