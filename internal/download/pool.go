package download

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/handiism/musicq/internal/model"
	"github.com/handiism/musicq/internal/queue"
	"github.com/handiism/musicq/internal/status"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 3

// fetchShare is the part of an item's progress bar given to fetching; the
// rest belongs to transcoding.
const fetchShare = 0.5

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Workers is the number of concurrent worker loops. Values below 1 use
	// DefaultWorkers.
	Workers int

	// Target is the encoded output format. Zero value uses model.MP3At192.
	Target model.TargetFormat
}

// Pool runs a fixed number of workers that pull items from a queue, fetch
// and transcode them, and record the outcome on the status board.
//
// A failing item never stops its worker or the pool. Workers exit when the
// queue is closed and drained, or when the context passed to Start is done.
type Pool struct {
	queue      *queue.Queue[model.WorkItem]
	board      *status.Board
	fetcher    Fetcher
	transcoder Transcoder
	cfg        PoolConfig
	events     eventSink

	startOnce sync.Once
	group     errgroup.Group
	started   atomic.Bool
	active    atomic.Int32
}

// NewPool creates a Pool. It does nothing until Start is called.
func NewPool(q *queue.Queue[model.WorkItem], board *status.Board, fetcher Fetcher, transcoder Transcoder, cfg PoolConfig, onEvent func(ProgressEvent)) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Target == (model.TargetFormat{}) {
		cfg.Target = model.MP3At192
	}
	return &Pool{
		queue:      q,
		board:      board,
		fetcher:    fetcher,
		transcoder: transcoder,
		cfg:        cfg,
		events:     onEvent,
	}
}

// Workers returns the configured number of workers.
func (p *Pool) Workers() int {
	return p.cfg.Workers
}

// Active returns how many items workers currently own.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Start launches the worker loops. Calling it again has no effect.
//
// ctx bounds the fetch and transcode calls; cancelling it interrupts
// in-flight work and makes idle workers exit without draining the queue.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.started.Store(true)
		for i := 0; i < p.cfg.Workers; i++ {
			worker := i
			p.group.Go(func() error {
				p.run(ctx, worker)
				return nil
			})
		}
		p.events.emit(LevelVerbose, "", fmt.Sprintf("Started %d workers", p.cfg.Workers))
	})
}

// Wait blocks until every worker loop has exited.
func (p *Pool) Wait() error {
	if !p.started.Load() {
		return nil
	}
	return p.group.Wait()
}

func (p *Pool) run(ctx context.Context, worker int) {
	for {
		item, err := p.queue.Pop(ctx)
		if err == nil && ctx.Err() != nil {
			// Killed: leave the item pending rather than claim it.
			err = ctx.Err()
		}
		if err != nil {
			p.events.emit(LevelVerbose, "", fmt.Sprintf("Worker %d exiting: %v", worker, err))
			return
		}
		p.process(ctx, worker, item)
	}
}

// process owns item from claim to terminal state. Whatever happens inside
// execute, the item leaves Active before process returns.
func (p *Pool) process(ctx context.Context, worker int, item model.WorkItem) {
	if err := p.board.Transition(item.ID, model.StateActive, status.Details{Worker: worker}); err != nil {
		p.events.emit(LevelError, item.ID, fmt.Sprintf("Cannot claim %s: %v", item.SourceRef, err))
		return
	}
	p.active.Add(1)
	defer p.active.Add(-1)

	p.events.emit(LevelInfo, item.ID, fmt.Sprintf("Worker %d started: %s", worker, item.SourceRef))

	res, err := p.execute(ctx, item)
	if err != nil {
		if terr := p.board.Transition(item.ID, model.StateFailed, status.Details{
			DisplayName: res.displayName,
			Artist:      res.artist,
			Err:         err,
		}); terr != nil {
			p.events.emit(LevelError, item.ID, fmt.Sprintf("Cannot record failure of %s: %v", item.SourceRef, terr))
		}
		title := res.displayName
		if title == "" {
			title = item.SourceRef
		}
		if model.IsInternal(err) {
			p.events.emit(LevelError, item.ID, fmt.Sprintf("Worker %d hit an internal error on %s: %v", worker, title, err))
			return
		}
		p.events.emit(LevelError, item.ID, fmt.Sprintf("Failed %s: %v", title, err))
		return
	}

	if terr := p.board.Transition(item.ID, model.StateCompleted, status.Details{
		DisplayName: res.displayName,
		Artist:      res.artist,
		OutputPath:  res.outputPath,
	}); terr != nil {
		p.events.emit(LevelError, item.ID, fmt.Sprintf("Cannot record completion of %s: %v", item.SourceRef, terr))
		return
	}
	p.events.emit(LevelSuccess, item.ID, fmt.Sprintf("Completed: %s", res.outputPath))
}

type result struct {
	displayName string
	artist      string
	outputPath  string
}

// execute runs fetch then transcode. A panic in either is turned into an
// internal error so the worker survives.
func (p *Pool) execute(ctx context.Context, item model.WorkItem) (res result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.InternalError{
				Kind:   model.KindPanic,
				ID:     item.ID,
				Detail: fmt.Sprint(r),
			}
			p.events.emit(LevelVerbose, item.ID, string(debug.Stack()))
		}
	}()

	artifact, err := p.fetcher.Fetch(ctx, item.SourceRef, func(f float64) {
		p.board.Report(item.ID, status.Progress{Fraction: clamp(f) * fetchShare})
	})
	if err != nil {
		return res, err
	}

	res.displayName = artifact.DisplayName
	res.artist = artifact.Artist
	p.board.Report(item.ID, status.Progress{
		Fraction:    fetchShare,
		DisplayName: artifact.DisplayName,
		Artist:      artifact.Artist,
	})
	p.events.emit(LevelVerbose, item.ID, fmt.Sprintf("Fetched %s, transcoding to %s", item.SourceRef, p.cfg.Target))

	outputPath, err := p.transcoder.Transcode(ctx, artifact, p.cfg.Target, func(f float64) {
		p.board.Report(item.ID, status.Progress{Fraction: fetchShare + clamp(f)*(1-fetchShare)})
	})
	if err != nil {
		return res, err
	}
	res.outputPath = outputPath
	return res, nil
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
