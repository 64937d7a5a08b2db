package summarylog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wasteworks/reclaim/pkg/lifecycle"
)

// DefaultWorkers bounds concurrent pipeline runs when no override is
// configured.
const DefaultWorkers = 4

// Processor runs summary log pipelines asynchronously. Submit acknowledges
// immediately and a bounded worker pool drains the queue; a run in flight is
// never cancelled, so shutdown waits for active runs to land on a terminal
// status before releasing its hook.
type Processor struct {
	pipeline *Pipeline
	logger   *slog.Logger
	queue    chan uuid.UUID
	workers  int

	mu       sync.Mutex
	stopped  bool
	inflight map[uuid.UUID]struct{}
}

// NewProcessor creates a processor over the pipeline with the given worker
// count and queue depth.
func NewProcessor(pipeline *Pipeline, logger *slog.Logger, workers, depth int) *Processor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if depth <= 0 {
		depth = workers * 8
	}
	return &Processor{
		pipeline: pipeline,
		logger:   logger.With("system", "summarylog.processor"),
		queue:    make(chan uuid.UUID, depth),
		workers:  workers,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Start registers the worker pool with the lifecycle. Workers run until the
// queue closes; the shutdown hook stops intake, drains what remains, and
// blocks until every worker returns.
func (p *Processor) Start(lc *lifecycle.Coordinator) {
	group := new(errgroup.Group)
	group.SetLimit(p.workers)

	lc.OnStartup(func() {
		for range p.workers {
			group.Go(func() error {
				p.drain(context.Background())
				return nil
			})
		}
		p.logger.Info("summary log workers started", "workers", p.workers)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.close()
		if err := group.Wait(); err != nil {
			p.logger.Error("summary log workers stopped with error", "error", err)
			return
		}
		p.logger.Info("summary log workers stopped")
	})
}

// Submit queues a summary log for processing. A log already queued or
// running is accepted without requeueing. Returns ErrProcessorStopped after
// shutdown begins and ErrProcessorSaturate when the queue is full; callers
// surface saturation as backpressure rather than blocking.
func (p *Processor) Submit(id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrProcessorStopped
	}
	if _, ok := p.inflight[id]; ok {
		return nil
	}

	select {
	case p.queue <- id:
		p.inflight[id] = struct{}{}
		return nil
	default:
		return ErrProcessorSaturate
	}
}

func (p *Processor) drain(ctx context.Context) {
	for id := range p.queue {
		if _, err := p.pipeline.Run(ctx, id); err != nil {
			p.logger.Error("summary log run failed",
				"summary_log_id", id,
				"error", err,
			)
		}
		p.mu.Lock()
		delete(p.inflight, id)
		p.mu.Unlock()
	}
}

func (p *Processor) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
}
