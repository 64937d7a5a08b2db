package summarylog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wasteworks/reclaim/pkg/lifecycle"
)

// DefaultPollInterval paces the preprocessing scan when no override is
// configured.
const DefaultPollInterval = 5 * time.Second

// Poller feeds the processor from the store: every interval it lists summary
// logs still in preprocessing and submits them. Submission is idempotent on
// the processor side, so a log seen on consecutive scans queues once.
type Poller struct {
	store     Store
	processor *Processor
	logger    *slog.Logger
	interval  time.Duration
	batch     int
}

// NewPoller creates a poller with the given scan interval and batch size.
func NewPoller(store Store, processor *Processor, logger *slog.Logger, interval time.Duration, batch int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if batch <= 0 {
		batch = 16
	}
	return &Poller{
		store:     store,
		processor: processor,
		logger:    logger.With("system", "summarylog.poller"),
		interval:  interval,
		batch:     batch,
	}
}

// Start registers the scan loop with the lifecycle. The loop stops when the
// coordinator's context cancels; the shutdown hook waits for it to exit.
func (p *Poller) Start(lc *lifecycle.Coordinator) {
	done := make(chan struct{})

	lc.OnStartup(func() {
		go func() {
			defer close(done)
			p.loop(lc.Context())
		}()
		p.logger.Info("summary log poller started", "interval", p.interval)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
		p.logger.Info("summary log poller stopped")
	})
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

func (p *Poller) scan(ctx context.Context) {
	pending, err := p.store.ListPending(ctx, p.batch)
	if err != nil {
		p.logger.Error("pending scan failed", "error", err)
		return
	}

	for _, doc := range pending {
		if err := p.processor.Submit(doc.ID); err != nil {
			if errors.Is(err, ErrProcessorSaturate) {
				// The rest of the batch waits for the next scan.
				return
			}
			p.logger.Error("submit failed", "summary_log_id", doc.ID, "error", err)
			return
		}
	}
}
