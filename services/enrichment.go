package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Enricher runs the deferred enrich-and-notify step for one alert.
// usecase.SOSService satisfies this without the services package having to
// import it.
type Enricher interface {
	EnrichAlert(ctx context.Context, alertID string) error
}

// PendingSource lists alerts whose enrichment has not completed, for the
// restart sweep.
type PendingSource interface {
	PendingAlertIDs(ctx context.Context, olderThan time.Time) ([]string, error)
}

// EnrichmentWorker decouples SOS acknowledgement from the slow
// enrich-and-notify work. Triggers enqueue an alert id; the worker picks it
// up after a short fixed delay. Because the queue is in-process, a cron
// sweep re-enqueues alerts still marked pending in the store, giving the
// step at-least-once semantics across restarts. EnrichAlert tolerates
// duplicate runs, so the sweep and the queue may overlap safely.
type EnrichmentWorker struct {
	Enricher Enricher
	Pending  PendingSource
	Delay    time.Duration
	Logger   *zap.Logger

	// Observe, when set, receives the wall-clock seconds of each
	// successful enrichment run.
	Observe func(seconds float64)

	queue  chan string
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEnrichmentWorker(enricher Enricher, pending PendingSource, delay time.Duration, logger *zap.Logger) *EnrichmentWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &EnrichmentWorker{
		Enricher: enricher,
		Pending:  pending,
		Delay:    delay,
		Logger:   logger,
		queue:    make(chan string, 256),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue schedules an alert for enrichment. Never blocks the trigger
// path: if the queue is full the cron sweep will pick the alert up from
// the store instead.
func (w *EnrichmentWorker) Enqueue(alertID string) {
	select {
	case w.queue <- alertID:
	default:
		w.Logger.Warn("enrichment queue full, deferring to sweep",
			zap.String("alert_id", alertID))
	}
}

func (w *EnrichmentWorker) Start() {
	w.wg.Add(1)
	go w.run()

	w.cron = cron.New()
	w.cron.AddFunc("@every 1m", w.sweep)
	w.cron.Start()

	w.Logger.Info("enrichment worker started", zap.Duration("delay", w.Delay))
}

func (w *EnrichmentWorker) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
	w.cancel()
	w.wg.Wait()
}

func (w *EnrichmentWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case alertID := <-w.queue:
			// The short delay decouples the caller's response from the
			// delivery work without turning into a lost setTimeout: the
			// sweep covers anything dropped here.
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(w.Delay):
			}
			w.process(alertID)
		}
	}
}

func (w *EnrichmentWorker) process(alertID string) {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	start := time.Now()
	if err := w.Enricher.EnrichAlert(ctx, alertID); err != nil {
		// Leave the alert pending; the sweep retries it.
		w.Logger.Error("alert enrichment failed",
			zap.String("alert_id", alertID), zap.Error(err))
		return
	}
	if w.Observe != nil {
		w.Observe(time.Since(start).Seconds())
	}
}

func (w *EnrichmentWorker) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	ids, err := w.Pending.PendingAlertIDs(ctx, time.Now().Add(-w.Delay))
	if err != nil {
		w.Logger.Error("enrichment sweep query failed", zap.Error(err))
		return
	}

	for _, id := range ids {
		w.process(id)
	}
	if len(ids) > 0 {
		w.Logger.Info("enrichment sweep processed pending alerts", zap.Int("count", len(ids)))
	}
}
