// Package reconciler deactivates deals whose expiration has passed. A sweep
// is one bulk update; the Scheduler runs sweeps eagerly at start and then on
// a cron schedule.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealsdash/internal/common/logger"
	"dealsdash/internal/common/metrics"
	"dealsdash/internal/common/observability"
	"dealsdash/internal/models"
)

// Expirer flips active deals with expire_date strictly before now.
type Expirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) ([]models.ExpiredDeal, error)
}

// ExpiryNotifier is told about every sweep that expired at least one deal.
type ExpiryNotifier interface {
	NotifyExpired(ctx context.Context, sweepID string, at time.Time, deals []models.ExpiredDeal) error
}

type Result struct {
	SweepID  string
	At       time.Time
	Expired  []models.ExpiredDeal
	Duration time.Duration
}

func (r Result) Count() int { return len(r.Expired) }

type Reconciler struct {
	deals    Expirer
	notifier ExpiryNotifier
	now      func() time.Time
	timeout  time.Duration
	obs      *observability.Observability
	logger   logger.Logger
}

type Option func(*Reconciler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func WithNotifier(n ExpiryNotifier) Option {
	return func(r *Reconciler) { r.notifier = n }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.timeout = d }
}

func WithObservability(obs *observability.Observability) Option {
	return func(r *Reconciler) { r.obs = obs }
}

func New(deals Expirer, log logger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		deals:  deals,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"component": "reconciler"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sweep captures the current instant once and deactivates every active deal
// that expired before it. Deals expiring exactly at that instant stay active.
// Running it twice in a row is harmless; the second run finds nothing.
func (r *Reconciler) Sweep(ctx context.Context) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res := Result{SweepID: uuid.New().String(), At: r.now()}
	start := time.Now()

	expired, err := r.deals.DeactivateExpired(ctx, res.At)
	res.Duration = time.Since(start)
	metrics.ReconcilerSweepDuration.Observe(res.Duration.Seconds())

	if err != nil {
		metrics.ReconcilerSweeps.WithLabelValues("failure").Inc()
		r.obs.RecordSweep(ctx, "failure", 0, res.Duration)
		r.logger.Error("Expiration sweep failed", map[string]interface{}{
			"sweepId": res.SweepID,
			"error":   err.Error(),
		})
		return res, err
	}

	res.Expired = expired
	metrics.ReconcilerSweeps.WithLabelValues("success").Inc()
	metrics.DealsExpired.Add(float64(len(expired)))
	r.obs.RecordSweep(ctx, "success", int64(len(expired)), res.Duration)

	r.logger.Info("Expiration sweep completed", map[string]interface{}{
		"sweepId":    res.SweepID,
		"now":        res.At.Format(time.RFC3339),
		"expired":    len(expired),
		"durationMs": res.Duration.Milliseconds(),
	})

	if r.notifier != nil && len(expired) > 0 {
		if err := r.notifier.NotifyExpired(ctx, res.SweepID, res.At, expired); err != nil {
			r.logger.Warn("Expiration notification failed", map[string]interface{}{
				"sweepId": res.SweepID,
				"error":   err.Error(),
			})
		}
	}
	return res, nil
}
