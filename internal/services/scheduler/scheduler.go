// Package scheduler runs the periodic tracking loop: every tick it advances
// all active orders through the simulator, commits the batch in one store
// transaction, then invalidates cache keys and broadcasts the changes.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/BearBump/FoodTrack/internal/metrics"
	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/BearBump/FoodTrack/internal/services/simulator"
	"github.com/pkg/errors"
)

// UpdatedBy marks events emitted by the scheduler.
const UpdatedBy = "tracking-scheduler"

type Repository interface {
	ListActiveOrders(ctx context.Context) ([]*models.Order, error)
	ApplyTrackingBatch(ctx context.Context, updates []models.OrderUpdate) error
}

type Stepper interface {
	Step(o *models.Order) simulator.Result
}

type Scheduler struct {
	repo      Repository
	sim       Stepper
	cache     cache.Cache
	publisher broadcast.Publisher

	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastTickUnixNano    atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalTicks          atomic.Int64
	totalAdvanced       atomic.Int64
	totalDelivered      atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, sim Stepper, c cache.Cache, publisher broadcast.Publisher) *Scheduler {
	return &Scheduler{
		repo:              repo,
		sim:               sim,
		cache:             c,
		publisher:         publisher,
		interval:          5 * time.Second,
		now:               func() time.Time { return time.Now().UTC() },
		log:               slog.With("component", "tracking_scheduler"),
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (s *Scheduler) WithInterval(d time.Duration) *Scheduler {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// Trigger forces an immediate tick (best-effort, non-blocking).
func (s *Scheduler) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastTickAt     *time.Time `json:"lastTickAt,omitempty"`
	LastTriggerAt  *time.Time `json:"lastTriggerAt,omitempty"`
	TotalTicks     int64      `json:"totalTicks"`
	TotalAdvanced  int64      `json:"totalAdvanced"`
	TotalDelivered int64      `json:"totalDelivered"`
	TotalErrors    int64      `json:"totalErrors"`
	LastError      string     `json:"lastError,omitempty"`
}

func (s *Scheduler) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalTicks:     s.totalTicks.Load(),
		TotalAdvanced:  s.totalAdvanced.Load(),
		TotalDelivered: s.totalDelivered.Load(),
		TotalErrors:    s.totalErrors.Load(),
	}
	if n := s.lastTickUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTickAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info("tracking scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runOnce(ctx)
		case <-s.triggerCh:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.SchedulerTickDuration.Observe(time.Since(started).Seconds())
	}()

	s.totalTicks.Add(1)
	metrics.SchedulerTicksTotal.Inc()

	if err := s.tick(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.log.Info("tick abandoned", "error", err.Error())
			return
		}
		s.fail(err)
	}
}

func (s *Scheduler) tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	s.lastTickUnixNano.Store(now.UnixNano())

	orders, err := s.repo.ListActiveOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "list active orders")
	}

	var (
		updates []models.OrderUpdate
		results []simulator.Result
	)
	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := s.sim.Step(o)
		if !res.Changed() {
			continue
		}
		res.Order.UpdatedAt = now
		updates = append(updates, models.OrderUpdate{
			Order:   res.Order,
			History: models.HistoryFor(res.Order, now),
		})
		results = append(results, res)
	}
	if len(updates) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.repo.ApplyTrackingBatch(ctx, updates); err != nil {
		return errors.Wrapf(err, "apply tracking batch of %d", len(updates))
	}

	s.totalAdvanced.Add(int64(len(updates)))
	metrics.OrdersAdvancedTotal.Add(float64(len(updates)))

	for _, res := range results {
		o := res.Order
		cache.InvalidateOrder(ctx, s.cache, o.ID, o.UserID)
		if o.Status == models.OrderStatusDelivered && res.StatusChanged {
			s.totalDelivered.Add(1)
			metrics.OrdersDeliveredTotal.Inc()
		}
		s.broadcast(ctx, res, now)
	}

	s.log.Debug("tick committed", "orders", len(orders), "updated", len(updates))
	return nil
}

func (s *Scheduler) broadcast(ctx context.Context, res simulator.Result, at time.Time) {
	if s.publisher == nil {
		return
	}
	o := res.Order

	if res.StatusChanged {
		ev, err := broadcast.NewStatusEvent(broadcast.OrderStatusUpdated{
			OrderID:   o.ID,
			Status:    string(o.Status),
			UpdatedAt: at,
			UpdatedBy: UpdatedBy,
		})
		if err == nil {
			err = s.publisher.Publish(ctx, o.ID, ev)
		}
		if err != nil {
			s.log.Warn("publish status event", "order_id", o.ID, "error", err.Error())
		}
	}

	if res.PositionChanged && o.Position != nil {
		ev, err := broadcast.NewLocationEvent(broadcast.DeliveryLocationUpdated{
			OrderID:   o.ID,
			Latitude:  o.Position.Lat,
			Longitude: o.Position.Lng,
			ETA:       o.ETAMinutes,
			UpdatedAt: at,
		})
		if err == nil {
			err = s.publisher.Publish(ctx, o.ID, ev)
		}
		if err != nil {
			s.log.Warn("publish location event", "order_id", o.ID, "error", err.Error())
		}
	}
}

func (s *Scheduler) fail(err error) {
	s.totalErrors.Add(1)
	metrics.SchedulerTickErrorsTotal.Inc()
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
	s.log.Error("tracking tick failed", "error", err.Error())
}
