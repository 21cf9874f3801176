package sweeper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	obsmetrics "github.com/shopstack/shopstack/internal/observability/metrics"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("sweeper misconfigured")

const (
	JobExpireOrders     = "expire_orders"
	JobResetReportViews = "reset_report_views"
	JobResetOrderCounts = "reset_order_counts"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	OrderSvc   orderdomain.Service
	TrackerSvc trackerdomain.Service
	Locker     *Locker `optional:"true"`
	Config     Config  `optional:"true"`
}

// Sweeper runs the calendar jobs: expiring stale pending orders every day,
// zeroing the daily report-view counters every day, and zeroing the monthly
// order counters on the first of each month. Jobs run outside request
// transactions; a reset racing a concurrent increment resolves by write
// ordering, which is accepted.
type Sweeper struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	orderSvc   orderdomain.Service
	trackerSvc trackerdomain.Service
	locker     *Locker

	lastRun map[string]time.Time
}

func New(p Params) (*Sweeper, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.OrderSvc == nil || p.TrackerSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Sweeper{
		log:        p.Log.Named("sweeper").With(zap.String("component", "sweeper")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		orderSvc:   p.OrderSvc,
		trackerSvc: p.TrackerSvc,
		locker:     p.Locker,
		lastRun:    make(map[string]time.Time),
	}, nil
}

type jobSpec struct {
	name string
	due  func(last, now time.Time) bool
	run  func(ctx context.Context) (int, error)
}

func (s *Sweeper) jobs() []jobSpec {
	return []jobSpec{
		{JobExpireOrders, dueDaily, func(ctx context.Context) (int, error) {
			return s.orderSvc.ExpireStale(ctx, s.cfg.OrderExpiryThreshold)
		}},
		{JobResetReportViews, dueDaily, func(ctx context.Context) (int, error) {
			rows, err := s.trackerSvc.ResetCounter(ctx, plandomain.DimReportViewsPerDay)
			return int(rows), err
		}},
		{JobResetOrderCounts, dueMonthlyFirst, func(ctx context.Context) (int, error) {
			rows, err := s.trackerSvc.ResetCounter(ctx, plandomain.DimOrdersPerMonth)
			return int(rows), err
		}},
	}
}

// RunOnce dispatches every enabled job that has come due since its last run.
// One failing job never blocks the others.
func (s *Sweeper) RunOnce(parent context.Context) error {
	now := s.clock.Now()
	var err error

	for _, job := range s.jobs() {
		if !s.isJobEnabled(job.name) {
			continue
		}
		if !job.due(s.lastRun[job.name], now) {
			continue
		}
		// The calendar slot is spent whether the run succeeds or not,
		// the same way a missed cron firing is not replayed.
		s.lastRun[job.name] = now
		err = errors.Join(err, s.runJob(parent, job.name, job.run))
	}
	return err
}

func (s *Sweeper) runJob(parent context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	lockKey := "sweep:lock:" + name
	token, acquired, lockErr := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
	if lockErr != nil {
		s.log.Warn("sweep lock unavailable", zap.String("job", name), zap.Error(lockErr))
		return nil
	}
	if !acquired {
		s.log.Debug("sweep job held by another runner", zap.String("job", name))
		return nil
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			s.log.Warn("sweep lock release failed", zap.String("job", name), zap.Error(err))
		}
	}()

	run := s.newJobRun(name)
	s.logJobStart(run)

	sweepMetrics := obsmetrics.Sweeper()
	sweepMetrics.IncJobRun(name)

	swept, err := fn(ctx)
	run.AddSwept(swept)
	sweepMetrics.ObserveJobDuration(name, time.Since(start))
	sweepMetrics.AddItemsSwept(name, swept)
	if err != nil {
		run.IncError()
		sweepMetrics.IncJobError(name)
	}
	s.logJobFinish(run)

	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("sweep job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Sweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.TickInterval)
	sweepMetrics := obsmetrics.Sweeper()

	for {
		if lag := time.Since(nextRun); lag > 0 {
			sweepMetrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("sweep run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.TickInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs means every job runs (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func dueDaily(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}

func dueMonthlyFirst(last, now time.Time) bool {
	if now.UTC().Day() != 1 {
		return false
	}
	if last.IsZero() {
		return true
	}
	ly, lm, _ := last.UTC().Date()
	ny, nm, _ := now.UTC().Date()
	return ly != ny || lm != nm
}
