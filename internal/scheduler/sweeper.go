// Package scheduler implements the periodic alert sweep: a fixed-interval
// background loop that snapshots every subscription, fetches a fresh reading
// for each, and runs the evaluator. One bad record never aborts the rest of
// a sweep, and a timer firing while a sweep is still running is skipped, not
// queued.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"airwatch/internal/alerts"
	"airwatch/internal/types"
)

// AlertLister abstracts the store read the sweeper needs: a full unordered
// snapshot of all subscriptions.
type AlertLister interface {
	List(ctx context.Context) ([]types.AlertSubscription, error)
}

// AlertChecker runs one alert through the gateway and evaluator.
type AlertChecker interface {
	Check(ctx context.Context, alert types.AlertSubscription) alerts.Result
}

// Stats summarizes one sweep for logging and tests.
type Stats struct {
	Total  int
	Sent   int
	Failed int // panics and send failures
}

// Sweeper owns the periodic loop. It is an explicit component with Start and
// Stop rather than process-global state: the store and checker are injected
// at construction, and the re-entrancy guard is internal.
type Sweeper struct {
	store       AlertLister
	checker     AlertChecker
	interval    time.Duration
	concurrency int
	logger      *slog.Logger

	// running coalesces overlapping sweeps: a tick that arrives while a
	// sweep holds the lock is dropped.
	running sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// DefaultInterval is the gap between periodic sweeps.
const DefaultInterval = 15 * time.Minute

// NewSweeper creates a Sweeper. Zero interval falls back to the default;
// concurrency below one runs alerts sequentially.
func NewSweeper(store AlertLister, checker AlertChecker, interval time.Duration, concurrency int, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:       store,
		checker:     checker,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Start launches the background loop: one immediate sweep, then one per
// interval. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

// Stop cancels the timer and any in-flight sweep's context, then returns.
// It does not wait for an in-flight sweep to drain; shutdown is
// best-effort by design.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run is the timer loop. Sweeps execute in their own goroutine so that a
// slow sweep never delays loop shutdown; overlap is prevented by the
// coalescing guard inside Sweep, not by the loop.
func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	go s.sweepLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go s.sweepLogged(ctx)
		}
	}
}

func (s *Sweeper) sweepLogged(ctx context.Context) {
	stats, err := s.Sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "sweep complete",
		"total", stats.Total,
		"sent", stats.Sent,
		"failed", stats.Failed,
	)
}

// ErrSweepInProgress is returned when a sweep is requested while another is
// still running. The caller treats it as a skip, not a failure.
var ErrSweepInProgress = fmt.Errorf("sweep already in progress")

// Sweep runs one full pass over every stored alert. Alerts are evaluated
// with bounded parallelism; ordering between alerts carries no meaning. A
// panic while checking one alert is recovered and counted as a failure
// without touching the others.
func (s *Sweeper) Sweep(ctx context.Context) (Stats, error) {
	if !s.running.TryLock() {
		return Stats{}, ErrSweepInProgress
	}
	defer s.running.Unlock()

	snapshot, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("listing alerts: %w", err)
	}

	s.logger.InfoContext(ctx, "sweep starting", "alerts", len(snapshot))

	stats := Stats{Total: len(snapshot)}
	var statsMu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, alert := range snapshot {
		alert := alert
		g.Go(func() error {
			outcome := s.checkOne(ctx, alert)
			statsMu.Lock()
			switch outcome {
			case alerts.OutcomeSent:
				stats.Sent++
			case alerts.OutcomeSkipSendFailed, outcomePanicked:
				stats.Failed++
			}
			statsMu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures are logged per alert above.
	_ = g.Wait()

	return stats, nil
}

// outcomePanicked marks an alert whose evaluation panicked. It never leaves
// this package.
const outcomePanicked alerts.Outcome = "panicked"

// checkOne evaluates a single alert, converting any panic into a logged
// failure so the remaining alerts in the sweep still run.
func (s *Sweeper) checkOne(ctx context.Context, alert types.AlertSubscription) (outcome alerts.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "alert evaluation panicked",
				"alert_id", alert.ID,
				"panic", r,
			)
			outcome = outcomePanicked
		}
	}()

	result := s.checker.Check(ctx, alert)
	s.logger.DebugContext(ctx, "alert evaluated",
		"alert_id", alert.ID,
		"outcome", string(result.Outcome),
		"index", result.Index,
	)
	return result.Outcome
}
