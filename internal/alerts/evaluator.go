// Package alerts implements the alert evaluation core: given one
// subscription and a current reading, decide whether to notify, applying the
// threshold and cooldown rules. All dependencies (notifier, store updater,
// clock, cooldown) are injected at construction; nothing is read from
// ambient globals.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"airwatch/internal/aqi"
	"airwatch/internal/notifications"
	"airwatch/internal/types"
)

// Outcome classifies the result of one evaluation.
type Outcome string

const (
	// OutcomeSent means the threshold was exceeded, the push went out, and
	// the last-notified timestamp was advanced.
	OutcomeSent Outcome = "sent"
	// OutcomeSkipNoData means the reading was unavailable.
	OutcomeSkipNoData Outcome = "skip_no_data"
	// OutcomeSkipCooldown means a notification went out too recently.
	OutcomeSkipCooldown Outcome = "skip_cooldown"
	// OutcomeSkipBelowThreshold means the reading did not exceed the limit.
	// A reading exactly equal to the threshold does not notify.
	OutcomeSkipBelowThreshold Outcome = "skip_below_threshold"
	// OutcomeSkipSendFailed means the push was rejected; the timestamp is
	// untouched so the alert is retried on the next sweep.
	OutcomeSkipSendFailed Outcome = "skip_send_failed"
)

// Result is the transient outcome of one evaluation, used for logging and
// tests. It is never persisted.
type Result struct {
	Outcome Outcome
	Index   float64
}

// Notifier is the opaque push capability the evaluator invokes on trigger.
type Notifier interface {
	Send(ctx context.Context, target, title, body string) error
}

// LastNotifiedUpdater persists the cooldown timestamp after a confirmed
// send. This is the only storage mutation the evaluator performs, and it
// goes through the store rather than touching records directly.
type LastNotifiedUpdater interface {
	UpdateLastNotified(ctx context.Context, alertID int64, ts time.Time) error
}

// Evaluator applies the notify-or-skip decision for one alert at a time.
type Evaluator struct {
	notifier Notifier
	store    LastNotifiedUpdater
	cooldown time.Duration
	clock    types.Clock
	logger   *slog.Logger
}

// DefaultCooldown is the minimum gap between two notifications for the same
// alert record.
const DefaultCooldown = time.Hour

// NewEvaluator creates an Evaluator. Zero cooldown falls back to the
// default; nil clock falls back to wall time.
func NewEvaluator(notifier Notifier, store LastNotifiedUpdater, cooldown time.Duration, clock types.Clock, logger *slog.Logger) *Evaluator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		notifier: notifier,
		store:    store,
		cooldown: cooldown,
		clock:    clock,
		logger:   logger,
	}
}

// Evaluate decides whether to notify for one alert and reading. Rules in
// order: no data, cooldown, threshold, send. Only a confirmed send persists
// state (the last-notified timestamp); a failed send leaves the record
// untouched and therefore eligible again next sweep.
func (e *Evaluator) Evaluate(ctx context.Context, alert types.AlertSubscription, reading aqi.Reading) Result {
	if reading.Unavailable {
		return Result{Outcome: OutcomeSkipNoData}
	}

	now := e.clock.Now()
	if alert.LastNotifiedAt != nil && !alert.LastNotifiedAt.IsZero() {
		if now.Sub(*alert.LastNotifiedAt) < e.cooldown {
			return Result{Outcome: OutcomeSkipCooldown, Index: reading.Index}
		}
	}

	if reading.Index <= alert.Threshold {
		return Result{Outcome: OutcomeSkipBelowThreshold, Index: reading.Index}
	}

	body := notifications.BuildAlertBody(reading.Index)
	if err := e.notifier.Send(ctx, alert.DeviceToken, notifications.AlertTitle, body); err != nil {
		e.logger.WarnContext(ctx, "push send failed",
			"alert_id", alert.ID,
			"index", reading.Index,
			"error", err,
		)
		return Result{Outcome: OutcomeSkipSendFailed, Index: reading.Index}
	}

	if err := e.store.UpdateLastNotified(ctx, alert.ID, now); err != nil {
		// The push already went out; failing the evaluation now would only
		// cause a duplicate next sweep. Log and report sent.
		e.logger.ErrorContext(ctx, "failed to persist last-notified timestamp",
			"alert_id", alert.ID,
			"error", err,
		)
	}

	return Result{Outcome: OutcomeSent, Index: reading.Index}
}
