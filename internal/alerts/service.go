package alerts

import (
	"context"

	"airwatch/internal/aqi"
	"airwatch/internal/types"
)

// ReadingSource is the gateway contract the checker depends on. It never
// fails; a provider outage shows up as an unavailable reading.
type ReadingSource interface {
	Fetch(ctx context.Context, lat, lon float64) aqi.Reading
}

// Checker ties the gateway and the evaluator together into the single
// per-alert operation both the periodic sweep and the immediate check after
// creation run.
type Checker struct {
	source    ReadingSource
	evaluator *Evaluator
}

// NewChecker creates a Checker.
func NewChecker(source ReadingSource, evaluator *Evaluator) *Checker {
	return &Checker{
		source:    source,
		evaluator: evaluator,
	}
}

// Check fetches the current reading for the alert's coordinate and
// evaluates it.
func (c *Checker) Check(ctx context.Context, alert types.AlertSubscription) Result {
	reading := c.source.Fetch(ctx, alert.Lat, alert.Lon)
	return c.evaluator.Evaluate(ctx, alert, reading)
}
