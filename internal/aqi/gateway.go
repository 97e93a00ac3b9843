package aqi

import (
	"context"
	"errors"
	"log/slog"
)

// Provider is a single upstream air-quality source. Fetch returns the
// current index for a coordinate, ErrNoData when the source has no usable
// value there, or a transport error.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) (float64, error)
}

// Gateway normalizes two providers into the fetch contract the evaluator
// depends on. The primary is optional (it requires a credential); the
// secondary is consulted whenever the primary fails or yields no data.
type Gateway struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

// NewGateway creates a Gateway. primary may be nil when no credential is
// configured, in which case every fetch goes straight to the secondary.
func NewGateway(primary, secondary Provider, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Fetch resolves the current index for a coordinate. It never returns an
// error: transport failures, open breakers, and missing data all collapse
// into an unavailable Reading, logged here once.
func (g *Gateway) Fetch(ctx context.Context, lat, lon float64) Reading {
	if g.primary != nil {
		index, err := g.primary.Fetch(ctx, lat, lon)
		if err == nil {
			return Available(index, lat, lon)
		}
		g.logFailure(ctx, g.primary.Name(), lat, lon, err)
	}

	if g.secondary != nil {
		index, err := g.secondary.Fetch(ctx, lat, lon)
		if err == nil {
			return Available(index, lat, lon)
		}
		g.logFailure(ctx, g.secondary.Name(), lat, lon, err)
	}

	return NoReading(lat, lon)
}

func (g *Gateway) logFailure(ctx context.Context, provider string, lat, lon float64, err error) {
	// Missing data is routine; only transport failures are worth a warning.
	level := slog.LevelWarn
	if errors.Is(err, ErrNoData) {
		level = slog.LevelDebug
	}
	g.logger.Log(ctx, level, "aqi provider yielded no reading",
		"provider", provider,
		"lat", lat,
		"lon", lon,
		"error", err,
	)
}
