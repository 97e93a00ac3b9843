// Package aqi implements the air-quality source gateway: a primary provider
// consulted first, a secondary consulted on any primary failure, and a
// normalized Reading that is either a numeric index or unavailable. Gateway
// failures never surface to callers as errors; the worst outcome is an
// unavailable reading.
package aqi

import "errors"

// ErrNoData signals that a provider answered but carried no usable numeric
// index ("-", null, missing station data). It is distinct from transport
// errors: both trigger fallback, but ErrNoData is not a provider fault.
var ErrNoData = errors.New("no usable air quality index")

// Reading is the transient result of one gateway fetch, tagged with the
// coordinate it was fetched for. It is never persisted.
type Reading struct {
	Index       float64
	Unavailable bool
	Lat         float64
	Lon         float64
}

// Available constructs a usable reading.
func Available(index, lat, lon float64) Reading {
	return Reading{Index: index, Lat: lat, Lon: lon}
}

// NoReading constructs the unavailable sentinel for a coordinate.
func NoReading(lat, lon float64) Reading {
	return Reading{Unavailable: true, Lat: lat, Lon: lon}
}
