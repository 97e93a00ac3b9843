// Package types defines the shared domain model for the AirWatch backend:
// alert subscriptions, users, saved locations, and the error and context
// plumbing used across packages. It has no dependencies on other internal
// packages so that every layer can import it freely.
package types

import "time"

// AlertSubscription is the core domain entity: a registered location with an
// AQI threshold and a push target. It is owned exclusively by the alert
// store; the evaluator receives read snapshots plus an update callback and
// never mutates storage directly.
type AlertSubscription struct {
	ID          int64   `json:"id" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id"`
	Location    string  `json:"location" db:"location"`
	Lat         float64 `json:"lat" db:"lat"`
	Lon         float64 `json:"lon" db:"lon"`
	Threshold   float64 `json:"aqi_limit" db:"aqi_limit"`
	DeviceToken string  `json:"device_token" db:"device_token"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// LastNotifiedAt is nil until the first notification is sent. It is the
	// only field mutated after creation, and only on a confirmed send.
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty" db:"last_notified_at"`
}

// User is a registered device owner. There is no credential material; a user
// is just a display name plus the push token of their device.
type User struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	DeviceToken string `json:"device_token" db:"device_token"`
}

// SavedLocation is a named coordinate a user tracks, with a per-location AQI
// limit used by the read-only air-quality endpoints.
type SavedLocation struct {
	ID       int64   `json:"id" db:"id"`
	UserID   int64   `json:"user_id" db:"user_id"`
	Name     string  `json:"name" db:"name"`
	Lat      float64 `json:"lat" db:"lat"`
	Lon      float64 `json:"lon" db:"lon"`
	AQILimit int     `json:"aqi_limit" db:"aqi_limit"`
}

// AirMeasurement is a single pollutant reading reported by a provider.
type AirMeasurement struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// AirObservation is the full snapshot returned by the read-only air-quality
// endpoints. AQI is nil when the provider reported no usable index for the
// station ("-", null, or missing).
type AirObservation struct {
	Location         string           `json:"location,omitempty"`
	AQI              *int             `json:"aqi"`
	DominantPollutant string          `json:"dominentpol,omitempty"`
	Measurements     []AirMeasurement `json:"measurements"`
	Lat              float64          `json:"lat"`
	Lon              float64          `json:"lon"`
}
