package db

import (
	"context"
	"log/slog"
	"time"

	"airwatch/internal/types"
)

// AlertRepo owns the alert subscription records. Concurrent access from the
// HTTP layer and the sweeper is serialized per statement by the database;
// no partial writes are observable.
type AlertRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewAlertRepo creates an AlertRepo backed by the given connection (pool or
// transaction).
func NewAlertRepo(db DBTX, logger *slog.Logger) *AlertRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertRepo{db: db, logger: logger}
}

// Insert stores a new subscription and fills in its assigned ID and
// creation timestamp.
func (r *AlertRepo) Insert(ctx context.Context, alert *types.AlertSubscription) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO alerts (user_id, location, lat, lon, aqi_limit, device_token)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		alert.UserID,
		alert.Location,
		alert.Lat,
		alert.Lon,
		alert.Threshold,
		alert.DeviceToken,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert alert", err)
	}
	return nil
}

// List returns a full snapshot of all subscriptions. Order carries no
// meaning; callers must not assume stability across calls.
func (r *AlertRepo) List(ctx context.Context) ([]types.AlertSubscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, location, lat, lon, aqi_limit, device_token, created_at, last_notified_at
		 FROM alerts`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []types.AlertSubscription
	for rows.Next() {
		var a types.AlertSubscription
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Location,
			&a.Lat,
			&a.Lon,
			&a.Threshold,
			&a.DeviceToken,
			&a.CreatedAt,
			&a.LastNotifiedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert row", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read alert rows", err)
	}

	return alerts, nil
}

// UpdateLastNotified advances the cooldown timestamp for one alert after a
// confirmed send. A missing record is not an error: the alert may have been
// deleted mid-sweep, and the send already happened.
func (r *AlertRepo) UpdateLastNotified(ctx context.Context, alertID int64, ts time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE alerts SET last_notified_at = $1 WHERE id = $2`,
		ts, alertID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update last-notified timestamp", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.DebugContext(ctx, "last-notified update matched no row; alert likely deleted",
			"alert_id", alertID,
		)
	}
	return nil
}

// Delete removes a subscription by ID, reporting whether a record existed.
func (r *AlertRepo) Delete(ctx context.Context, alertID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, alertID)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to delete alert", err)
	}
	return tag.RowsAffected() > 0, nil
}
