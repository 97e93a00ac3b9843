package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"airwatch/internal/types"
)

// LocationRepo owns the saved-location records.
type LocationRepo struct {
	db DBTX
}

// NewLocationRepo creates a LocationRepo.
func NewLocationRepo(db DBTX) *LocationRepo {
	return &LocationRepo{db: db}
}

// Create stores a saved location and fills in the assigned ID.
func (r *LocationRepo) Create(ctx context.Context, loc *types.SavedLocation) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO locations (user_id, name, lat, lon, aqi_limit)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		loc.UserID,
		loc.Name,
		loc.Lat,
		loc.Lon,
		loc.AQILimit,
	).Scan(&loc.ID)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create location", err)
	}
	return nil
}

// ListByUser returns all saved locations for one user.
func (r *LocationRepo) ListByUser(ctx context.Context, userID int64) ([]types.SavedLocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, lat, lon, aqi_limit FROM locations WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list locations", err)
	}
	defer rows.Close()

	var locations []types.SavedLocation
	for rows.Next() {
		var l types.SavedLocation
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Lat, &l.Lon, &l.AQILimit); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan location row", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read location rows", err)
	}

	return locations, nil
}

// GetByID fetches one saved location, returning not_found_location when
// absent.
func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*types.SavedLocation, error) {
	var l types.SavedLocation
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, lat, lon, aqi_limit FROM locations WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.UserID, &l.Name, &l.Lat, &l.Lon, &l.AQILimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation, "location not found", nil)
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch location", err)
	}
	return &l, nil
}
