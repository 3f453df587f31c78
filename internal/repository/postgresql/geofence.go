package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geofenceAreaRepository struct {
	db *database.DB
}

const geofenceAreaColumns = `
	id, name, description, kind,
	center_latitude, center_longitude, radius_meters,
	north_latitude, south_latitude, east_longitude, west_longitude,
	building, floor, capacity, is_active, created_at, updated_at
`

// Create implements geofence.AreaRepository.
func (r *geofenceAreaRepository) Create(ctx context.Context, area geofence.Area) (geofence.Area, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_areas (
			id, name, description, kind,
			center_latitude, center_longitude, radius_meters,
			north_latitude, south_latitude, east_longitude, west_longitude,
			building, floor, capacity, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		area.ID,
		area.Name,
		area.Description,
		area.Kind,
		area.CenterLatitude,
		area.CenterLongitude,
		area.RadiusMeters,
		area.NorthLatitude,
		area.SouthLatitude,
		area.EastLongitude,
		area.WestLongitude,
		area.Building,
		area.Floor,
		area.Capacity,
		area.IsActive,
		area.CreatedAt,
		area.UpdatedAt,
	).Scan(&area.CreatedAt, &area.UpdatedAt)

	if err != nil {
		return geofence.Area{}, fmt.Errorf("failed to create geofence area: %w", err)
	}

	return area, nil
}

// GetByID implements geofence.AreaRepository.
func (r *geofenceAreaRepository) GetByID(ctx context.Context, id string) (geofence.Area, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + geofenceAreaColumns + ` FROM geofence_areas WHERE id = $1`

	area, err := scanGeofenceArea(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.Area{}, geofence.ErrGeofenceNotFound
		}
		return geofence.Area{}, fmt.Errorf("failed to get geofence area: %w", err)
	}

	return area, nil
}

// List implements geofence.AreaRepository.
func (r *geofenceAreaRepository) List(ctx context.Context, filter geofence.AreaFilter) ([]geofence.Area, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *filter.Kind)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM geofence_areas WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count geofence areas: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + geofenceAreaColumns + `
		FROM geofence_areas
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprint(argIdx) + ` OFFSET $` + fmt.Sprint(argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list geofence areas: %w", err)
	}
	defer rows.Close()

	var areas []geofence.Area
	for rows.Next() {
		area, err := scanGeofenceArea(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan geofence area: %w", err)
		}
		areas = append(areas, area)
	}

	return areas, total, rows.Err()
}

// Update implements geofence.AreaRepository. Coordinate columns are
// deliberately absent from the statement.
func (r *geofenceAreaRepository) Update(ctx context.Context, area geofence.Area) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE geofence_areas
		SET name = $2, description = $3, building = $4, floor = $5,
			capacity = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		area.ID,
		area.Name,
		area.Description,
		area.Building,
		area.Floor,
		area.Capacity,
		area.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update geofence area: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrGeofenceNotFound
	}

	return nil
}

// Activate implements geofence.AreaRepository.
func (r *geofenceAreaRepository) Activate(ctx context.Context, id string) error {
	return r.setActive(ctx, id, true)
}

// Deactivate implements geofence.AreaRepository.
func (r *geofenceAreaRepository) Deactivate(ctx context.Context, id string) error {
	return r.setActive(ctx, id, false)
}

func (r *geofenceAreaRepository) setActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE geofence_areas SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to change geofence area state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return geofence.ErrGeofenceNotFound
	}

	return nil
}

func scanGeofenceArea(row pgx.Row) (geofence.Area, error) {
	var area geofence.Area
	err := row.Scan(
		&area.ID, &area.Name, &area.Description, &area.Kind,
		&area.CenterLatitude, &area.CenterLongitude, &area.RadiusMeters,
		&area.NorthLatitude, &area.SouthLatitude, &area.EastLongitude, &area.WestLongitude,
		&area.Building, &area.Floor, &area.Capacity, &area.IsActive,
		&area.CreatedAt, &area.UpdatedAt,
	)
	return area, err
}

func NewGeofenceAreaRepository(db *database.DB) geofence.AreaRepository {
	return &geofenceAreaRepository{db: db}
}
