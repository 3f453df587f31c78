package geofence

import "context"

// AreaRepository defines data access methods for geofence areas.
type AreaRepository interface {
	// Create persists a new area and returns it with generated fields.
	Create(ctx context.Context, area Area) (Area, error)

	// GetByID retrieves an area regardless of active state.
	GetByID(ctx context.Context, id string) (Area, error)

	// List retrieves areas with filters and pagination.
	List(ctx context.Context, filter AreaFilter) ([]Area, int64, error)

	// Update changes descriptive metadata only; the coordinate
	// representation of an area version is immutable.
	Update(ctx context.Context, area Area) error

	// Activate and Deactivate are the only lifecycle transitions.
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}
