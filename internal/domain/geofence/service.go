package geofence

import "context"

// AreaService defines business logic for geofence area management.
type AreaService interface {
	// CreateArea validates and persists a new area.
	CreateArea(ctx context.Context, req CreateAreaRequest) (AreaResponse, error)

	// GetArea retrieves a single area by ID.
	GetArea(ctx context.Context, id string) (AreaResponse, error)

	// ListAreas retrieves areas with filters (admin).
	ListAreas(ctx context.Context, filter AreaFilter) (ListAreasResponse, error)

	// UpdateArea changes descriptive metadata of an area.
	UpdateArea(ctx context.Context, req UpdateAreaRequest) (AreaResponse, error)

	// ActivateArea and DeactivateArea control the two-state lifecycle.
	ActivateArea(ctx context.Context, id string) error
	DeactivateArea(ctx context.Context, id string) error

	// CheckPoint evaluates containment for an arbitrary point, used by
	// admin tooling to verify an area before assigning it to sessions.
	CheckPoint(ctx context.Context, id string, lat, lng float64) (bool, error)
}
