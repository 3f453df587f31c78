package geofence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/google/uuid"
)

type GeofenceServiceImpl struct {
	areaRepo geofence.AreaRepository
	now      func() time.Time
}

func NewGeofenceService(areaRepo geofence.AreaRepository) geofence.AreaService {
	return &GeofenceServiceImpl{
		areaRepo: areaRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateArea implements geofence.AreaService.
func (s *GeofenceServiceImpl) CreateArea(ctx context.Context, req geofence.CreateAreaRequest) (geofence.AreaResponse, error) {
	if err := req.Validate(); err != nil {
		return geofence.AreaResponse{}, err
	}

	now := s.now()
	area := geofence.Area{
		ID:              uuid.Must(uuid.NewV7()).String(),
		Name:            req.Name,
		Description:     req.Description,
		Kind:            req.Kind,
		CenterLatitude:  req.CenterLatitude,
		CenterLongitude: req.CenterLongitude,
		RadiusMeters:    req.RadiusMeters,
		NorthLatitude:   req.NorthLatitude,
		SouthLatitude:   req.SouthLatitude,
		EastLongitude:   req.EastLongitude,
		WestLongitude:   req.WestLongitude,
		Building:        req.Building,
		Floor:           req.Floor,
		Capacity:        req.Capacity,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.areaRepo.Create(ctx, area)
	if err != nil {
		return geofence.AreaResponse{}, fmt.Errorf("failed to create geofence area: %w", err)
	}

	slog.Info("Geofence area created", "area_id", created.ID, "kind", created.Kind)

	return geofence.MapToResponse(created), nil
}

// GetArea implements geofence.AreaService.
func (s *GeofenceServiceImpl) GetArea(ctx context.Context, id string) (geofence.AreaResponse, error) {
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		return geofence.AreaResponse{}, err
	}

	return geofence.MapToResponse(area), nil
}

// ListAreas implements geofence.AreaService.
func (s *GeofenceServiceImpl) ListAreas(ctx context.Context, filter geofence.AreaFilter) (geofence.ListAreasResponse, error) {
	areas, total, err := s.areaRepo.List(ctx, filter)
	if err != nil {
		return geofence.ListAreasResponse{}, fmt.Errorf("failed to list geofence areas: %w", err)
	}

	responses := make([]geofence.AreaResponse, 0, len(areas))
	for _, area := range areas {
		responses = append(responses, geofence.MapToResponse(area))
	}

	return geofence.ListAreasResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Areas:      responses,
	}, nil
}

// UpdateArea implements geofence.AreaService. Only descriptive metadata
// changes; an area's coordinates are immutable after creation so past
// acceptance decisions stay explainable.
func (s *GeofenceServiceImpl) UpdateArea(ctx context.Context, req geofence.UpdateAreaRequest) (geofence.AreaResponse, error) {
	if err := req.Validate(); err != nil {
		return geofence.AreaResponse{}, err
	}

	area, err := s.areaRepo.GetByID(ctx, req.ID)
	if err != nil {
		return geofence.AreaResponse{}, err
	}

	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.Description != nil {
		area.Description = req.Description
	}
	if req.Building != nil {
		area.Building = req.Building
	}
	if req.Floor != nil {
		area.Floor = req.Floor
	}
	if req.Capacity != nil {
		area.Capacity = req.Capacity
	}
	area.UpdatedAt = s.now()

	if err := s.areaRepo.Update(ctx, area); err != nil {
		return geofence.AreaResponse{}, fmt.Errorf("failed to update geofence area: %w", err)
	}

	return geofence.MapToResponse(area), nil
}

// ActivateArea implements geofence.AreaService.
func (s *GeofenceServiceImpl) ActivateArea(ctx context.Context, id string) error {
	if _, err := s.areaRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.areaRepo.Activate(ctx, id)
}

// DeactivateArea implements geofence.AreaService. Deactivation only
// blocks new sessions from referencing the area; sessions already
// running keep validating against it.
func (s *GeofenceServiceImpl) DeactivateArea(ctx context.Context, id string) error {
	if _, err := s.areaRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.areaRepo.Deactivate(ctx, id)
}

// CheckPoint implements geofence.AreaService.
func (s *GeofenceServiceImpl) CheckPoint(ctx context.Context, id string, lat, lng float64) (bool, error) {
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	return area.Contains(lat, lng), nil
}
