package geofence

import (
	"time"

	"github.com/campushq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// GEOFENCE DTOs
// ========================================

type CreateAreaRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Kind            Kind     `json:"kind"`
	CenterLatitude  *float64 `json:"center_latitude"`
	CenterLongitude *float64 `json:"center_longitude"`
	RadiusMeters    *float64 `json:"radius_meters"`
	NorthLatitude   *float64 `json:"north_latitude"`
	SouthLatitude   *float64 `json:"south_latitude"`
	EastLongitude   *float64 `json:"east_longitude"`
	WestLongitude   *float64 `json:"west_longitude"`
	Building        *string  `json:"building"`
	Floor           *string  `json:"floor"`
	Capacity        *int     `json:"capacity"`
}

func (r *CreateAreaRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !r.Kind.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be 'circular' or 'rectangular'",
		})
		return errs
	}

	switch r.Kind {
	case KindCircular:
		errs = append(errs, r.validateCircular()...)
	case KindRectangular:
		errs = append(errs, r.validateRectangular()...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *CreateAreaRequest) validateCircular() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if r.CenterLatitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "center_latitude",
			Message: "center_latitude is required for circular areas",
		})
	} else if !validator.IsValidLatitude(*r.CenterLatitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_latitude",
			Message: "center_latitude must be between -90 and 90",
		})
	}

	if r.CenterLongitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "center_longitude",
			Message: "center_longitude is required for circular areas",
		})
	} else if !validator.IsValidLongitude(*r.CenterLongitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_longitude",
			Message: "center_longitude must be between -180 and 180",
		})
	}

	if r.RadiusMeters == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters is required for circular areas",
		})
	} else if *r.RadiusMeters <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than zero",
		})
	}

	return errs
}

func (r *CreateAreaRequest) validateRectangular() validator.ValidationErrors {
	var errs validator.ValidationErrors

	bounds := []struct {
		field string
		value *float64
		isLat bool
	}{
		{"north_latitude", r.NorthLatitude, true},
		{"south_latitude", r.SouthLatitude, true},
		{"east_longitude", r.EastLongitude, false},
		{"west_longitude", r.WestLongitude, false},
	}

	missing := false
	for _, b := range bounds {
		if b.value == nil {
			missing = true
			errs = append(errs, validator.ValidationError{
				Field:   b.field,
				Message: b.field + " is required for rectangular areas",
			})
			continue
		}
		if b.isLat && !validator.IsValidLatitude(*b.value) {
			errs = append(errs, validator.ValidationError{
				Field:   b.field,
				Message: b.field + " must be between -90 and 90",
			})
		}
		if !b.isLat && !validator.IsValidLongitude(*b.value) {
			errs = append(errs, validator.ValidationError{
				Field:   b.field,
				Message: b.field + " must be between -180 and 180",
			})
		}
	}
	if missing {
		return errs
	}

	if *r.NorthLatitude <= *r.SouthLatitude {
		errs = append(errs, validator.ValidationError{
			Field:   "north_latitude",
			Message: "north_latitude must be strictly greater than south_latitude",
		})
	}
	if *r.EastLongitude <= *r.WestLongitude {
		errs = append(errs, validator.ValidationError{
			Field:   "east_longitude",
			Message: "east_longitude must be strictly greater than west_longitude",
		})
	}

	return errs
}

type UpdateAreaRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Building    *string `json:"building"`
	Floor       *string `json:"floor"`
	Capacity    *int    `json:"capacity"`
}

func (r *UpdateAreaRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "capacity",
			Message: "capacity must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AreaFilter struct {
	Kind     *string
	IsActive *bool
	Page     int
	Limit    int
}

type AreaResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Kind            Kind     `json:"kind"`
	CenterLatitude  *float64 `json:"center_latitude,omitempty"`
	CenterLongitude *float64 `json:"center_longitude,omitempty"`
	RadiusMeters    *float64 `json:"radius_meters,omitempty"`
	NorthLatitude   *float64 `json:"north_latitude,omitempty"`
	SouthLatitude   *float64 `json:"south_latitude,omitempty"`
	EastLongitude   *float64 `json:"east_longitude,omitempty"`
	WestLongitude   *float64 `json:"west_longitude,omitempty"`
	Building        *string  `json:"building"`
	Floor           *string  `json:"floor"`
	Capacity        *int     `json:"capacity"`
	IsActive        bool     `json:"is_active"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type ListAreasResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Areas      []AreaResponse `json:"areas"`
}

// MapToResponse converts an Area entity to its API shape.
func MapToResponse(a Area) AreaResponse {
	return AreaResponse{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Kind:            a.Kind,
		CenterLatitude:  a.CenterLatitude,
		CenterLongitude: a.CenterLongitude,
		RadiusMeters:    a.RadiusMeters,
		NorthLatitude:   a.NorthLatitude,
		SouthLatitude:   a.SouthLatitude,
		EastLongitude:   a.EastLongitude,
		WestLongitude:   a.WestLongitude,
		Building:        a.Building,
		Floor:           a.Floor,
		Capacity:        a.Capacity,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
