package geofence

import (
	"time"

	"github.com/campushq/attendance-backend-go/internal/pkg/geo"
)

// Kind selects which coordinate representation an area uses.
type Kind string

const (
	KindCircular    Kind = "circular"
	KindRectangular Kind = "rectangular"
)

func (k Kind) Valid() bool {
	return k == KindCircular || k == KindRectangular
}

// Area is one version of a named geographic region used to validate
// check-in locations. Circular areas carry a center and radius,
// rectangular areas carry four bounds; the other representation's
// fields are nil.
type Area struct {
	ID              string
	Name            string
	Description     *string
	Kind            Kind
	CenterLatitude  *float64
	CenterLongitude *float64
	RadiusMeters    *float64
	NorthLatitude   *float64
	SouthLatitude   *float64
	EastLongitude   *float64
	WestLongitude   *float64
	Building        *string
	Floor           *string
	Capacity        *int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Contains reports whether the point lies inside the area. Boundaries
// are inclusive: a point exactly at the radius, or exactly on a
// rectangle edge, is inside. Every location acceptance decision in the
// system routes through this method.
func (a Area) Contains(lat, lng float64) bool {
	switch a.Kind {
	case KindCircular:
		if a.CenterLatitude == nil || a.CenterLongitude == nil || a.RadiusMeters == nil {
			return false
		}
		distance := geo.HaversineDistance(lat, lng, *a.CenterLatitude, *a.CenterLongitude)
		return distance <= *a.RadiusMeters
	case KindRectangular:
		if a.NorthLatitude == nil || a.SouthLatitude == nil || a.EastLongitude == nil || a.WestLongitude == nil {
			return false
		}
		return lat >= *a.SouthLatitude && lat <= *a.NorthLatitude &&
			lng >= *a.WestLongitude && lng <= *a.EastLongitude
	}
	return false
}
