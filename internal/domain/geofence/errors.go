package geofence

import "errors"

var (
	ErrGeofenceNotFound = errors.New("geofence area not found")
	ErrGeofenceInactive = errors.New("geofence area is deactivated")
	ErrGeofenceInUse    = errors.New("geofence area is referenced by active sessions")
)
