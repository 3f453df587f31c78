package response

import (
	"errors"
	"net/http"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/domain/attendance"
	"github.com/campushq/attendance-backend-go/internal/domain/auth"
	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/domain/user"
	"github.com/campushq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")

	// Access errors
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrLecturerAccessRequired),
		errors.Is(err, user.ErrStudentAccessRequired),
		errors.Is(err, user.ErrMissingProfile):
		Forbidden(w, err.Error())

	// Geofence domain errors
	case errors.Is(err, geofence.ErrGeofenceNotFound):
		NotFound(w, "Geofence area not found")
	case errors.Is(err, geofence.ErrGeofenceInactive):
		BadRequest(w, "Geofence area is not active", nil)
	case errors.Is(err, geofence.ErrGeofenceInUse):
		Conflict(w, "Geofence area is referenced by sessions")

	// Assignment domain errors
	case errors.Is(err, assignment.ErrAssignmentNotFound):
		NotFound(w, "Course assignment not found")
	case errors.Is(err, assignment.ErrAssignmentInactive):
		BadRequest(w, "Course assignment is not active", nil)
	case errors.Is(err, assignment.ErrNotAssignedToYou):
		Forbidden(w, "Course assignment belongs to another lecturer")

	// Session domain errors
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Attendance session not found")
	case errors.Is(err, session.ErrSessionNotActive):
		BadRequest(w, "Attendance session is not active", nil)
	case errors.Is(err, session.ErrActiveSessionExists):
		Conflict(w, "An active session already exists for this course assignment")
	case errors.Is(err, session.ErrNotSessionOwner):
		Forbidden(w, "Session was started by another lecturer")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Student has already checked in for this session")
	case errors.Is(err, attendance.ErrOutsideGeofence):
		BadRequest(w, "Location is outside the session geofence", nil)
	case errors.Is(err, attendance.ErrNotEnrolled):
		Forbidden(w, "Student is not enrolled in this course")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotRecordOwner):
		Forbidden(w, "Attendance record belongs to another student")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
