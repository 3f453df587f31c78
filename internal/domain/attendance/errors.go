package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn = errors.New("attendance already recorded for this session")
	ErrOutsideGeofence  = errors.New("you are not within the required location for attendance")
	ErrNotEnrolled      = errors.New("student is not enrolled in this course")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrNotRecordOwner = errors.New("unauthorized to access this attendance record")
)
