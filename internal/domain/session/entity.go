package session

import "time"

// Status is the lifecycle state of an attendance session. Active is the
// only initial state; ended and cancelled are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusEnded, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// Session is one live lecture instance during which check-ins are
// accepted. ExpectedStudents is a snapshot taken at start and never
// recomputed; CheckedInStudents is derived by counting records.
type Session struct {
	ID                   string
	CourseAssignmentID   string
	GeofenceAreaID       string
	SessionName          *string
	Topic                *string
	StartedBy            string
	StartedAt            time.Time
	EndedAt              *time.Time
	Status               Status
	ExpectedStudents     int
	CheckedInStudents    int
	LateThresholdMinutes int
	AutoEndMinutes       int
	Notes                *string
}

// LateDeadline is the instant after which a check-in classifies as late.
func (s Session) LateDeadline() time.Time {
	return s.StartedAt.Add(time.Duration(s.LateThresholdMinutes) * time.Minute)
}

// AutoEndDeadline is the instant at which the session ends on its own.
func (s Session) AutoEndDeadline() time.Time {
	return s.StartedAt.Add(time.Duration(s.AutoEndMinutes) * time.Minute)
}

// AutoEndDue reports whether an active session has outlived its
// auto-end window. Evaluated lazily on every access that gates on the
// active status, and by the periodic sweep.
func (s Session) AutoEndDue(now time.Time) bool {
	return s.Status == StatusActive && !now.Before(s.AutoEndDeadline())
}
