package assignment

import "time"

// CourseAssignment binds a lecturer to a course for a semester. It is
// managed elsewhere; this service consumes it to resolve session
// ownership and the course/semester an enrollment check applies to.
type CourseAssignment struct {
	ID             string
	LecturerID     string
	CourseID       string
	SemesterID     string
	GeofenceAreaID *string
	AssignedBy     string
	AssignedAt     time.Time
	IsActive       bool
}
