package enrollment

import "context"

// Lookup answers membership questions against the enrollment registry.
// Enrollment management itself lives in another service; check-in only
// needs these two reads.
type Lookup interface {
	// IsEnrolled reports whether the student holds an active
	// enrollment for the course in the given semester.
	IsEnrolled(ctx context.Context, studentID, courseID, semesterID string) (bool, error)

	// Headcount counts active enrollments for the course/semester,
	// used to snapshot expected_students when a session starts.
	Headcount(ctx context.Context, courseID, semesterID string) (int, error)
}
