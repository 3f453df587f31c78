package postgresql

import (
	"context"
	"fmt"

	"github.com/campushq/attendance-backend-go/internal/domain/enrollment"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
)

type enrollmentLookup struct {
	db *database.DB
}

// IsEnrolled implements enrollment.Lookup.
func (r *enrollmentLookup) IsEnrolled(ctx context.Context, studentID, courseID, semesterID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM student_enrollments
			WHERE student_id = $1
			  AND course_id = $2
			  AND semester_id = $3
			  AND status = 'enrolled'
		)
	`

	var enrolled bool
	if err := q.QueryRow(ctx, query, studentID, courseID, semesterID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return enrolled, nil
}

// Headcount implements enrollment.Lookup.
func (r *enrollmentLookup) Headcount(ctx context.Context, courseID, semesterID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM student_enrollments
		WHERE course_id = $1
		  AND semester_id = $2
		  AND status = 'enrolled'
	`

	var count int
	if err := q.QueryRow(ctx, query, courseID, semesterID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return count, nil
}

func NewEnrollmentLookup(db *database.DB) enrollment.Lookup {
	return &enrollmentLookup{db: db}
}
