package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type courseAssignmentRegistry struct {
	db *database.DB
}

// GetByID implements assignment.Registry.
func (r *courseAssignmentRegistry) GetByID(ctx context.Context, id string) (assignment.CourseAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, lecturer_id, course_id, semester_id, geofence_area_id,
			   assigned_by, assigned_at, is_active
		FROM course_assignments
		WHERE id = $1
	`

	var ca assignment.CourseAssignment
	err := q.QueryRow(ctx, query, id).Scan(
		&ca.ID, &ca.LecturerID, &ca.CourseID, &ca.SemesterID, &ca.GeofenceAreaID,
		&ca.AssignedBy, &ca.AssignedAt, &ca.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.CourseAssignment{}, assignment.ErrAssignmentNotFound
		}
		return assignment.CourseAssignment{}, fmt.Errorf("failed to get course assignment: %w", err)
	}

	return ca, nil
}

func NewCourseAssignmentRegistry(db *database.DB) assignment.Registry {
	return &courseAssignmentRegistry{db: db}
}
