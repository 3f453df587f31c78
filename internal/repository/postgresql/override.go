package postgresql

import (
	"context"
	"fmt"

	"github.com/campushq/attendance-backend-go/internal/domain/attendance"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
)

// attendanceOverrideRepository is append-only by construction: the type
// exposes no update or delete statements.
type attendanceOverrideRepository struct {
	db *database.DB
}

// Create implements attendance.OverrideRepository.
func (r *attendanceOverrideRepository) Create(ctx context.Context, o attendance.Override) (attendance.Override, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_overrides (
			id, attendance_record_id, original_status, new_status,
			override_reason, overridden_by, overridden_at, approved_by, approved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := q.Exec(ctx, query,
		o.ID,
		o.RecordID,
		o.OriginalStatus,
		o.NewStatus,
		o.Reason,
		o.OverriddenBy,
		o.OverriddenAt,
		o.ApprovedBy,
		o.ApprovedAt,
	)
	if err != nil {
		return attendance.Override{}, fmt.Errorf("failed to create attendance override: %w", err)
	}

	return o, nil
}

// ListByRecord implements attendance.OverrideRepository.
func (r *attendanceOverrideRepository) ListByRecord(ctx context.Context, recordID string) ([]attendance.Override, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, attendance_record_id, original_status, new_status,
			   override_reason, overridden_by, overridden_at, approved_by, approved_at
		FROM attendance_overrides
		WHERE attendance_record_id = $1
		ORDER BY overridden_at ASC
	`

	rows, err := q.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance overrides: %w", err)
	}
	defer rows.Close()

	var overrides []attendance.Override
	for rows.Next() {
		var o attendance.Override
		err := rows.Scan(
			&o.ID, &o.RecordID, &o.OriginalStatus, &o.NewStatus,
			&o.Reason, &o.OverriddenBy, &o.OverriddenAt, &o.ApprovedBy, &o.ApprovedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance override: %w", err)
		}
		overrides = append(overrides, o)
	}

	return overrides, rows.Err()
}

func NewAttendanceOverrideRepository(db *database.DB) attendance.OverrideRepository {
	return &attendanceOverrideRepository{db: db}
}
