package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionRepository struct {
	db *database.DB
}

// checked_in_students is always derived from attendance_records, never
// stored. A stored counter would need its own synchronization with the
// unique pair constraint.
const sessionColumns = `
	s.id, s.course_assignment_id, s.geofence_area_id, s.session_name, s.topic,
	s.started_by, s.started_at, s.ended_at, s.status,
	s.expected_students,
	(SELECT COUNT(*) FROM attendance_records ar WHERE ar.session_id = s.id) AS checked_in_students,
	s.late_threshold_minutes, s.auto_end_minutes, s.notes
`

// Create implements session.Repository. The partial unique index
// uq_sessions_one_active_per_assignment backs the one-active-session
// rule; a concurrent second insert loses here, not in the service.
func (r *sessionRepository) Create(ctx context.Context, s session.Session) (session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions (
			id, course_assignment_id, geofence_area_id, session_name, topic,
			started_by, started_at, status, expected_students,
			late_threshold_minutes, auto_end_minutes, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := q.Exec(ctx, query,
		s.ID,
		s.CourseAssignmentID,
		s.GeofenceAreaID,
		s.SessionName,
		s.Topic,
		s.StartedBy,
		s.StartedAt,
		s.Status,
		s.ExpectedStudents,
		s.LateThresholdMinutes,
		s.AutoEndMinutes,
		s.Notes,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_sessions_one_active_per_assignment") {
			return session.Session{}, session.ErrActiveSessionExists
		}
		return session.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return s, nil
}

// GetByID implements session.Repository.
func (r *sessionRepository) GetByID(ctx context.Context, id string) (session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions s WHERE s.id = $1`

	s, err := scanSession(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// Transition implements session.Repository. The WHERE status = 'active'
// clause makes a raced double transition affect zero rows instead of
// overwriting the first outcome.
func (r *sessionRepository) Transition(ctx context.Context, id string, to session.Status, endedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET status = $2, ended_at = $3
		WHERE id = $1 AND status = 'active'
	`

	tag, err := q.Exec(ctx, query, id, to, endedAt)
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attendance_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if !exists {
			return session.ErrSessionNotFound
		}
		return session.ErrSessionNotActive
	}

	return nil
}

// EndOverdue implements session.Repository. ended_at records the
// auto-end deadline each session actually expired at, not the sweep
// time.
func (r *sessionRepository) EndOverdue(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET status = 'ended',
			ended_at = started_at + (auto_end_minutes * INTERVAL '1 minute')
		WHERE status = 'active'
		  AND started_at + (auto_end_minutes * INTERVAL '1 minute') <= $1
	`

	tag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to end overdue sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Update implements session.Repository.
func (r *sessionRepository) Update(ctx context.Context, s session.Session) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET session_name = $2, topic = $3, late_threshold_minutes = $4,
			auto_end_minutes = $5, notes = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		s.ID,
		s.SessionName,
		s.Topic,
		s.LateThresholdMinutes,
		s.AutoEndMinutes,
		s.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

// List implements session.Repository.
func (r *sessionRepository) List(ctx context.Context, filter session.SessionFilter) ([]session.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.CourseAssignmentID != nil {
		conditions = append(conditions, fmt.Sprintf("s.course_assignment_id = $%d", argIdx))
		args = append(args, *filter.CourseAssignmentID)
		argIdx++
	}
	if filter.StartedBy != nil {
		conditions = append(conditions, fmt.Sprintf("s.started_by = $%d", argIdx))
		args = append(args, *filter.StartedBy)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_sessions s WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE ` + where + `
		ORDER BY s.started_at DESC
		LIMIT $` + fmt.Sprint(argIdx) + ` OFFSET $` + fmt.Sprint(argIdx+1)
	args = append(args, limit, offset)

	sessions, err := r.querySessions(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// ListActive implements session.Repository.
func (r *sessionRepository) ListActive(ctx context.Context, startedBy *string) ([]session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.status = 'active'`
	args := []interface{}{}

	if startedBy != nil {
		query += ` AND s.started_by = $1`
		args = append(args, *startedBy)
	}
	query += ` ORDER BY s.started_at DESC`

	return r.querySessions(ctx, q, query, args...)
}

// ListRecentByLecturer implements session.Repository.
func (r *sessionRepository) ListRecentByLecturer(ctx context.Context, lecturerID string, limit int) ([]session.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions s
		WHERE s.started_by = $1
		ORDER BY s.started_at DESC
		LIMIT $2`

	return r.querySessions(ctx, q, query, lecturerID, limit)
}

// Statistics implements session.Repository.
func (r *sessionRepository) Statistics(ctx context.Context, startedBy *string, since time.Time) (session.StatisticsResponse, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{since}
	if startedBy != nil {
		where = "s.started_by = $2"
		args = append(args, *startedBy)
	}

	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE s.started_at >= $1),
			   s.status
		FROM attendance_sessions s
		WHERE ` + where + `
		GROUP BY s.status
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return session.StatisticsResponse{}, fmt.Errorf("failed to aggregate session statistics: %w", err)
	}
	defer rows.Close()

	var stats session.StatisticsResponse
	for rows.Next() {
		var count, recent int64
		var status session.Status
		if err := rows.Scan(&count, &recent, &status); err != nil {
			return session.StatisticsResponse{}, fmt.Errorf("failed to scan session statistics: %w", err)
		}
		stats.TotalSessions += count
		stats.RecentSessions += recent
		stats.ByStatus = append(stats.ByStatus, session.StatusCount{Status: status, Count: count})
	}

	return stats, rows.Err()
}

func (r *sessionRepository) querySessions(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]session.Session, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (session.Session, error) {
	var s session.Session
	err := row.Scan(
		&s.ID, &s.CourseAssignmentID, &s.GeofenceAreaID, &s.SessionName, &s.Topic,
		&s.StartedBy, &s.StartedAt, &s.EndedAt, &s.Status,
		&s.ExpectedStudents, &s.CheckedInStudents,
		&s.LateThresholdMinutes, &s.AutoEndMinutes, &s.Notes,
	)
	return s, err
}

func NewSessionRepository(db *database.DB) session.Repository {
	return &sessionRepository{db: db}
}
