package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushq/attendance-backend-go/internal/domain/attendance"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRecordRepository struct {
	db *database.DB
}

const recordColumns = `
	id, session_id, student_id, check_in_time, attendance_status, check_in_method,
	face_match_confidence, location_latitude, location_longitude, device_info,
	is_verified, verified_by, notes, created_at
`

// Create implements attendance.RecordRepository. The unique constraint
// uq_records_session_student makes the insert the authoritative
// duplicate check; the service's prior read is advisory only.
func (r *attendanceRecordRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, session_id, student_id, check_in_time, attendance_status,
			check_in_method, face_match_confidence, location_latitude,
			location_longitude, device_info, is_verified, verified_by, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.SessionID,
		rec.StudentID,
		rec.CheckInTime,
		rec.Status,
		rec.Method,
		rec.FaceMatchConfidence,
		rec.LocationLatitude,
		rec.LocationLongitude,
		rec.DeviceInfo,
		rec.IsVerified,
		rec.VerifiedBy,
		rec.Notes,
	).Scan(&rec.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "uq_records_session_student") {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.RecordRepository.
func (r *attendanceRecordRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return rec, nil
}

// GetBySessionAndStudent implements attendance.RecordRepository.
func (r *attendanceRecordRepository) GetBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2`

	rec, err := scanRecord(q.QueryRow(ctx, query, sessionID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET attendance_status = $2, check_in_method = $3, is_verified = $4,
			verified_by = $5, notes = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.Status,
		rec.Method,
		rec.IsVerified,
		rec.VerifiedBy,
		rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// List implements attendance.RecordRepository.
func (r *attendanceRecordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.SessionID != nil {
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", argIdx))
		args = append(args, *filter.SessionID)
		argIdx++
	}
	if filter.StudentID != nil {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", argIdx))
		args = append(args, *filter.StudentID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("attendance_status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
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

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE ` + where + `
		ORDER BY check_in_time DESC
		LIMIT $` + fmt.Sprint(argIdx) + ` OFFSET $` + fmt.Sprint(argIdx+1)
	args = append(args, limit, offset)

	records, err := r.queryRecords(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListBySession implements attendance.RecordRepository.
func (r *attendanceRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY check_in_time ASC`

	return r.queryRecords(ctx, q, query, sessionID)
}

// ListByStudent implements attendance.RecordRepository.
func (r *attendanceRecordRepository) ListByStudent(ctx context.Context, studentID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"ar.student_id = $1"}
	args := []interface{}{studentID}
	argIdx := 2

	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf(`ar.session_id IN (
			SELECT s.id FROM attendance_sessions s
			JOIN course_assignments ca ON ca.id = s.course_assignment_id
			WHERE ca.course_id = $%d
		)`, argIdx))
		args = append(args, *filter.CourseID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records ar WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count student history: %w", err)
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

	query := `SELECT ar.id, ar.session_id, ar.student_id, ar.check_in_time, ar.attendance_status,
			ar.check_in_method, ar.face_match_confidence, ar.location_latitude, ar.location_longitude,
			ar.device_info, ar.is_verified, ar.verified_by, ar.notes, ar.created_at
		FROM attendance_records ar
		WHERE ` + where + `
		ORDER BY ar.check_in_time DESC
		LIMIT $` + fmt.Sprint(argIdx) + ` OFFSET $` + fmt.Sprint(argIdx+1)
	args = append(args, limit, offset)

	records, err := r.queryRecords(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Statistics implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Statistics(ctx context.Context, lecturerID *string) (attendance.StatisticsResponse, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	if lecturerID != nil {
		where = `ar.session_id IN (SELECT id FROM attendance_sessions WHERE started_by = $1)`
		args = append(args, *lecturerID)
	}

	query := `
		SELECT ar.attendance_status, ar.check_in_method, COUNT(*)
		FROM attendance_records ar
		WHERE ` + where + `
		GROUP BY ar.attendance_status, ar.check_in_method
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return attendance.StatisticsResponse{}, fmt.Errorf("failed to aggregate record statistics: %w", err)
	}
	defer rows.Close()

	var stats attendance.StatisticsResponse
	byStatus := map[attendance.Status]int64{}
	byMethod := map[attendance.Method]int64{}

	for rows.Next() {
		var status attendance.Status
		var method attendance.Method
		var count int64
		if err := rows.Scan(&status, &method, &count); err != nil {
			return attendance.StatisticsResponse{}, fmt.Errorf("failed to scan record statistics: %w", err)
		}
		stats.TotalRecords += count
		byStatus[status] += count
		byMethod[method] += count
	}
	if err := rows.Err(); err != nil {
		return attendance.StatisticsResponse{}, err
	}

	for status, count := range byStatus {
		stats.ByStatus = append(stats.ByStatus, attendance.StatusCount{Status: status, Count: count})
	}
	for method, count := range byMethod {
		stats.ByMethod = append(stats.ByMethod, attendance.MethodCount{Method: method, Count: count})
	}

	return stats, nil
}

func (r *attendanceRecordRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.StudentID, &rec.CheckInTime, &rec.Status,
		&rec.Method, &rec.FaceMatchConfidence, &rec.LocationLatitude,
		&rec.LocationLongitude, &rec.DeviceInfo, &rec.IsVerified,
		&rec.VerifiedBy, &rec.Notes, &rec.CreatedAt,
	)
	return rec, err
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}
