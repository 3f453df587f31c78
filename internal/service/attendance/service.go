package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/domain/attendance"
	"github.com/campushq/attendance-backend-go/internal/domain/enrollment"
	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/domain/user"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/campushq/attendance-backend-go/internal/pkg/metrics"
	"github.com/campushq/attendance-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AttendanceServiceImpl struct {
	recordRepo   attendance.RecordRepository
	overrideRepo attendance.OverrideRepository
	sessionRepo  session.Repository
	assignments  assignment.Registry
	geofenceRepo geofence.AreaRepository
	enrollments  enrollment.Lookup
	now          func() time.Time
	inTx         func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewAttendanceService(
	db *database.DB,
	recordRepo attendance.RecordRepository,
	overrideRepo attendance.OverrideRepository,
	sessionRepo session.Repository,
	assignments assignment.Registry,
	geofenceRepo geofence.AreaRepository,
	enrollments enrollment.Lookup,
) attendance.Service {
	return &AttendanceServiceImpl{
		recordRepo:   recordRepo,
		overrideRepo: overrideRepo,
		sessionRepo:  sessionRepo,
		assignments:  assignments,
		geofenceRepo: geofenceRepo,
		enrollments:  enrollments,
		now:          func() time.Time { return time.Now().UTC() },
		inTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

// CheckIn implements attendance.Service. Gates run in a fixed order and
// the first failing gate decides the error; later gates are not
// evaluated. Classification uses the server clock, never a
// client-supplied timestamp.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, actor user.Identity, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	if actor.ProfileID == "" {
		return attendance.RecordResponse{}, user.ErrMissingProfile
	}

	// Gate 1: session exists and is active, after the lazy auto-end
	// check has had its say.
	sess, err := s.loadWithAutoEnd(ctx, req.SessionID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if sess.Status != session.StatusActive {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeSessionInactive).Inc()
		return attendance.RecordResponse{}, session.ErrSessionNotActive
	}

	// Gate 2: the student is enrolled in the session's course for the
	// session's semester.
	ca, err := s.assignments.GetByID(ctx, sess.CourseAssignmentID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, actor.ProfileID, ca.CourseID, ca.SemesterID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeNotEnrolled).Inc()
		return attendance.RecordResponse{}, attendance.ErrNotEnrolled
	}

	// Gate 3: no earlier record for this session. Advisory only; the
	// unique constraint behind Create is what actually wins a race.
	existing, err := s.recordRepo.GetBySessionAndStudent(ctx, sess.ID, actor.ProfileID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check existing record: %w", err)
	}
	if existing != nil {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
	}

	// Gate 4: the reported location lies inside the session's geofence.
	area, err := s.geofenceRepo.GetByID(ctx, sess.GeofenceAreaID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if !area.Contains(req.Latitude, req.Longitude) {
		metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeOutsideGeofence).Inc()
		return attendance.RecordResponse{}, attendance.ErrOutsideGeofence
	}

	checkInTime := s.now()
	method := req.Method
	if method == "" {
		method = attendance.MethodGeofence
	}

	rec := attendance.Record{
		ID:                  uuid.Must(uuid.NewV7()).String(),
		SessionID:           sess.ID,
		StudentID:           actor.ProfileID,
		CheckInTime:         checkInTime,
		Status:              attendance.Classify(checkInTime, sess.StartedAt, sess.LateThresholdMinutes),
		Method:              method,
		FaceMatchConfidence: req.FaceMatchConfidence,
		LocationLatitude:    &req.Latitude,
		LocationLongitude:   &req.Longitude,
		DeviceInfo:          req.DeviceInfo,
		Notes:               req.Notes,
	}

	created, err := s.recordRepo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		}
		return attendance.RecordResponse{}, err
	}

	metrics.CheckInsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	slog.Info("Check-in accepted",
		"session_id", sess.ID,
		"student_id", actor.ProfileID,
		"status", created.Status)

	return attendance.MapRecordToResponse(created), nil
}

// Override implements attendance.Service. When a record exists its
// status is mutated and an audit entry appended; when none exists a
// manual record is created instead, with no audit entry, since there is
// no original status to preserve.
func (s *AttendanceServiceImpl) Override(ctx context.Context, actor user.Identity, req attendance.OverrideRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	sess, err := s.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if err := s.checkSessionOwnership(actor, sess); err != nil {
		return attendance.RecordResponse{}, err
	}

	existing, err := s.recordRepo.GetBySessionAndStudent(ctx, req.SessionID, req.StudentID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to load record: %w", err)
	}

	now := s.now()
	verifier := s.actorRef(actor)

	if existing == nil {
		ca, err := s.assignments.GetByID(ctx, sess.CourseAssignmentID)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		enrolled, err := s.enrollments.IsEnrolled(ctx, req.StudentID, ca.CourseID, ca.SemesterID)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			return attendance.RecordResponse{}, attendance.ErrNotEnrolled
		}

		rec := attendance.Record{
			ID:          uuid.Must(uuid.NewV7()).String(),
			SessionID:   req.SessionID,
			StudentID:   req.StudentID,
			CheckInTime: now,
			Status:      req.NewStatus,
			Method:      attendance.MethodManualOverride,
			IsVerified:  true,
			VerifiedBy:  &verifier,
			Notes:       req.Notes,
		}

		created, err := s.recordRepo.Create(ctx, rec)
		if err != nil {
			return attendance.RecordResponse{}, err
		}

		metrics.OverridesTotal.Inc()
		slog.Info("Attendance record created by override",
			"session_id", req.SessionID,
			"student_id", req.StudentID,
			"status", req.NewStatus)

		return attendance.MapRecordToResponse(created), nil
	}

	original := existing.Status

	existing.Status = req.NewStatus
	existing.Method = attendance.MethodManualOverride
	existing.IsVerified = true
	existing.VerifiedBy = &verifier
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	audit := attendance.Override{
		ID:             uuid.Must(uuid.NewV7()).String(),
		RecordID:       existing.ID,
		OriginalStatus: original,
		NewStatus:      req.NewStatus,
		Reason:         req.Reason,
		OverriddenBy:   verifier,
		OverriddenAt:   now,
		ApprovedBy:     req.ApprovedBy,
	}
	if req.ApprovedBy != nil {
		audit.ApprovedAt = &now
	}

	// The status change and its audit entry land together or not at all.
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.recordRepo.Update(ctx, *existing); err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		if _, err := s.overrideRepo.Create(ctx, audit); err != nil {
			return fmt.Errorf("failed to append override audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	metrics.OverridesTotal.Inc()
	slog.Info("Attendance record overridden",
		"record_id", existing.ID,
		"original_status", original,
		"new_status", req.NewStatus)

	return attendance.MapRecordToResponse(*existing), nil
}

// GetRecord implements attendance.Service.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, actor user.Identity, id string) (attendance.RecordResponse, error) {
	rec, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if actor.IsStudent() && rec.StudentID != actor.ProfileID {
		return attendance.RecordResponse{}, attendance.ErrNotRecordOwner
	}
	if actor.IsLecturer() {
		if err := s.checkRecordSessionOwnership(ctx, actor, rec); err != nil {
			return attendance.RecordResponse{}, err
		}
	}

	return attendance.MapRecordToResponse(rec), nil
}

// ListRecords implements attendance.Service.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, actor user.Identity, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if actor.IsStudent() {
		filter.StudentID = &actor.ProfileID
	}

	records, total, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.MapRecordToResponse(rec))
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Records:    responses,
	}, nil
}

// SessionRoster implements attendance.Service.
func (s *AttendanceServiceImpl) SessionRoster(ctx context.Context, actor user.Identity, sessionID string) ([]attendance.RecordResponse, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSessionOwnership(actor, sess); err != nil {
		return nil, err
	}

	records, err := s.recordRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.MapRecordToResponse(rec))
	}

	return responses, nil
}

// StudentHistory implements attendance.Service.
func (s *AttendanceServiceImpl) StudentHistory(ctx context.Context, actor user.Identity, studentID string, filter attendance.HistoryFilter) (attendance.ListRecordsResponse, error) {
	if actor.IsStudent() && actor.ProfileID != studentID {
		return attendance.ListRecordsResponse{}, attendance.ErrNotRecordOwner
	}

	records, total, err := s.recordRepo.ListByStudent(ctx, studentID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list student history: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.MapRecordToResponse(rec))
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Records:    responses,
	}, nil
}

// RecordOverrides implements attendance.Service.
func (s *AttendanceServiceImpl) RecordOverrides(ctx context.Context, actor user.Identity, recordID string) ([]attendance.OverrideResponse, error) {
	rec, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if actor.IsStudent() && rec.StudentID != actor.ProfileID {
		return nil, attendance.ErrNotRecordOwner
	}
	if actor.IsLecturer() {
		if err := s.checkRecordSessionOwnership(ctx, actor, rec); err != nil {
			return nil, err
		}
	}

	overrides, err := s.overrideRepo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	responses := make([]attendance.OverrideResponse, 0, len(overrides))
	for _, o := range overrides {
		responses = append(responses, attendance.MapOverrideToResponse(o))
	}

	return responses, nil
}

// Statistics implements attendance.Service.
func (s *AttendanceServiceImpl) Statistics(ctx context.Context, actor user.Identity) (attendance.StatisticsResponse, error) {
	var lecturerID *string
	if actor.IsLecturer() {
		lecturerID = &actor.ProfileID
	}

	stats, err := s.recordRepo.Statistics(ctx, lecturerID)
	if err != nil {
		return attendance.StatisticsResponse{}, fmt.Errorf("failed to aggregate record statistics: %w", err)
	}

	return stats, nil
}

// loadWithAutoEnd fetches a session and applies the lazy auto-end
// transition so no gate ever sees a stale active status.
func (s *AttendanceServiceImpl) loadWithAutoEnd(ctx context.Context, id string) (session.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return session.Session{}, err
	}

	if sess.AutoEndDue(s.now()) {
		deadline := sess.AutoEndDeadline()
		err := s.sessionRepo.Transition(ctx, sess.ID, session.StatusEnded, deadline)
		switch {
		case err == nil:
			sess.Status = session.StatusEnded
			sess.EndedAt = &deadline
			metrics.SessionsClosedTotal.WithLabelValues(metrics.CauseAutoEnd).Inc()
		case errors.Is(err, session.ErrSessionNotActive):
			sess, err = s.sessionRepo.GetByID(ctx, id)
			if err != nil {
				return session.Session{}, err
			}
		default:
			return session.Session{}, err
		}
	}

	return sess, nil
}

func (s *AttendanceServiceImpl) checkSessionOwnership(actor user.Identity, sess session.Session) error {
	if actor.IsLecturer() && sess.StartedBy != actor.ProfileID {
		return session.ErrNotSessionOwner
	}
	return nil
}

func (s *AttendanceServiceImpl) checkRecordSessionOwnership(ctx context.Context, actor user.Identity, rec attendance.Record) error {
	sess, err := s.sessionRepo.GetByID(ctx, rec.SessionID)
	if err != nil {
		return err
	}
	return s.checkSessionOwnership(actor, sess)
}

func (s *AttendanceServiceImpl) actorRef(actor user.Identity) string {
	if actor.ProfileID != "" {
		return actor.ProfileID
	}
	return actor.UserID
}
