package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/domain/enrollment"
	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/domain/user"
	"github.com/campushq/attendance-backend-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

type SessionServiceImpl struct {
	sessionRepo  session.Repository
	assignments  assignment.Registry
	geofenceRepo geofence.AreaRepository
	enrollments  enrollment.Lookup
	now          func() time.Time
}

func NewSessionService(
	sessionRepo session.Repository,
	assignments assignment.Registry,
	geofenceRepo geofence.AreaRepository,
	enrollments enrollment.Lookup,
) session.Service {
	return &SessionServiceImpl{
		sessionRepo:  sessionRepo,
		assignments:  assignments,
		geofenceRepo: geofenceRepo,
		enrollments:  enrollments,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start implements session.Service.
func (s *SessionServiceImpl) Start(ctx context.Context, actor user.Identity, req session.StartSessionRequest) (session.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	if actor.IsLecturer() && actor.ProfileID == "" {
		return session.SessionResponse{}, user.ErrMissingProfile
	}

	ca, err := s.assignments.GetByID(ctx, req.CourseAssignmentID)
	if err != nil {
		return session.SessionResponse{}, err
	}
	if !ca.IsActive {
		return session.SessionResponse{}, assignment.ErrAssignmentInactive
	}
	if actor.IsLecturer() && ca.LecturerID != actor.ProfileID {
		return session.SessionResponse{}, assignment.ErrNotAssignedToYou
	}

	area, err := s.geofenceRepo.GetByID(ctx, req.GeofenceAreaID)
	if err != nil {
		return session.SessionResponse{}, err
	}
	if !area.IsActive {
		return session.SessionResponse{}, geofence.ErrGeofenceInactive
	}

	// Snapshot taken once at start; never recomputed afterwards.
	expected, err := s.enrollments.Headcount(ctx, ca.CourseID, ca.SemesterID)
	if err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to snapshot expected students: %w", err)
	}

	lateThreshold := session.DefaultLateThresholdMinutes
	if req.LateThresholdMinutes != nil {
		lateThreshold = *req.LateThresholdMinutes
	}
	autoEnd := session.DefaultAutoEndMinutes
	if req.AutoEndMinutes != nil {
		autoEnd = *req.AutoEndMinutes
	}

	startedBy := actor.ProfileID
	if actor.IsAdmin() {
		startedBy = ca.LecturerID
	}

	newSession := session.Session{
		ID:                   uuid.Must(uuid.NewV7()).String(),
		CourseAssignmentID:   ca.ID,
		GeofenceAreaID:       area.ID,
		SessionName:          req.SessionName,
		Topic:                req.Topic,
		StartedBy:            startedBy,
		StartedAt:            s.now(),
		Status:               session.StatusActive,
		ExpectedStudents:     expected,
		LateThresholdMinutes: lateThreshold,
		AutoEndMinutes:       autoEnd,
		Notes:                req.Notes,
	}

	// The partial unique index on active sessions is the real guard
	// against a duplicate active session; Create maps the violation to
	// ErrActiveSessionExists.
	created, err := s.sessionRepo.Create(ctx, newSession)
	if err != nil {
		return session.SessionResponse{}, err
	}

	metrics.SessionsStartedTotal.Inc()
	slog.Info("Attendance session started",
		"session_id", created.ID,
		"course_assignment_id", created.CourseAssignmentID,
		"expected_students", created.ExpectedStudents)

	return session.MapToResponse(created), nil
}

// Get implements session.Service.
func (s *SessionServiceImpl) Get(ctx context.Context, actor user.Identity, id string) (session.SessionResponse, error) {
	sess, err := s.loadWithAutoEnd(ctx, id)
	if err != nil {
		return session.SessionResponse{}, err
	}

	if err := s.checkOwnership(actor, sess); err != nil {
		return session.SessionResponse{}, err
	}

	return session.MapToResponse(sess), nil
}

// End implements session.Service.
func (s *SessionServiceImpl) End(ctx context.Context, actor user.Identity, id string) (session.SessionResponse, error) {
	return s.transition(ctx, actor, id, session.StatusEnded, metrics.CauseEnded)
}

// Cancel implements session.Service.
func (s *SessionServiceImpl) Cancel(ctx context.Context, actor user.Identity, id string) (session.SessionResponse, error) {
	return s.transition(ctx, actor, id, session.StatusCancelled, metrics.CauseCancelled)
}

func (s *SessionServiceImpl) transition(ctx context.Context, actor user.Identity, id string, to session.Status, cause string) (session.SessionResponse, error) {
	sess, err := s.loadWithAutoEnd(ctx, id)
	if err != nil {
		return session.SessionResponse{}, err
	}

	if err := s.checkOwnership(actor, sess); err != nil {
		return session.SessionResponse{}, err
	}

	endedAt := s.now()
	if err := s.sessionRepo.Transition(ctx, sess.ID, to, endedAt); err != nil {
		return session.SessionResponse{}, err
	}

	sess.Status = to
	sess.EndedAt = &endedAt

	metrics.SessionsClosedTotal.WithLabelValues(cause).Inc()
	slog.Info("Attendance session closed", "session_id", sess.ID, "status", to)

	return session.MapToResponse(sess), nil
}

// Update implements session.Service.
func (s *SessionServiceImpl) Update(ctx context.Context, actor user.Identity, req session.UpdateSessionRequest) (session.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return session.SessionResponse{}, err
	}

	sess, err := s.loadWithAutoEnd(ctx, req.ID)
	if err != nil {
		return session.SessionResponse{}, err
	}

	if err := s.checkOwnership(actor, sess); err != nil {
		return session.SessionResponse{}, err
	}

	if sess.Status != session.StatusActive {
		return session.SessionResponse{}, session.ErrSessionNotActive
	}

	if req.SessionName != nil {
		sess.SessionName = req.SessionName
	}
	if req.Topic != nil {
		sess.Topic = req.Topic
	}
	if req.LateThresholdMinutes != nil {
		sess.LateThresholdMinutes = *req.LateThresholdMinutes
	}
	if req.AutoEndMinutes != nil {
		sess.AutoEndMinutes = *req.AutoEndMinutes
	}
	if req.Notes != nil {
		sess.Notes = req.Notes
	}

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return session.SessionResponse{}, fmt.Errorf("failed to update session: %w", err)
	}

	return session.MapToResponse(sess), nil
}

// List implements session.Service.
func (s *SessionServiceImpl) List(ctx context.Context, actor user.Identity, filter session.SessionFilter) (session.ListSessionsResponse, error) {
	// Lecturers only ever see their own sessions.
	if actor.IsLecturer() {
		filter.StartedBy = &actor.ProfileID
	}

	sessions, total, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return session.ListSessionsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]session.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, session.MapToResponse(sess))
	}

	return session.ListSessionsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Sessions:   responses,
	}, nil
}

// ListActive implements session.Service.
func (s *SessionServiceImpl) ListActive(ctx context.Context, actor user.Identity) ([]session.SessionResponse, error) {
	// Sweep overdue sessions first so the view never reports a session
	// as active past its auto-end deadline.
	if _, err := s.EndOverdueSessions(ctx); err != nil {
		return nil, err
	}

	var startedBy *string
	if actor.IsLecturer() {
		startedBy = &actor.ProfileID
	}

	sessions, err := s.sessionRepo.ListActive(ctx, startedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	responses := make([]session.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, session.MapToResponse(sess))
	}

	return responses, nil
}

// Recent implements session.Service.
func (s *SessionServiceImpl) Recent(ctx context.Context, actor user.Identity, lecturerID string, limit int) ([]session.SessionResponse, error) {
	if actor.IsLecturer() && actor.ProfileID != lecturerID {
		return nil, session.ErrNotSessionOwner
	}
	if limit <= 0 {
		limit = 10
	}

	sessions, err := s.sessionRepo.ListRecentByLecturer(ctx, lecturerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}

	responses := make([]session.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, session.MapToResponse(sess))
	}

	return responses, nil
}

// Statistics implements session.Service.
func (s *SessionServiceImpl) Statistics(ctx context.Context, actor user.Identity) (session.StatisticsResponse, error) {
	var startedBy *string
	if actor.IsLecturer() {
		startedBy = &actor.ProfileID
	}

	since := s.now().AddDate(0, 0, -30)
	stats, err := s.sessionRepo.Statistics(ctx, startedBy, since)
	if err != nil {
		return session.StatisticsResponse{}, fmt.Errorf("failed to aggregate session statistics: %w", err)
	}

	return stats, nil
}

// EndOverdueSessions implements session.Service.
func (s *SessionServiceImpl) EndOverdueSessions(ctx context.Context) (int64, error) {
	ended, err := s.sessionRepo.EndOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to end overdue sessions: %w", err)
	}

	if ended > 0 {
		metrics.SessionsClosedTotal.WithLabelValues(metrics.CauseAutoEnd).Add(float64(ended))
		slog.Info("Auto-ended overdue sessions", "count", ended)
	}

	return ended, nil
}

// loadWithAutoEnd fetches a session and applies the lazy auto-end
// transition before any caller gates on its status.
func (s *SessionServiceImpl) loadWithAutoEnd(ctx context.Context, id string) (session.Session, error) {
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
			// Someone else closed it first; reload for the truth.
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

func (s *SessionServiceImpl) checkOwnership(actor user.Identity, sess session.Session) error {
	if actor.IsLecturer() && sess.StartedBy != actor.ProfileID {
		return session.ErrNotSessionOwner
	}
	return nil
}
