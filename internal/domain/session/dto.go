package session

import (
	"time"

	"github.com/campushq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// SESSION DTOs
// ========================================

const (
	DefaultLateThresholdMinutes = 15
	DefaultAutoEndMinutes       = 120
)

type StartSessionRequest struct {
	CourseAssignmentID   string  `json:"course_assignment_id"`
	GeofenceAreaID       string  `json:"geofence_area_id"`
	SessionName          *string `json:"session_name"`
	Topic                *string `json:"topic"`
	LateThresholdMinutes *int    `json:"late_threshold_minutes"`
	AutoEndMinutes       *int    `json:"auto_end_minutes"`
	Notes                *string `json:"notes"`
}

func (r *StartSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CourseAssignmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "course_assignment_id",
			Message: "course_assignment_id is required",
		})
	}
	if validator.IsEmpty(r.GeofenceAreaID) {
		errs = append(errs, validator.ValidationError{
			Field:   "geofence_area_id",
			Message: "geofence_area_id is required",
		})
	}
	if r.LateThresholdMinutes != nil && *r.LateThresholdMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_threshold_minutes",
			Message: "late_threshold_minutes must not be negative",
		})
	}
	if r.AutoEndMinutes != nil && *r.AutoEndMinutes <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "auto_end_minutes",
			Message: "auto_end_minutes must be greater than zero",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateSessionRequest struct {
	ID                   string  `json:"-"`
	SessionName          *string `json:"session_name"`
	Topic                *string `json:"topic"`
	LateThresholdMinutes *int    `json:"late_threshold_minutes"`
	AutoEndMinutes       *int    `json:"auto_end_minutes"`
	Notes                *string `json:"notes"`
}

func (r *UpdateSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LateThresholdMinutes != nil && *r.LateThresholdMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_threshold_minutes",
			Message: "late_threshold_minutes must not be negative",
		})
	}
	if r.AutoEndMinutes != nil && *r.AutoEndMinutes <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "auto_end_minutes",
			Message: "auto_end_minutes must be greater than zero",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionFilter struct {
	CourseAssignmentID *string
	StartedBy          *string
	Status             *string
	Page               int
	Limit              int
}

type SessionResponse struct {
	ID                   string  `json:"id"`
	CourseAssignmentID   string  `json:"course_assignment_id"`
	GeofenceAreaID       string  `json:"geofence_area_id"`
	SessionName          *string `json:"session_name"`
	Topic                *string `json:"topic"`
	StartedBy            string  `json:"started_by"`
	StartedAt            string  `json:"started_at"`
	EndedAt              *string `json:"ended_at"`
	Status               Status  `json:"status"`
	ExpectedStudents     int     `json:"expected_students"`
	CheckedInStudents    int     `json:"checked_in_students"`
	LateThresholdMinutes int     `json:"late_threshold_minutes"`
	AutoEndMinutes       int     `json:"auto_end_minutes"`
	Notes                *string `json:"notes"`
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Sessions   []SessionResponse `json:"sessions"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

type StatisticsResponse struct {
	TotalSessions  int64         `json:"total_sessions"`
	RecentSessions int64         `json:"recent_sessions_30_days"`
	ByStatus       []StatusCount `json:"by_status"`
}

// MapToResponse converts a Session entity to its API shape.
func MapToResponse(s Session) SessionResponse {
	var endedAt *string
	if s.EndedAt != nil {
		formatted := s.EndedAt.UTC().Format(time.RFC3339)
		endedAt = &formatted
	}

	return SessionResponse{
		ID:                   s.ID,
		CourseAssignmentID:   s.CourseAssignmentID,
		GeofenceAreaID:       s.GeofenceAreaID,
		SessionName:          s.SessionName,
		Topic:                s.Topic,
		StartedBy:            s.StartedBy,
		StartedAt:            s.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:              endedAt,
		Status:               s.Status,
		ExpectedStudents:     s.ExpectedStudents,
		CheckedInStudents:    s.CheckedInStudents,
		LateThresholdMinutes: s.LateThresholdMinutes,
		AutoEndMinutes:       s.AutoEndMinutes,
		Notes:                s.Notes,
	}
}
