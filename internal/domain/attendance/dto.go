package attendance

import (
	"time"

	"github.com/campushq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	SessionID           string                 `json:"session_id"`
	Latitude            float64                `json:"location_latitude"`
	Longitude           float64                `json:"location_longitude"`
	Method              Method                 `json:"check_in_method"`
	FaceMatchConfidence *float64               `json:"face_match_confidence"`
	DeviceInfo          map[string]interface{} `json:"device_info"`
	Notes               *string                `json:"notes"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SessionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "session_id",
			Message: "session_id is required",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_latitude",
			Message: "location_latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_longitude",
			Message: "location_longitude must be between -180 and 180",
		})
	}

	if r.Method != "" && !r.Method.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_method",
			Message: "check_in_method must be face_recognition, geofence or manual_override",
		})
	}

	if r.FaceMatchConfidence != nil && (*r.FaceMatchConfidence < 0 || *r.FaceMatchConfidence > 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "face_match_confidence",
			Message: "face_match_confidence must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OverrideRequest struct {
	SessionID string  `json:"session_id"`
	StudentID string  `json:"student_id"`
	NewStatus Status  `json:"attendance_status"`
	Reason    string  `json:"override_reason"`
	Notes     *string `json:"notes"`
	// ApprovedBy is recorded when supplied but never gates the
	// mutation; it is audit annotation only.
	ApprovedBy *string `json:"approved_by"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SessionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "session_id",
			Message: "session_id is required",
		})
	}
	if validator.IsEmpty(r.StudentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "student_id",
			Message: "student_id is required",
		})
	}
	if !r.NewStatus.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_status",
			Message: "attendance_status must be present, late or absent",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "override_reason",
			Message: "override_reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordFilter struct {
	SessionID *string
	StudentID *string
	Status    *string
	Page      int
	Limit     int
}

type HistoryFilter struct {
	CourseID *string
	Page     int
	Limit    int
}

type RecordResponse struct {
	ID                  string                 `json:"id"`
	SessionID           string                 `json:"session_id"`
	StudentID           string                 `json:"student_id"`
	CheckInTime         string                 `json:"check_in_time"`
	Status              Status                 `json:"attendance_status"`
	Method              Method                 `json:"check_in_method"`
	FaceMatchConfidence *float64               `json:"face_match_confidence"`
	LocationLatitude    *float64               `json:"location_latitude"`
	LocationLongitude   *float64               `json:"location_longitude"`
	DeviceInfo          map[string]interface{} `json:"device_info"`
	IsVerified          bool                   `json:"is_verified"`
	VerifiedBy          *string                `json:"verified_by"`
	Notes               *string                `json:"notes"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Records    []RecordResponse `json:"records"`
}

type OverrideResponse struct {
	ID             string  `json:"id"`
	RecordID       string  `json:"attendance_record_id"`
	OriginalStatus Status  `json:"original_status"`
	NewStatus      Status  `json:"new_status"`
	Reason         string  `json:"override_reason"`
	OverriddenBy   string  `json:"overridden_by"`
	OverriddenAt   string  `json:"overridden_at"`
	ApprovedBy     *string `json:"approved_by"`
	ApprovedAt     *string `json:"approved_at"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

type MethodCount struct {
	Method Method `json:"method"`
	Count  int64  `json:"count"`
}

type StatisticsResponse struct {
	TotalRecords int64         `json:"total_records"`
	ByStatus     []StatusCount `json:"by_status"`
	ByMethod     []MethodCount `json:"by_method"`
}

// MapRecordToResponse converts a Record entity to its API shape.
func MapRecordToResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:                  rec.ID,
		SessionID:           rec.SessionID,
		StudentID:           rec.StudentID,
		CheckInTime:         rec.CheckInTime.UTC().Format(time.RFC3339),
		Status:              rec.Status,
		Method:              rec.Method,
		FaceMatchConfidence: rec.FaceMatchConfidence,
		LocationLatitude:    rec.LocationLatitude,
		LocationLongitude:   rec.LocationLongitude,
		DeviceInfo:          rec.DeviceInfo,
		IsVerified:          rec.IsVerified,
		VerifiedBy:          rec.VerifiedBy,
		Notes:               rec.Notes,
	}
}

// MapOverrideToResponse converts an Override entity to its API shape.
func MapOverrideToResponse(o Override) OverrideResponse {
	var approvedAt *string
	if o.ApprovedAt != nil {
		formatted := o.ApprovedAt.UTC().Format(time.RFC3339)
		approvedAt = &formatted
	}

	return OverrideResponse{
		ID:             o.ID,
		RecordID:       o.RecordID,
		OriginalStatus: o.OriginalStatus,
		NewStatus:      o.NewStatus,
		Reason:         o.Reason,
		OverriddenBy:   o.OverriddenBy,
		OverriddenAt:   o.OverriddenAt.UTC().Format(time.RFC3339),
		ApprovedBy:     o.ApprovedBy,
		ApprovedAt:     approvedAt,
	}
}
