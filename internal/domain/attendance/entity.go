package attendance

import "time"

// Status is the classified outcome of a check-in. Absent is never
// produced by the check-in path; it exists only through overrides and
// absentee marking.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// Method records how a check-in was captured. The confidence score that
// accompanies face_recognition is an opaque input; no matching happens
// here.
type Method string

const (
	MethodFaceRecognition Method = "face_recognition"
	MethodGeofence        Method = "geofence"
	MethodManualOverride  Method = "manual_override"
)

func (m Method) Valid() bool {
	switch m {
	case MethodFaceRecognition, MethodGeofence, MethodManualOverride:
		return true
	}
	return false
}

// Record is the durable outcome of a successful check-in or a manual
// marking. The pair (SessionID, StudentID) is unique, enforced by the
// storage layer. Records are never deleted; OverrideManager is the only
// mutator after creation.
type Record struct {
	ID                  string
	SessionID           string
	StudentID           string
	CheckInTime         time.Time
	Status              Status
	Method              Method
	FaceMatchConfidence *float64
	LocationLatitude    *float64
	LocationLongitude   *float64
	DeviceInfo          map[string]interface{}
	IsVerified          bool
	VerifiedBy          *string
	Notes               *string
	CreatedAt           time.Time
}

// Override is one append-only audit entry for a record mutation. Rows
// are never updated after creation.
type Override struct {
	ID               string
	RecordID         string
	OriginalStatus   Status
	NewStatus        Status
	Reason           string
	OverriddenBy     string
	OverriddenAt     time.Time
	ApprovedBy       *string
	ApprovedAt       *time.Time
}

// Classify determines the status of a check-in received at checkInTime
// for a session that started at startedAt with the given late
// threshold. The threshold instant itself still counts as present.
func Classify(checkInTime, startedAt time.Time, lateThresholdMinutes int) Status {
	deadline := startedAt.Add(time.Duration(lateThresholdMinutes) * time.Minute)
	if checkInTime.After(deadline) {
		return StatusLate
	}
	return StatusPresent
}
