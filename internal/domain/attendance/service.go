package attendance

import (
	"context"

	"github.com/campushq/attendance-backend-go/internal/domain/user"
)

// Service defines business logic for check-in processing and record
// correction.
type Service interface {
	// CheckIn turns a student's reported location and the server time
	// into a classified attendance record, or rejects it with a
	// specific domain error. Gates run in order: session active,
	// enrollment, duplicate, geofence.
	CheckIn(ctx context.Context, actor user.Identity, req CheckInRequest) (RecordResponse, error)

	// Override mutates an existing record's status on instructor
	// request, appending an audit entry; when no record exists it
	// creates a manual one (absentee marking) without an audit row.
	Override(ctx context.Context, actor user.Identity, req OverrideRequest) (RecordResponse, error)

	// GetRecord retrieves one record; students only see their own.
	GetRecord(ctx context.Context, actor user.Identity, id string) (RecordResponse, error)

	// ListRecords retrieves records with filters (lecturer/admin).
	ListRecords(ctx context.Context, actor user.Identity, filter RecordFilter) (ListRecordsResponse, error)

	// SessionRoster retrieves all records of one session in check-in
	// order, for lecturers who own the session.
	SessionRoster(ctx context.Context, actor user.Identity, sessionID string) ([]RecordResponse, error)

	// StudentHistory retrieves a student's attendance history.
	StudentHistory(ctx context.Context, actor user.Identity, studentID string, filter HistoryFilter) (ListRecordsResponse, error)

	// RecordOverrides retrieves the audit trail of one record.
	RecordOverrides(ctx context.Context, actor user.Identity, recordID string) ([]OverrideResponse, error)

	// Statistics aggregates record counts for reporting views.
	Statistics(ctx context.Context, actor user.Identity) (StatisticsResponse, error)
}
