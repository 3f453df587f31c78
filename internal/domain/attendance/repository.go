package attendance

import "context"

// RecordRepository defines data access methods for attendance records.
type RecordRepository interface {
	// Create inserts a record. The storage layer enforces the unique
	// pair (session_id, student_id); a violation surfaces as
	// ErrAlreadyCheckedIn so a raced duplicate submission fails even
	// after passing the advisory existence check.
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByID retrieves a record by ID.
	GetByID(ctx context.Context, id string) (Record, error)

	// GetBySessionAndStudent retrieves the unique record for the pair,
	// or nil when none exists.
	GetBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*Record, error)

	// Update persists status/method/verifier/notes mutations made by
	// the override path. No other caller mutates records.
	Update(ctx context.Context, rec Record) error

	// List retrieves records with filters and pagination.
	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)

	// ListBySession retrieves a session's roster ordered by check-in
	// time.
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)

	// ListByStudent retrieves a student's history, newest first,
	// optionally narrowed to one course.
	ListByStudent(ctx context.Context, studentID string, filter HistoryFilter) ([]Record, int64, error)

	// Statistics aggregates record counts by status and method, scoped
	// to one lecturer's sessions when lecturerID is non-nil.
	Statistics(ctx context.Context, lecturerID *string) (StatisticsResponse, error)
}

// OverrideRepository stores the append-only override audit trail.
type OverrideRepository interface {
	Create(ctx context.Context, o Override) (Override, error)
	ListByRecord(ctx context.Context, recordID string) ([]Override, error)
}
