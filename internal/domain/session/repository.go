package session

import (
	"context"
	"time"
)

// Repository defines data access methods for attendance sessions.
// Sessions are never physically deleted; terminal states are reached
// only through Transition and EndOverdue.
type Repository interface {
	// Create inserts the session. The storage layer holds a partial
	// unique index on (course_assignment_id) WHERE status = 'active';
	// a violation surfaces as ErrActiveSessionExists. The insert itself
	// is the duplicate-active guard, not a prior read.
	Create(ctx context.Context, s Session) (Session, error)

	// GetByID loads a session with its derived checked_in count.
	GetByID(ctx context.Context, id string) (Session, error)

	// Transition moves an active session to a terminal status with a
	// conditional update (WHERE status = 'active'). Returns
	// ErrSessionNotActive when the row was already terminal, so a raced
	// double transition fails without side effects.
	Transition(ctx context.Context, id string, to Status, endedAt time.Time) error

	// EndOverdue ends every active session whose auto-end deadline has
	// passed, setting ended_at to that deadline. Used by the sweep.
	EndOverdue(ctx context.Context, now time.Time) (int64, error)

	// Update changes session metadata (name, topic, thresholds, notes).
	Update(ctx context.Context, s Session) error

	// List retrieves sessions with filters and pagination.
	List(ctx context.Context, filter SessionFilter) ([]Session, int64, error)

	// ListActive retrieves active sessions, optionally scoped to one
	// lecturer.
	ListActive(ctx context.Context, startedBy *string) ([]Session, error)

	// ListRecentByLecturer retrieves the lecturer's latest sessions.
	ListRecentByLecturer(ctx context.Context, lecturerID string, limit int) ([]Session, error)

	// Statistics aggregates session counts, scoped to a lecturer when
	// startedBy is non-nil.
	Statistics(ctx context.Context, startedBy *string, since time.Time) (StatisticsResponse, error)
}
