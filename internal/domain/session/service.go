package session

import (
	"context"

	"github.com/campushq/attendance-backend-go/internal/domain/user"
)

// Service defines business logic for the session lifecycle.
type Service interface {
	// Start opens a session for a course assignment the actor owns,
	// snapshotting expected_students from the enrollment registry.
	Start(ctx context.Context, actor user.Identity, req StartSessionRequest) (SessionResponse, error)

	// Get retrieves one session, applying the lazy auto-end check.
	Get(ctx context.Context, actor user.Identity, id string) (SessionResponse, error)

	// End transitions active -> ended.
	End(ctx context.Context, actor user.Identity, id string) (SessionResponse, error)

	// Cancel transitions active -> cancelled.
	Cancel(ctx context.Context, actor user.Identity, id string) (SessionResponse, error)

	// Update changes session metadata while preserving lifecycle state.
	Update(ctx context.Context, actor user.Identity, req UpdateSessionRequest) (SessionResponse, error)

	// List retrieves sessions; lecturers only see their own.
	List(ctx context.Context, actor user.Identity, filter SessionFilter) (ListSessionsResponse, error)

	// ListActive retrieves currently active sessions for the actor.
	ListActive(ctx context.Context, actor user.Identity) ([]SessionResponse, error)

	// Recent retrieves a lecturer's latest sessions.
	Recent(ctx context.Context, actor user.Identity, lecturerID string, limit int) ([]SessionResponse, error)

	// Statistics aggregates counts by status for dashboards.
	Statistics(ctx context.Context, actor user.Identity) (StatisticsResponse, error)

	// EndOverdueSessions applies auto-end to every overdue session.
	// Registered as a cron job; also safe to call ad hoc.
	EndOverdueSessions(ctx context.Context) (int64, error)
}
