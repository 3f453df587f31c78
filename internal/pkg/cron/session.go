package cron

import (
	"context"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/session"
)

// SessionJobs holds the background maintenance jobs for attendance
// sessions. The sweep complements the lazy auto-end check on reads:
// sessions nobody touches again still reach a terminal state.
type SessionJobs struct {
	sessionService session.Service
}

func NewSessionJobs(sessionService session.Service) *SessionJobs {
	return &SessionJobs{
		sessionService: sessionService,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_end_overdue_sessions", 1*time.Minute, j.AutoEndOverdueSessions)
}

func (j *SessionJobs) AutoEndOverdueSessions(ctx context.Context) error {
	_, err := j.sessionService.EndOverdueSessions(ctx)
	return err
}
