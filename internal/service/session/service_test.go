package session

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== FAKES =====

type fakeSessionRepo struct {
	sessions map[string]session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]session.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s session.Session) (session.Session, error) {
	for _, existing := range f.sessions {
		if existing.CourseAssignmentID == s.CourseAssignmentID && existing.Status == session.StatusActive {
			return session.Session{}, session.ErrActiveSessionExists
		}
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Transition(ctx context.Context, id string, to session.Status, endedAt time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return session.ErrSessionNotFound
	}
	if s.Status != session.StatusActive {
		return session.ErrSessionNotActive
	}
	s.Status = to
	s.EndedAt = &endedAt
	f.sessions[id] = s
	return nil
}

func (f *fakeSessionRepo) EndOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for id, s := range f.sessions {
		if s.AutoEndDue(now) {
			deadline := s.AutoEndDeadline()
			s.Status = session.StatusEnded
			s.EndedAt = &deadline
			f.sessions[id] = s
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s session.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return session.ErrSessionNotFound
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter session.SessionFilter) ([]session.Session, int64, error) {
	var result []session.Session
	for _, s := range f.sessions {
		if filter.StartedBy != nil && s.StartedBy != *filter.StartedBy {
			continue
		}
		if filter.Status != nil && string(s.Status) != *filter.Status {
			continue
		}
		result = append(result, s)
	}
	return result, int64(len(result)), nil
}

func (f *fakeSessionRepo) ListActive(ctx context.Context, startedBy *string) ([]session.Session, error) {
	var result []session.Session
	for _, s := range f.sessions {
		if s.Status != session.StatusActive {
			continue
		}
		if startedBy != nil && s.StartedBy != *startedBy {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (f *fakeSessionRepo) ListRecentByLecturer(ctx context.Context, lecturerID string, limit int) ([]session.Session, error) {
	var result []session.Session
	for _, s := range f.sessions {
		if s.StartedBy == lecturerID {
			result = append(result, s)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeSessionRepo) Statistics(ctx context.Context, startedBy *string, since time.Time) (session.StatisticsResponse, error) {
	var stats session.StatisticsResponse
	for _, s := range f.sessions {
		if startedBy != nil && s.StartedBy != *startedBy {
			continue
		}
		stats.TotalSessions++
		if s.StartedAt.After(since) {
			stats.RecentSessions++
		}
	}
	return stats, nil
}

type fakeAssignmentRegistry struct {
	assignments map[string]assignment.CourseAssignment
}

func (f *fakeAssignmentRegistry) GetByID(ctx context.Context, id string) (assignment.CourseAssignment, error) {
	ca, ok := f.assignments[id]
	if !ok {
		return assignment.CourseAssignment{}, assignment.ErrAssignmentNotFound
	}
	return ca, nil
}

type fakeAreaRepo struct {
	areas map[string]geofence.Area
}

func (f *fakeAreaRepo) Create(ctx context.Context, a geofence.Area) (geofence.Area, error) {
	f.areas[a.ID] = a
	return a, nil
}

func (f *fakeAreaRepo) GetByID(ctx context.Context, id string) (geofence.Area, error) {
	a, ok := f.areas[id]
	if !ok {
		return geofence.Area{}, geofence.ErrGeofenceNotFound
	}
	return a, nil
}

func (f *fakeAreaRepo) List(ctx context.Context, filter geofence.AreaFilter) ([]geofence.Area, int64, error) {
	return nil, 0, nil
}

func (f *fakeAreaRepo) Update(ctx context.Context, a geofence.Area) error { return nil }
func (f *fakeAreaRepo) Activate(ctx context.Context, id string) error     { return nil }
func (f *fakeAreaRepo) Deactivate(ctx context.Context, id string) error   { return nil }

type fakeEnrollmentLookup struct {
	enrolled  map[string]bool
	headcount int
}

func (f *fakeEnrollmentLookup) IsEnrolled(ctx context.Context, studentID, courseID, semesterID string) (bool, error) {
	return f.enrolled[studentID], nil
}

func (f *fakeEnrollmentLookup) Headcount(ctx context.Context, courseID, semesterID string) (int, error) {
	return f.headcount, nil
}

// ===== FIXTURES =====

const (
	testAssignmentID = "0191a000-0000-7000-8000-000000000001"
	testAreaID       = "0191a000-0000-7000-8000-000000000002"
	testLecturerID   = "0191a000-0000-7000-8000-000000000003"
)

func testFixtures() (*fakeSessionRepo, *fakeAssignmentRegistry, *fakeAreaRepo, *fakeEnrollmentLookup) {
	radius := 50.0
	lat := 3.0
	lng := 9.0

	sessionRepo := newFakeSessionRepo()
	assignments := &fakeAssignmentRegistry{assignments: map[string]assignment.CourseAssignment{
		testAssignmentID: {
			ID:         testAssignmentID,
			LecturerID: testLecturerID,
			CourseID:   "course-1",
			SemesterID: "semester-1",
			IsActive:   true,
		},
	}}
	areas := &fakeAreaRepo{areas: map[string]geofence.Area{
		testAreaID: {
			ID:              testAreaID,
			Name:            "Lecture Hall A",
			Kind:            geofence.KindCircular,
			CenterLatitude:  &lat,
			CenterLongitude: &lng,
			RadiusMeters:    &radius,
			IsActive:        true,
		},
	}}
	enrollments := &fakeEnrollmentLookup{enrolled: map[string]bool{}, headcount: 42}

	return sessionRepo, assignments, areas, enrollments
}

func newTestService(repo *fakeSessionRepo, reg *fakeAssignmentRegistry, areas *fakeAreaRepo, enr *fakeEnrollmentLookup, now time.Time) *SessionServiceImpl {
	svc := NewSessionService(repo, reg, areas, enr).(*SessionServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func lecturerIdentity() user.Identity {
	return user.Identity{UserID: "user-1", Role: user.RoleLecturer, ProfileID: testLecturerID}
}

// ===== SESSION SERVICE TESTS =====

func TestSessionService_Start_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, now)

	resp, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, session.StatusActive, resp.Status)
	assert.Equal(t, 42, resp.ExpectedStudents)
	assert.Equal(t, 0, resp.CheckedInStudents)
	assert.Equal(t, session.DefaultLateThresholdMinutes, resp.LateThresholdMinutes)
	assert.Equal(t, session.DefaultAutoEndMinutes, resp.AutoEndMinutes)
	assert.Equal(t, testLecturerID, resp.StartedBy)
}

func TestSessionService_Start_DuplicateActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, now)

	req := session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	}

	_, err := svc.Start(ctx, lecturerIdentity(), req)
	require.NoError(t, err)

	_, err = svc.Start(ctx, lecturerIdentity(), req)
	assert.ErrorIs(t, err, session.ErrActiveSessionExists)
	assert.Len(t, repo.sessions, 1)
}

func TestSessionService_Start_InactiveGeofence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	area := areas.areas[testAreaID]
	area.IsActive = false
	areas.areas[testAreaID] = area

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, now)

	_, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})

	assert.ErrorIs(t, err, geofence.ErrGeofenceInactive)
}

func TestSessionService_Start_NotAssignedLecturer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, now)

	other := user.Identity{UserID: "user-2", Role: user.RoleLecturer, ProfileID: "someone-else"}
	_, err := svc.Start(ctx, other, session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})

	assert.ErrorIs(t, err, assignment.ErrNotAssignedToYou)
}

func TestSessionService_End_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	endTime := start.Add(90 * time.Minute)
	svc.now = func() time.Time { return endTime }

	resp, err := svc.End(ctx, lecturerIdentity(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, session.StatusEnded, resp.Status)
	require.NotNil(t, resp.EndedAt)
	assert.Equal(t, endTime.Format(time.RFC3339), *resp.EndedAt)
}

func TestSessionService_End_AlreadyEnded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	firstEnd := start.Add(60 * time.Minute)
	svc.now = func() time.Time { return firstEnd }
	_, err = svc.End(ctx, lecturerIdentity(), created.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(70 * time.Minute) }
	_, err = svc.End(ctx, lecturerIdentity(), created.ID)

	assert.ErrorIs(t, err, session.ErrSessionNotActive)

	stored := repo.sessions[created.ID]
	require.NotNil(t, stored.EndedAt)
	assert.Equal(t, firstEnd, *stored.EndedAt)
}

func TestSessionService_Cancel_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	resp, err := svc.Cancel(ctx, lecturerIdentity(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, resp.Status)
}

func TestSessionService_End_NotOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	other := user.Identity{UserID: "user-2", Role: user.RoleLecturer, ProfileID: "someone-else"}
	_, err = svc.End(ctx, other, created.ID)

	assert.ErrorIs(t, err, session.ErrNotSessionOwner)
	assert.Equal(t, session.StatusActive, repo.sessions[created.ID].Status)
}

func TestSessionService_Get_LazyAutoEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	autoEnd := 60
	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
		AutoEndMinutes:     &autoEnd,
	})
	require.NoError(t, err)

	// Read well past the deadline; ended_at must be the deadline, not
	// the read time.
	svc.now = func() time.Time { return start.Add(3 * time.Hour) }
	resp, err := svc.Get(ctx, lecturerIdentity(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, session.StatusEnded, resp.Status)
	require.NotNil(t, resp.EndedAt)
	assert.Equal(t, start.Add(60*time.Minute).Format(time.RFC3339), *resp.EndedAt)
}

func TestSessionService_Get_ActiveBeforeDeadline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(119 * time.Minute) }
	resp, err := svc.Get(ctx, lecturerIdentity(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, resp.Status)
}

func TestSessionService_EndOverdueSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, reg, areas, enr := testFixtures()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, reg, areas, enr, start)

	created, err := svc.Start(ctx, lecturerIdentity(), session.StartSessionRequest{
		CourseAssignmentID: testAssignmentID,
		GeofenceAreaID:     testAreaID,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(121 * time.Minute) }
	ended, err := svc.EndOverdueSessions(ctx)

	require.NoError(t, err)
	assert.EqualValues(t, 1, ended)
	assert.Equal(t, session.StatusEnded, repo.sessions[created.ID].Status)
}
