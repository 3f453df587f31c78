package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/attendance-backend-go/internal/domain/assignment"
	"github.com/campushq/attendance-backend-go/internal/domain/attendance"
	"github.com/campushq/attendance-backend-go/internal/domain/geofence"
	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== FAKES =====

type fakeRecordRepo struct {
	records map[string]attendance.Record
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]attendance.Record)}
}

func (f *fakeRecordRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	for _, existing := range f.records {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRecordRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (f *fakeRecordRepo) GetBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*attendance.Record, error) {
	for _, rec := range f.records {
		if rec.SessionID == sessionID && rec.StudentID == studentID {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordRepo) Update(ctx context.Context, rec attendance.Record) error {
	if _, ok := f.records[rec.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeRecordRepo) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	var result []attendance.Record
	for _, rec := range f.records {
		if filter.SessionID != nil && rec.SessionID != *filter.SessionID {
			continue
		}
		if filter.StudentID != nil && rec.StudentID != *filter.StudentID {
			continue
		}
		result = append(result, rec)
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecordRepo) ListBySession(ctx context.Context, sessionID string) ([]attendance.Record, error) {
	var result []attendance.Record
	for _, rec := range f.records {
		if rec.SessionID == sessionID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (f *fakeRecordRepo) ListByStudent(ctx context.Context, studentID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	var result []attendance.Record
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			result = append(result, rec)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRecordRepo) Statistics(ctx context.Context, lecturerID *string) (attendance.StatisticsResponse, error) {
	return attendance.StatisticsResponse{TotalRecords: int64(len(f.records))}, nil
}

type fakeOverrideRepo struct {
	overrides map[string]attendance.Override
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[string]attendance.Override)}
}

func (f *fakeOverrideRepo) Create(ctx context.Context, o attendance.Override) (attendance.Override, error) {
	f.overrides[o.ID] = o
	return o, nil
}

func (f *fakeOverrideRepo) ListByRecord(ctx context.Context, recordID string) ([]attendance.Override, error) {
	var result []attendance.Override
	for _, o := range f.overrides {
		if o.RecordID == recordID {
			result = append(result, o)
		}
	}
	return result, nil
}

type fakeSessionRepo struct {
	sessions map[string]session.Session
}

func (f *fakeSessionRepo) Create(ctx context.Context, s session.Session) (session.Session, error) {
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
	return 0, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s session.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter session.SessionFilter) ([]session.Session, int64, error) {
	return nil, 0, nil
}

func (f *fakeSessionRepo) ListActive(ctx context.Context, startedBy *string) ([]session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) ListRecentByLecturer(ctx context.Context, lecturerID string, limit int) ([]session.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Statistics(ctx context.Context, startedBy *string, since time.Time) (session.StatisticsResponse, error) {
	return session.StatisticsResponse{}, nil
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
	enrolled map[string]bool
}

func (f *fakeEnrollmentLookup) IsEnrolled(ctx context.Context, studentID, courseID, semesterID string) (bool, error) {
	return f.enrolled[studentID], nil
}

func (f *fakeEnrollmentLookup) Headcount(ctx context.Context, courseID, semesterID string) (int, error) {
	return len(f.enrolled), nil
}

// ===== FIXTURES =====

const (
	testSessionID    = "0191b000-0000-7000-8000-000000000001"
	testAssignmentID = "0191b000-0000-7000-8000-000000000002"
	testAreaID       = "0191b000-0000-7000-8000-000000000003"
	testLecturerID   = "0191b000-0000-7000-8000-000000000004"
	testStudentID    = "0191b000-0000-7000-8000-000000000005"
)

var sessionStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type harness struct {
	svc         *AttendanceServiceImpl
	recordRepo  *fakeRecordRepo
	overrides   *fakeOverrideRepo
	sessionRepo *fakeSessionRepo
}

// newHarness wires an active session started at 10:00 with a 15 minute
// late threshold inside a 50 m circular fence centered at (3.0, 9.0),
// and one enrolled student.
func newHarness(now time.Time) *harness {
	radius := 50.0
	lat := 3.0
	lng := 9.0

	recordRepo := newFakeRecordRepo()
	overrideRepo := newFakeOverrideRepo()
	sessionRepo := &fakeSessionRepo{sessions: map[string]session.Session{
		testSessionID: {
			ID:                   testSessionID,
			CourseAssignmentID:   testAssignmentID,
			GeofenceAreaID:       testAreaID,
			StartedBy:            testLecturerID,
			StartedAt:            sessionStart,
			Status:               session.StatusActive,
			ExpectedStudents:     1,
			LateThresholdMinutes: 15,
			AutoEndMinutes:       120,
		},
	}}
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
	enrollments := &fakeEnrollmentLookup{enrolled: map[string]bool{testStudentID: true}}

	svc := NewAttendanceService(nil, recordRepo, overrideRepo, sessionRepo, assignments, areas, enrollments).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return now }
	svc.inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}

	return &harness{
		svc:         svc,
		recordRepo:  recordRepo,
		overrides:   overrideRepo,
		sessionRepo: sessionRepo,
	}
}

func studentIdentity() user.Identity {
	return user.Identity{UserID: "user-s1", Role: user.RoleStudent, ProfileID: testStudentID}
}

func lecturerIdentity() user.Identity {
	return user.Identity{UserID: "user-l1", Role: user.RoleLecturer, ProfileID: testLecturerID}
}

func insideCheckIn() attendance.CheckInRequest {
	return attendance.CheckInRequest{
		SessionID: testSessionID,
		Latitude:  3.0,
		Longitude: 9.0,
	}
}

// ===== CHECK-IN TESTS =====

func TestAttendanceService_CheckIn_PresentWithinThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(10 * time.Minute))

	resp, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, attendance.MethodGeofence, resp.Method)
	assert.Equal(t, testStudentID, resp.StudentID)
}

func TestAttendanceService_CheckIn_LateAfterThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(20 * time.Minute))

	resp, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
}

func TestAttendanceService_CheckIn_ThresholdBoundaryIsPresent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(15 * time.Minute))

	resp, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
}

func TestAttendanceService_CheckIn_Duplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	_, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)

	_, err = h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Len(t, h.recordRepo.records, 1)
}

func TestAttendanceService_CheckIn_OutsideGeofence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	req := insideCheckIn()
	// Roughly 60 m north of a 50 m fence.
	req.Latitude = 3.00054

	_, err := h.svc.CheckIn(ctx, studentIdentity(), req)

	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)
	assert.Empty(t, h.recordRepo.records)
}

func TestAttendanceService_CheckIn_NotEnrolled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	outsider := user.Identity{UserID: "user-x", Role: user.RoleStudent, ProfileID: "not-enrolled-student"}
	_, err := h.svc.CheckIn(ctx, outsider, insideCheckIn())

	assert.ErrorIs(t, err, attendance.ErrNotEnrolled)
}

func TestAttendanceService_CheckIn_SessionEnded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	endedAt := sessionStart.Add(2 * time.Minute)
	sess := h.sessionRepo.sessions[testSessionID]
	sess.Status = session.StatusEnded
	sess.EndedAt = &endedAt
	h.sessionRepo.sessions[testSessionID] = sess

	_, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	assert.ErrorIs(t, err, session.ErrSessionNotActive)
}

func TestAttendanceService_CheckIn_SessionAutoEnded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// 121 minutes after start, past the 120 minute auto-end window.
	h := newHarness(sessionStart.Add(121 * time.Minute))

	_, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())

	assert.ErrorIs(t, err, session.ErrSessionNotActive)
	assert.Equal(t, session.StatusEnded, h.sessionRepo.sessions[testSessionID].Status)
}

// Gate order: an ended session must win over a bad location, so a
// student outside the fence checking into an ended session hears about
// the session, not the fence.
func TestAttendanceService_CheckIn_GateOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(121 * time.Minute))

	req := insideCheckIn()
	req.Latitude = 4.0 // far outside

	_, err := h.svc.CheckIn(ctx, studentIdentity(), req)

	assert.ErrorIs(t, err, session.ErrSessionNotActive)
}

func TestAttendanceService_CheckIn_FaceRecognitionMethod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	confidence := 97.5
	req := insideCheckIn()
	req.Method = attendance.MethodFaceRecognition
	req.FaceMatchConfidence = &confidence

	resp, err := h.svc.CheckIn(ctx, studentIdentity(), req)

	require.NoError(t, err)
	assert.Equal(t, attendance.MethodFaceRecognition, resp.Method)
	require.NotNil(t, resp.FaceMatchConfidence)
	assert.Equal(t, confidence, *resp.FaceMatchConfidence)
}

// ===== OVERRIDE TESTS =====

func TestAttendanceService_Override_ExistingRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(20 * time.Minute))

	// Student checks in late, lecturer corrects to present.
	checkedIn, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)
	require.Equal(t, attendance.StatusLate, checkedIn.Status)

	resp, err := h.svc.Override(ctx, lecturerIdentity(), attendance.OverrideRequest{
		SessionID: testSessionID,
		StudentID: testStudentID,
		NewStatus: attendance.StatusPresent,
		Reason:    "projector failure delayed entry",
	})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, attendance.MethodManualOverride, resp.Method)
	assert.True(t, resp.IsVerified)
	require.NotNil(t, resp.VerifiedBy)
	assert.Equal(t, testLecturerID, *resp.VerifiedBy)

	audits, err := h.svc.RecordOverrides(ctx, lecturerIdentity(), checkedIn.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, attendance.StatusLate, audits[0].OriginalStatus)
	assert.Equal(t, attendance.StatusPresent, audits[0].NewStatus)
	assert.Equal(t, "projector failure delayed entry", audits[0].Reason)
	assert.Equal(t, testLecturerID, audits[0].OverriddenBy)
}

func TestAttendanceService_Override_AbsenteeMarking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(130 * time.Minute))

	resp, err := h.svc.Override(ctx, lecturerIdentity(), attendance.OverrideRequest{
		SessionID: testSessionID,
		StudentID: testStudentID,
		NewStatus: attendance.StatusAbsent,
		Reason:    "no-show",
	})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, resp.Status)
	assert.Equal(t, attendance.MethodManualOverride, resp.Method)
	assert.True(t, resp.IsVerified)

	// Creation through override leaves no audit entry: there is no
	// original status to preserve.
	assert.Empty(t, h.overrides.overrides)
	assert.Len(t, h.recordRepo.records, 1)
}

func TestAttendanceService_Override_NotSessionOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(20 * time.Minute))

	other := user.Identity{UserID: "user-l2", Role: user.RoleLecturer, ProfileID: "other-lecturer"}
	_, err := h.svc.Override(ctx, other, attendance.OverrideRequest{
		SessionID: testSessionID,
		StudentID: testStudentID,
		NewStatus: attendance.StatusPresent,
		Reason:    "attempt",
	})

	assert.ErrorIs(t, err, session.ErrNotSessionOwner)
}

func TestAttendanceService_Override_ApprovalAnnotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(20 * time.Minute))

	checkedIn, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)

	approver := "dept-head-1"
	_, err = h.svc.Override(ctx, lecturerIdentity(), attendance.OverrideRequest{
		SessionID:  testSessionID,
		StudentID:  testStudentID,
		NewStatus:  attendance.StatusPresent,
		Reason:     "documented medical excuse",
		ApprovedBy: &approver,
	})
	require.NoError(t, err)

	audits, err := h.svc.RecordOverrides(ctx, lecturerIdentity(), checkedIn.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.NotNil(t, audits[0].ApprovedBy)
	assert.Equal(t, approver, *audits[0].ApprovedBy)
	assert.NotNil(t, audits[0].ApprovedAt)
}

// ===== READ PATH TESTS =====

func TestAttendanceService_GetRecord_StudentOwnOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	created, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)

	_, err = h.svc.GetRecord(ctx, studentIdentity(), created.ID)
	assert.NoError(t, err)

	other := user.Identity{UserID: "user-s2", Role: user.RoleStudent, ProfileID: "other-student"}
	_, err = h.svc.GetRecord(ctx, other, created.ID)
	assert.ErrorIs(t, err, attendance.ErrNotRecordOwner)
}

func TestAttendanceService_SessionRoster_OwnerOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	_, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)

	roster, err := h.svc.SessionRoster(ctx, lecturerIdentity(), testSessionID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	other := user.Identity{UserID: "user-l2", Role: user.RoleLecturer, ProfileID: "other-lecturer"}
	_, err = h.svc.SessionRoster(ctx, other, testSessionID)
	assert.ErrorIs(t, err, session.ErrNotSessionOwner)
}

func TestAttendanceService_StudentHistory_ScopedToSelf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionStart.Add(5 * time.Minute))

	_, err := h.svc.CheckIn(ctx, studentIdentity(), insideCheckIn())
	require.NoError(t, err)

	history, err := h.svc.StudentHistory(ctx, studentIdentity(), testStudentID, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, history.TotalCount)

	_, err = h.svc.StudentHistory(ctx, studentIdentity(), "other-student", attendance.HistoryFilter{})
	assert.ErrorIs(t, err, attendance.ErrNotRecordOwner)
}
