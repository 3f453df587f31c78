package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutoEndDue(t *testing.T) {
	started := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	s := Session{
		Status:         StatusActive,
		StartedAt:      started,
		AutoEndMinutes: 120,
	}

	assert.False(t, s.AutoEndDue(started.Add(119*time.Minute)))
	assert.True(t, s.AutoEndDue(started.Add(120*time.Minute)))
	assert.True(t, s.AutoEndDue(started.Add(3*time.Hour)))

	s.Status = StatusEnded
	assert.False(t, s.AutoEndDue(started.Add(3*time.Hour)))
}

func TestLateDeadline(t *testing.T) {
	started := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	s := Session{StartedAt: started, LateThresholdMinutes: 15}

	assert.Equal(t, started.Add(15*time.Minute), s.LateDeadline())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusEnded.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStartSessionRequestValidate(t *testing.T) {
	negative := -1
	zero := 0

	cases := []struct {
		name    string
		req     StartSessionRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: StartSessionRequest{
				CourseAssignmentID: "0194bfa0-1111-7abc-8def-000000000001",
				GeofenceAreaID:     "0194bfa0-1111-7abc-8def-000000000002",
			},
		},
		{
			name:    "missing assignment",
			req:     StartSessionRequest{GeofenceAreaID: "0194bfa0-1111-7abc-8def-000000000002"},
			wantErr: true,
		},
		{
			name: "negative late threshold",
			req: StartSessionRequest{
				CourseAssignmentID:   "0194bfa0-1111-7abc-8def-000000000001",
				GeofenceAreaID:       "0194bfa0-1111-7abc-8def-000000000002",
				LateThresholdMinutes: &negative,
			},
			wantErr: true,
		},
		{
			name: "zero auto end",
			req: StartSessionRequest{
				CourseAssignmentID: "0194bfa0-1111-7abc-8def-000000000001",
				GeofenceAreaID:     "0194bfa0-1111-7abc-8def-000000000002",
				AutoEndMinutes:     &zero,
			},
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.req.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
