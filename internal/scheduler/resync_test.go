package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Disabled(t *testing.T) {
	s := NewResyncScheduler(nil, nil, nil, "0 3 * * *", false)

	err := s.Start(context.Background())
	require.NoError(t, err)

	assert.Nil(t, s.GetNextRunTime())
	assert.False(t, s.IsSyncing())
}

func TestScheduler_StartStop(t *testing.T) {
	// Yearly schedule keeps the job from firing during the test
	s := NewResyncScheduler(nil, nil, nil, "0 0 1 1 *", true)

	err := s.Start(context.Background())
	require.NoError(t, err)

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.False(t, next.IsZero())

	s.Stop()
	assert.Nil(t, s.GetNextRunTime())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewResyncScheduler(nil, nil, nil, "not a schedule", true)

	err := s.Start(context.Background())
	assert.Error(t, err)
}
