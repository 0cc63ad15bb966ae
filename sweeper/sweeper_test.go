package sweeper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/logger"
)

type fakeExpirer struct {
	swept int
	err   error
}

func (f *fakeExpirer) SweepExpired(ctx context.Context) (int, error) {
	return f.swept, f.err
}

func TestNew_RejectsInvalidSchedule(t *testing.T) {
	_, err := New(&fakeExpirer{}, "not a valid cron expression !!", logger.NoOpLogger{})
	assert.Error(t, err)
}

func TestNew_DefaultsScheduleWhenEmpty(t *testing.T) {
	s, err := New(&fakeExpirer{}, "", logger.NoOpLogger{})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestRunOnce_LogsNothingOnZeroSweptAndNoError(t *testing.T) {
	s, err := New(&fakeExpirer{swept: 0}, DefaultSchedule, logger.NoOpLogger{})
	require.NoError(t, err)
	s.runOnce() // must not panic
}

func TestRunOnce_SwallowsExpirerErrorsWithoutPanicking(t *testing.T) {
	s, err := New(&fakeExpirer{err: errors.New("boom")}, DefaultSchedule, logger.NoOpLogger{})
	require.NoError(t, err)
	s.runOnce() // must not panic
}
