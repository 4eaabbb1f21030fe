package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeReverter struct {
	mock.Mock
}

func (f *fakeReverter) ExpireHold(ctx context.Context, reservationID uint64) error {
	args := f.Called(ctx, reservationID)
	return args.Error(0)
}

func taskBody(t *testing.T, reservationID uint64) []byte {
	t.Helper()
	body, err := json.Marshal(HoldExpiryTask{
		TaskID:        "t-1",
		ReservationID: reservationID,
		ScheduledAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return body
}

func TestHandleTaskRevertsOnce(t *testing.T) {
	rev := &fakeReverter{}
	rev.On("ExpireHold", mock.Anything, uint64(42)).Return(nil).Once()

	require.NoError(t, handleTask(taskBody(t, 42), rev))
	rev.AssertExpectations(t)
}

func TestHandleTaskRetriesTransientFailure(t *testing.T) {
	rev := &fakeReverter{}
	rev.On("ExpireHold", mock.Anything, uint64(42)).Return(errors.New("deadlock")).Once()
	rev.On("ExpireHold", mock.Anything, uint64(42)).Return(nil).Once()

	require.NoError(t, handleTask(taskBody(t, 42), rev))
	rev.AssertExpectations(t)
}

func TestHandleTaskGivesUpAfterRetries(t *testing.T) {
	rev := &fakeReverter{}
	rev.On("ExpireHold", mock.Anything, uint64(42)).Return(errors.New("store down")).Times(revertAttempts)

	err := handleTask(taskBody(t, 42), rev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	rev.AssertExpectations(t)
}

func TestHandleTaskRejectsMalformedBody(t *testing.T) {
	rev := &fakeReverter{}
	err := handleTask([]byte("{not json"), rev)
	require.Error(t, err)
	rev.AssertNumberOfCalls(t, "ExpireHold", 0)
}
