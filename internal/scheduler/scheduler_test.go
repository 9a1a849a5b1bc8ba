package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockWarmer struct {
	mock.Mock
}

func (m *MockWarmer) Warm(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func TestWarmLeaderboards_Lock(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		acquired  bool
		lockErr   error
		wantWarms int
	}{
		{"lock acquired", true, nil, 1},
		{"lock held elsewhere", false, nil, 0},
		{"redis error", false, errors.New("down"), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warmer := new(MockWarmer)
			locker := new(MockLocker)
			locker.On("SetNX", ctx, warmLockKey, mock.Anything, 30*time.Second).Return(tc.acquired, tc.lockErr)
			warmer.On("Warm", ctx).Return(nil)

			s := New(warmer, locker, time.Minute, zap.NewNop())
			s.warmLeaderboards(ctx)

			warmer.AssertNumberOfCalls(t, "Warm", tc.wantWarms)
		})
	}
}

func TestWarmLeaderboards_NoLockerAndCancelled(t *testing.T) {
	warmer := new(MockWarmer)
	warmer.On("Warm", mock.Anything).Return(errors.New("db down"))
	s := New(warmer, nil, 0, zap.NewNop())

	s.warmLeaderboards(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.warmLeaderboards(ctx)

	warmer.AssertNumberOfCalls(t, "Warm", 1)
	assert.Equal(t, time.Minute, s.interval)
}
