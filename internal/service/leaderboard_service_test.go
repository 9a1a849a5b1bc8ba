package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// MockLeaderboardRepo - мок для LeaderboardRepository
type MockLeaderboardRepo struct {
	mock.Mock
}

func (m *MockLeaderboardRepo) Top(ctx context.Context, f repository.LeaderboardFilter) ([]entity.LeaderboardEntry, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepo) UserEntry(ctx context.Context, f repository.LeaderboardFilter, userID uint) (*entity.LeaderboardEntry, error) {
	args := m.Called(ctx, f, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeaderboardEntry), args.Error(1)
}

// MockCacheRepo - мок для CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCacheRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func testOptions() LeaderboardOptions {
	return LeaderboardOptions{
		AccuracyMinAttempts: 3,
		ExamMinAttempts:     2,
		DefaultLimit:        2,
		MaxLimit:            5,
		CacheTTL:            time.Minute,
		WarmExamTypes:       []string{"a_plus"},
	}
}

func sampleEntries(n int) []entity.LeaderboardEntry {
	entries := make([]entity.LeaderboardEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, entity.LeaderboardEntry{Rank: i + 1, UserID: uint(i + 1), DisplayName: "u", Value: float64(100 - i)})
	}
	return entries
}

func TestLeaderboardService_Get_CacheMissFetchesWindow(t *testing.T) {
	// Arrange
	repo := new(MockLeaderboardRepo)
	cache := new(MockCacheRepo)
	svc := NewLeaderboardService(repo, cache, testOptions(), zap.NewNop())

	cache.On("GetJSON", mock.Anything, "xp:all_time:", mock.Anything).Return(apperrors.ErrNotFound)
	repo.On("Top", mock.Anything, mock.MatchedBy(func(f repository.LeaderboardFilter) bool {
		return f.Board == entity.BoardXP && f.Limit == 5 && f.Since == nil
	})).Return(sampleEntries(5), nil)
	cache.On("SetJSON", mock.Anything, "xp:all_time:", mock.Anything, time.Minute).Return(nil)

	// Act
	result, err := svc.Get(context.Background(), LeaderboardQuery{Board: entity.BoardXP})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodAllTime, result.Period)
	assert.Len(t, result.Entries, 2, "лимит по умолчанию")
	assert.Nil(t, result.Me)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestLeaderboardService_Get_CacheHit(t *testing.T) {
	repo := new(MockLeaderboardRepo)
	cache := new(MockCacheRepo)
	svc := NewLeaderboardService(repo, cache, testOptions(), zap.NewNop())

	cache.On("GetJSON", mock.Anything, "quiz_count:weekly:", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*cachedBoard)
			dest.Entries = sampleEntries(4)
		}).
		Return(nil)

	result, err := svc.Get(context.Background(), LeaderboardQuery{Board: entity.BoardQuizCount, Period: entity.PeriodWeekly, Limit: 50})

	require.NoError(t, err)
	assert.Len(t, result.Entries, 4)
	repo.AssertNotCalled(t, "Top", mock.Anything, mock.Anything)
}

func TestLeaderboardService_Get_IncludeUser(t *testing.T) {
	repo := new(MockLeaderboardRepo)
	svc := NewLeaderboardService(repo, nil, testOptions(), zap.NewNop())
	me := &entity.LeaderboardEntry{Rank: 12, UserID: 77, Value: 81.5}

	repo.On("Top", mock.Anything, mock.MatchedBy(func(f repository.LeaderboardFilter) bool {
		return f.Board == entity.BoardAccuracy && f.MinAttempts == 3 && f.Since != nil
	})).Return(sampleEntries(3), nil)
	repo.On("UserEntry", mock.Anything, mock.Anything, uint(77)).Return(me, nil)
	repo.On("UserEntry", mock.Anything, mock.Anything, uint(78)).Return(nil, apperrors.ErrNotFound)

	withMe, err := svc.Get(context.Background(), LeaderboardQuery{
		Board: entity.BoardAccuracy, Period: entity.PeriodMonthly, UserID: 77, IncludeUser: true,
	})
	require.NoError(t, err)
	absent, err := svc.Get(context.Background(), LeaderboardQuery{
		Board: entity.BoardAccuracy, Period: entity.PeriodMonthly, UserID: 78, IncludeUser: true,
	})
	require.NoError(t, err)

	assert.Equal(t, me, withMe.Me)
	assert.Nil(t, absent.Me)
}

func TestLeaderboardService_Get_Validation(t *testing.T) {
	svc := NewLeaderboardService(new(MockLeaderboardRepo), nil, testOptions(), zap.NewNop())

	cases := []LeaderboardQuery{
		{Board: "karma"},
		{Board: entity.BoardXP, Period: "daily"},
		{Board: entity.BoardExam},
	}
	for _, q := range cases {
		_, err := svc.Get(context.Background(), q)
		assert.ErrorIs(t, err, apperrors.ErrInvalidLeaderboard, "query %+v", q)
	}
}

func TestLeaderboardService_Warm(t *testing.T) {
	repo := new(MockLeaderboardRepo)
	cache := new(MockCacheRepo)
	svc := NewLeaderboardService(repo, cache, testOptions(), zap.NewNop())

	repo.On("Top", mock.Anything, mock.Anything).Return(sampleEntries(1), nil)
	cache.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(nil)

	err := svc.Warm(context.Background())

	require.NoError(t, err)
	// xp, quiz_count, accuracy, exam(a_plus) по 3 периода, streak только all_time
	repo.AssertNumberOfCalls(t, "Top", 13)
	cache.AssertCalled(t, "SetJSON", mock.Anything, "exam:weekly:a_plus", mock.Anything, time.Minute)
	cache.AssertCalled(t, "SetJSON", mock.Anything, "streak:all_time:", mock.Anything, time.Minute)
}

func TestLeaderboardService_Export(t *testing.T) {
	repo := new(MockLeaderboardRepo)
	svc := NewLeaderboardService(repo, nil, testOptions(), zap.NewNop())
	entries := sampleEntries(2)
	entries[1].DisplayName = "=cmd()"
	repo.On("Top", mock.Anything, mock.Anything).Return(entries, nil)

	var buf bytes.Buffer
	err := svc.Export(context.Background(), LeaderboardQuery{Board: entity.BoardXP}, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Опыт", rows[0][4])
	assert.Equal(t, "'=cmd()", rows[2][1])
}
