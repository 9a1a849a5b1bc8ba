package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCounters - мок счётчиков кеша; используется только IncrementWindow
type MockCounters struct {
	mock.Mock
}

func (m *MockCounters) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCounters) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCounters) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounters) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.TokenVerifier) {
	t.Helper()
	verifier, err := auth.NewTokenVerifier("secret", "")
	require.NoError(t, err)
	mw := NewAuthMiddleware(verifier, zap.NewNop())

	r := gin.New()
	r.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint(ContextUserID), "role": c.GetString(ContextRole)})
	})
	r.GET("/admin", mw.RequireAuth(), mw.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, verifier
}

func TestRequireAuth(t *testing.T) {
	r, verifier := newAuthRouter(t)
	userToken, err := verifier.Sign(5, "alice", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer", "Bearer " + userToken, "", http.StatusOK},
		{"query token", "", "?token=" + userToken, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"bad format", "Token " + userToken, "", http.StatusUnauthorized},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	r, verifier := newAuthRouter(t)
	userToken, err := verifier.Sign(5, "alice", auth.RoleUser, time.Hour)
	require.NoError(t, err)
	adminToken, err := verifier.Sign(1, "root", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	for token, status := range map[string]int{userToken: http.StatusForbidden, adminToken: http.StatusNoContent} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code)
	}
}

func TestRateLimiter_LimitByUser(t *testing.T) {
	// Arrange
	counters := new(MockCounters)
	rl := NewRateLimiter(counters, zap.NewNop())
	cfg := RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: "rl:write"}
	r := gin.New()
	r.POST("/attempts", func(c *gin.Context) { c.Set(ContextUserID, uint(9)); c.Next() }, rl.LimitByUser(cfg), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	key := "rl:write:user:9:POST:/attempts"
	counters.On("IncrementWindow", mock.Anything, key, time.Minute).Return(int64(2), nil).Once()
	counters.On("IncrementWindow", mock.Anything, key, time.Minute).Return(int64(3), nil).Once()
	counters.On("IncrementWindow", mock.Anything, key, time.Minute).Return(int64(0), errors.New("redis down")).Once()

	// Act & Assert
	statuses := []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusCreated}
	for i, want := range statuses {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/attempts", nil))
		assert.Equal(t, want, w.Code, "request %d", i+1)
	}
	counters.AssertExpectations(t)
}

func TestExtractParams(t *testing.T) {
	r := gin.New()
	r.GET("/attempts/:id", ExtractUintParam("id", "attemptID"), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", c.GetUint("attemptID"))
	})
	r.GET("/sessions/:id", ExtractUUIDParam("id", "sessionID"), func(c *gin.Context) {
		c.String(http.StatusOK, "%s", c.MustGet("sessionID").(uuid.UUID))
	})

	id := uuid.New()
	cases := map[string]int{
		"/attempts/12":             http.StatusOK,
		"/attempts/0":              http.StatusBadRequest,
		"/attempts/abc":            http.StatusBadRequest,
		"/sessions/" + id.String(): http.StatusOK,
		"/sessions/not-a-uuid":     http.StatusBadRequest,
	}
	for path, status := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
