package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/middleware"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/notify"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/repository/postgres"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/auth"
)

const testSecret = "router-test-secret"

type apiEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	verifier *auth.TokenVerifier
}

// newAPIEnv собирает роутер со всеми сервисами поверх SQLite в памяти
func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Profile{}, &entity.Attempt{}, &entity.AnswerRecord{},
		&entity.Achievement{}, &entity.UserAchievement{},
		&entity.Avatar{}, &entity.UserAvatar{},
		&entity.StudySession{}, &entity.StudyAnswer{}, &entity.Question{},
	))

	log := zap.NewNop()
	store := postgres.NewStore(db)
	tx := postgres.NewTransactor(db, 0, log)
	publisher := notify.NewChannelPublisher(notify.NoOpPubSub{}, "test:", log)

	achievements := service.NewAchievementService(store, log)
	avatars := service.NewAvatarService(store, log)
	attempts := service.NewAttemptService(tx, store, achievements, avatars, publisher, time.UTC, log)
	study := service.NewStudyService(tx, store, attempts, 5, 20, log)
	profiles := service.NewProfileService(store, avatars, log)
	leaderboards := service.NewLeaderboardService(postgres.NewLeaderboardRepo(db), nil, service.LeaderboardOptions{
		AccuracyMinAttempts: 1,
		ExamMinAttempts:     1,
		DefaultLimit:        10,
		MaxLimit:            100,
		CacheTTL:            time.Minute,
	}, log)

	verifier, err := auth.NewTokenVerifier(testSecret, "")
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Attempts:     NewAttemptHandler(attempts, time.Second, log),
		Study:        NewStudyHandler(study, time.Second, log),
		Leaderboard:  NewLeaderboardHandler(leaderboards, log),
		Achievements: NewAchievementHandler(achievements, log),
		Profile:      NewProfileHandler(profiles, time.Second, log),
		WS:           NewWSHandler(publisher, []string{"*"}, log),
	}, middleware.NewAuthMiddleware(verifier, log), RouterConfig{})

	return &apiEnv{router: router, db: db, verifier: verifier}
}

func (e *apiEnv) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := e.verifier.Sign(userID, fmt.Sprintf("user%d", userID), role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) seedQuestions(t *testing.T, exam string, n int) []entity.Question {
	t.Helper()
	out := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		q := entity.Question{
			ExamType: exam, Domain: "networking", Text: fmt.Sprintf("q%d", i+1),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: entity.AnswerA,
		}
		require.NoError(t, e.db.Create(&q).Error)
		out = append(out, q)
	}
	return out
}

func TestRouter_RequiresToken(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RecordAttemptThenReadProfileAndLeaderboard(t *testing.T) {
	// Arrange
	env := newAPIEnv(t)
	questions := env.seedQuestions(t, "net", 4)
	token := env.token(t, 7, auth.RoleUser)

	answers := make([]map[string]interface{}, 0, len(questions))
	for i, q := range questions {
		letter := "a" // регистр не важен
		if i == 3 {
			letter = "B"
		}
		answers = append(answers, map[string]interface{}{"question_id": q.ID, "user_answer": letter})
	}

	// Act
	w := env.do(t, http.MethodPost, "/api/attempts", token, map[string]interface{}{
		"exam_type": "net",
		"answers":   answers,
	})

	// Assert: форма результата стабильна
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	for _, key := range []string{"attempt", "xp_earned", "total_xp", "new_level", "previous_level",
		"level_up", "xp_to_next_level", "achievements_unlocked", "avatars_unlocked"} {
		assert.Contains(t, result, key)
	}
	attempt := result["attempt"].(map[string]interface{})
	assert.EqualValues(t, 3, attempt["correct_answers"])
	assert.EqualValues(t, 75, attempt["score_percentage"])
	xp := result["xp_earned"].(float64)
	assert.Greater(t, xp, float64(0))
	assert.Equal(t, xp, result["total_xp"])

	// Профиль отражает начисленный опыт
	w = env.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, xp, profile["xp"])
	assert.EqualValues(t, 1, profile["total_attempts_taken"])

	// История
	w = env.do(t, http.MethodGet, "/api/attempts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	id := uint(attempt["id"].(float64))
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/attempts/%d", id), env.token(t, 8, auth.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Рейтинг по опыту
	w = env.do(t, http.MethodGet, "/api/leaderboard/xp?me=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var board struct {
		Entries []entity.LeaderboardEntry `json:"entries"`
		Me      *entity.LeaderboardEntry  `json:"me"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, uint(7), board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	require.NotNil(t, board.Me)
	assert.Equal(t, 1, board.Me.Rank)
}

func TestRouter_RecordAttempt_UnknownQuestion(t *testing.T) {
	env := newAPIEnv(t)
	token := env.token(t, 7, auth.RoleUser)

	w := env.do(t, http.MethodPost, "/api/attempts", token, map[string]interface{}{
		"exam_type": "net",
		"answers":   []map[string]interface{}{{"question_id": 999, "user_answer": "A"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error_type":"invalid_attempt"`)
}

func TestRouter_LeaderboardValidation(t *testing.T) {
	env := newAPIEnv(t)
	token := env.token(t, 7, auth.RoleUser)

	tests := []struct {
		name string
		path string
	}{
		{"unknown board", "/api/leaderboard/karma"},
		{"unknown period", "/api/leaderboard/xp?period=yearly"},
		{"exam board without exam type", "/api/leaderboard/exam"},
		{"non numeric limit", "/api/leaderboard/xp?limit=ten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error_type":"invalid_leaderboard"`)
		})
	}
}

func TestRouter_ExportIsAdminOnly(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/api/admin/leaderboard/xp/export", env.token(t, 7, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/leaderboard/xp/export", env.token(t, 1, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "leaderboard_xp_")
	// XLSX - zip архив
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestRouter_StudySessionFlow(t *testing.T) {
	// Arrange
	env := newAPIEnv(t)
	env.seedQuestions(t, "sec", 2)
	token := env.token(t, 3, auth.RoleUser)

	// Act: старт
	w := env.do(t, http.MethodPost, "/api/study/sessions", token, map[string]interface{}{"exam_type": "sec", "count": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var state struct {
		Session  entity.StudySession     `json:"session"`
		Question *service.QuestionPrompt `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Question)

	// Вторая сессия запрещена
	w = env.do(t, http.MethodPost, "/api/study/sessions", token, map[string]interface{}{"exam_type": "sec"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Невалидный id сессии
	w = env.do(t, http.MethodPost, "/api/study/sessions/not-a-uuid/answers", token, map[string]interface{}{"question_id": 1, "user_answer": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Ответ на первый вопрос
	path := fmt.Sprintf("/api/study/sessions/%s/answers", state.Session.ID)
	w = env.do(t, http.MethodPost, path, token, map[string]interface{}{"question_id": state.Question.ID, "user_answer": "A"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_correct":true`)

	// Повтор того же вопроса не двигает позицию
	w = env.do(t, http.MethodPost, path, token, map[string]interface{}{"question_id": state.Question.ID, "user_answer": "A"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Прерывание
	w = env.do(t, http.MethodDelete, "/api/study/sessions/active", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/study/sessions/active", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SelectAvatarRequiresOwnership(t *testing.T) {
	env := newAPIEnv(t)
	token := env.token(t, 5, auth.RoleUser)
	locked := entity.Avatar{Name: "locked", ImageURL: "/l.png"}
	open := entity.Avatar{Name: "open", ImageURL: "/o.png", IsDefault: true}
	require.NoError(t, env.db.Create(&locked).Error)
	require.NoError(t, env.db.Create(&open).Error)

	w := env.do(t, http.MethodPut, "/api/profile/avatar", token, map[string]interface{}{"avatar_id": locked.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "avatar_not_owned")

	w = env.do(t, http.MethodPut, "/api/profile/avatar", token, map[string]interface{}{"avatar_id": open.ID})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/avatars", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selected":true`)
}
