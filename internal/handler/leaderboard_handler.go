package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/helper"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHandler отдаёт рейтинги и их выгрузку в XLSX
type LeaderboardHandler struct {
	leaderboards *service.LeaderboardService
	logger       *zap.Logger
}

// NewLeaderboardHandler создает новый обработчик рейтингов
func NewLeaderboardHandler(leaderboards *service.LeaderboardService, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards, logger: logger.Named("LeaderboardHandler")}
}

// Get возвращает рейтинг. Query: limit, period, exam_type, me.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.leaderboards.Get(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Export выгружает рейтинг в XLSX (только для администраторов)
func (h *LeaderboardHandler) Export(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	q.IncludeUser = false

	// Файл собирается целиком до записи заголовков
	var buf bytes.Buffer
	if err := h.leaderboards.Export(c.Request.Context(), q, &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s_%s", q.Board, time.Now().Format("20060102"))
	if q.ExamType != "" {
		filename += "_" + strings.ReplaceAll(q.ExamType, "\"", "")
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *LeaderboardHandler) parseQuery(c *gin.Context) (service.LeaderboardQuery, error) {
	limit, err := helper.IntQuery(c, "limit", 0)
	if err != nil {
		return service.LeaderboardQuery{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidLeaderboard, err)
	}
	return service.LeaderboardQuery{
		Board:       entity.LeaderboardBoard(c.Param("board")),
		Period:      entity.LeaderboardPeriod(c.Query("period")),
		ExamType:    c.Query("exam_type"),
		Limit:       limit,
		UserID:      currentUserID(c),
		IncludeUser: helper.BoolQuery(c, "me"),
	}, nil
}
