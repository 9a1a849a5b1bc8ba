package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/dto"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/helper"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

// AttemptHandler обрабатывает запросы, связанные с попытками тестов
type AttemptHandler struct {
	attempts     *service.AttemptService
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attempts *service.AttemptService, writeTimeout time.Duration, logger *zap.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts:     attempts,
		writeTimeout: writeTimeout,
		logger:       logger.Named("AttemptHandler"),
	}
}

// Record записывает завершённый тест и возвращает начисленный опыт
func (h *AttemptHandler) Record(c *gin.Context) {
	var req dto.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := writeContext(h.writeTimeout)
	defer cancel()

	result, err := h.attempts.RecordAttempt(ctx, req.ToInput(currentUserID(c), currentUsername(c)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List возвращает историю попыток пользователя постранично
func (h *AttemptHandler) List(c *gin.Context) {
	page, err := helper.IntQuery(c, "page", 1)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}
	pageSize, err := helper.IntQuery(c, "page_size", 0)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		return
	}

	result, err := h.attempts.ListAttempts(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get возвращает попытку с разбором ответов
func (h *AttemptHandler) Get(c *gin.Context) {
	attemptID := c.GetUint("attempt_id")

	attempt, err := h.attempts.GetAttempt(c.Request.Context(), currentUserID(c), attemptID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}
