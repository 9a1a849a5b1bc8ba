package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/dto"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

// StudyHandler обрабатывает запросы режима обучения
type StudyHandler struct {
	study        *service.StudyService
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewStudyHandler создает новый обработчик сессий обучения
func NewStudyHandler(study *service.StudyService, writeTimeout time.Duration, logger *zap.Logger) *StudyHandler {
	return &StudyHandler{
		study:        study,
		writeTimeout: writeTimeout,
		logger:       logger.Named("StudyHandler"),
	}
}

// Start запускает сессию обучения и возвращает первый вопрос
func (h *StudyHandler) Start(c *gin.Context) {
	var req dto.StartStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := writeContext(h.writeTimeout)
	defer cancel()

	state, err := h.study.Start(ctx, service.StartStudyInput{
		UserID:   currentUserID(c),
		ExamType: req.ExamType,
		Count:    req.Count,
		Domain:   req.Domain,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

// GetActive возвращает активную сессию для продолжения
func (h *StudyHandler) GetActive(c *gin.Context) {
	state, err := h.study.GetActive(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Answer принимает ответ на текущий вопрос сессии
func (h *StudyHandler) Answer(c *gin.Context) {
	raw, _ := c.Get("session_id")
	sessionID, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid session id", ErrorType: "validation_failed"})
		return
	}

	var req dto.StudyAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := writeContext(h.writeTimeout)
	defer cancel()

	feedback, err := h.study.Answer(ctx, service.StudyAnswerInput{
		UserID:      currentUserID(c),
		DisplayName: currentUsername(c),
		SessionID:   sessionID,
		QuestionID:  req.QuestionID,
		UserAnswer:  req.UserAnswer,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// Abandon прерывает активную сессию без начисления опыта
func (h *StudyHandler) Abandon(c *gin.Context) {
	ctx, cancel := writeContext(h.writeTimeout)
	defer cancel()

	if err := h.study.Abandon(ctx, currentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
