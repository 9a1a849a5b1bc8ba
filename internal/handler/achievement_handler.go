package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

// AchievementHandler отдаёт каталог достижений
type AchievementHandler struct {
	achievements *service.AchievementService
	logger       *zap.Logger
}

func NewAchievementHandler(achievements *service.AchievementService, logger *zap.Logger) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, logger: logger.Named("AchievementHandler")}
}

// List возвращает каталог с прогрессом. Скрытые неполученные достижения не показываются.
func (h *AchievementHandler) List(c *gin.Context) {
	items, err := h.achievements.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": items})
}

// ListMine возвращает только полученные достижения
func (h *AchievementHandler) ListMine(c *gin.Context) {
	items, err := h.achievements.ListEarned(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": items})
}
