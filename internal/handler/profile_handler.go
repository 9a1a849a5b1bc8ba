package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/dto"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

// ProfileHandler обрабатывает запросы профиля и аватаров
type ProfileHandler struct {
	profiles     *service.ProfileService
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewProfileHandler создает новый обработчик профиля
func NewProfileHandler(profiles *service.ProfileService, writeTimeout time.Duration, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, writeTimeout: writeTimeout, logger: logger.Named("ProfileHandler")}
}

// GetProfile возвращает уровень, опыт и серию пользователя
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	view, err := h.profiles.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListAvatars возвращает каталог аватаров с отметками владения
func (h *ProfileHandler) ListAvatars(c *gin.Context) {
	avatars, err := h.profiles.ListAvatars(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// SelectAvatar делает аватар текущим; аватар должен принадлежать пользователю
func (h *ProfileHandler) SelectAvatar(c *gin.Context) {
	var req dto.SelectAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := writeContext(h.writeTimeout)
	defer cancel()

	if err := h.profiles.SelectAvatar(ctx, currentUserID(c), currentUsername(c), req.AvatarID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"selected_avatar_id": req.AvatarID})
}
