package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/handler/dto"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

const internalErrorMessage = "Something went wrong. Please try again."

// respondError переводит ошибки сервисов в HTTP ответы.
// Детали внутренних ошибок только логируются.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := apperrors.Code(err)
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), ErrorType: code})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), ErrorType: code})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), ErrorType: code})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), ErrorType: code})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error(), ErrorType: code})
	default:
		logger.Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: internalErrorMessage, ErrorType: "internal_error"})
	}
}

// respondBindError отвечает на невалидное тело запроса
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), ErrorType: "validation_failed"})
}
