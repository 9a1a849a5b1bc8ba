package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/middleware"
)

// currentUserID возвращает ID пользователя, положенный RequireAuth
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

func currentUsername(c *gin.Context) string {
	return c.GetString(middleware.ContextUsername)
}

// writeContext отвязывает пишущую операцию от соединения клиента:
// разрыв соединения не должен откатывать уже начатую запись попытки.
func writeContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
