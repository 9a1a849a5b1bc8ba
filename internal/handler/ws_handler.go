package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/notify"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/websocket"
)

// WSHandler пересылает события геймификации пользователя в его WebSocket соединение
type WSHandler struct {
	events    notify.Subscriber
	upgrader  gorillaws.Upgrader
	clientCfg websocket.ClientConfig
	logger    *zap.Logger
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins синхронизирован с CORS; "*" разрешает любой origin.
func NewWSHandler(events notify.Subscriber, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	h := &WSHandler{
		events:    events,
		clientCfg: websocket.DefaultClientConfig(),
		logger:    logger.Named("WSHandler"),
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.originChecker(allowedOrigins),
	}
	return h
}

func (h *WSHandler) originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Пустой Origin - не браузерный клиент
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		h.logger.Warn("rejected websocket origin", zap.String("origin", origin))
		return false
	}
}

// HandleConnection поднимает соединение. Токен передаётся в ?token=, RequireAuth уже проверил его.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	userID := currentUserID(c)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := h.events.SubscribeUser(ctx, userID)
	if err != nil {
		cancel()
		respondError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		// Upgrade уже записал ответ клиенту
		h.logger.Info("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	h.logger.Debug("websocket connected", zap.Uint("user_id", userID))
	websocket.NewClient(conn, userID, h.clientCfg, h.logger).Run(ctx, cancel, events)
}
