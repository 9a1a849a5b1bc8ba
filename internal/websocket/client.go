package websocket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время ожидания следующего pong от клиента.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Клиент только слушает, входящие сообщения крошечные.
	maxMessageSize = 512
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval:   pingPeriod,
		PongWait:       pongWait,
		WriteWait:      writeWait,
		MaxMessageSize: maxMessageSize,
	}
}

// Client пересылает события пользователя в одно WebSocket соединение
type Client struct {
	UserID       uint
	ConnectionID string

	conn   *websocket.Conn
	cfg    ClientConfig
	logger *zap.Logger
}

// NewClient создаёт клиента поверх установленного соединения
func NewClient(conn *websocket.Conn, userID uint, cfg ClientConfig, logger *zap.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		UserID:       userID,
		ConnectionID: id,
		conn:         conn,
		cfg:          cfg,
		logger:       logger.With(zap.Uint("user_id", userID), zap.String("conn_id", id)),
	}
}

// Run пересылает сообщения из events, пока клиент не отключится или events не закроется.
// Блокирует вызывающего; соединение закрывается на выходе.
func (c *Client) Run(ctx context.Context, cancel context.CancelFunc, events <-chan []byte) {
	defer c.conn.Close()

	go c.readPump(cancel)
	c.writePump(ctx, events)
}

// readPump читает только управляющие кадры; ошибка чтения означает отключение клиента
func (c *Client) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context, events <-chan []byte) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return

		case msg, ok := <-events:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
