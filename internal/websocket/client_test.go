package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startRelay поднимает сервер, который пересылает events в каждое новое соединение
func startRelay(t *testing.T, events chan []byte) (*httptest.Server, <-chan struct{}) {
	t.Helper()
	done := make(chan struct{})
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		NewClient(conn, 42, DefaultClientConfig(), zap.NewNop()).Run(ctx, cancel, events)
		close(done)
	}))
	t.Cleanup(srv.Close)
	return srv, done
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestClient_RelaysEvents(t *testing.T) {
	// Arrange
	events := make(chan []byte, 2)
	srv, _ := startRelay(t, events)
	conn := dial(t, srv)
	defer conn.Close()

	// Act
	events <- []byte(`{"type":"level_up"}`)

	// Assert
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.JSONEq(t, `{"type":"level_up"}`, string(msg))
}

func TestClient_ClosesWhenEventsClosed(t *testing.T) {
	events := make(chan []byte)
	srv, done := startRelay(t, events)
	conn := dial(t, srv)
	defer conn.Close()

	close(events)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after events channel closed")
	}
}

func TestClient_StopsWhenPeerDisconnects(t *testing.T) {
	events := make(chan []byte)
	srv, done := startRelay(t, events)
	conn := dial(t, srv)

	require.NoError(t, conn.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after peer disconnect")
	}
}
