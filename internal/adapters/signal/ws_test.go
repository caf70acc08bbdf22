package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voicebridge/internal/app"
	"voicebridge/internal/audio"
)

func newWSServer(t *testing.T, pingPeriod time.Duration) *httptest.Server {
	t.Helper()

	registry := app.NewRegistry()
	clips, err := audio.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctl := NewSignalWSController(registry, app.NewDispatcher(registry, &recordingQueue{}), clips, Options{
		PingPeriod: pingPeriod,
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", "test-sid")
		ctl.HandleSignal(context.Background(), c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketConnectAndPing(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t, time.Minute)
	conn := dialWS(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if ev["type"] != "connected" {
		t.Fatalf("expected connected event first, got %v", ev)
	}

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if ev["type"] != "pong" {
		t.Fatalf("expected pong, got %v", ev)
	}
}

func TestWebSocketDropsUnresponsivePeer(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t, 50*time.Millisecond)
	conn := dialWS(t, srv)

	// Read nothing: the client never processes the server's pings, so no
	// pongs go back and the server's read deadline expires.
	time.Sleep(500 * time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var err error
	for i := 0; i < 16; i++ {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("server should have closed the connection of a peer that never pongs")
	}
}
