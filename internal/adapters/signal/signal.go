package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"voicebridge/internal/app"
	"voicebridge/internal/audio"
	"voicebridge/internal/core"
	"voicebridge/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Options tunes the WebSocket controller.
type Options struct {
	// ReadLimit caps inbound message size. Audio events carry base64
	// payloads, so this must stay generous.
	ReadLimit int64
	// PingPeriod is the interval between transport pings; a peer whose pong
	// does not arrive before the read deadline expires is dropped.
	PingPeriod time.Duration
	// DefaultLanguage is assumed when a client joins without declaring one.
	DefaultLanguage domain.Language
	// AudioRate caps audio_data events per session within AudioRateWindow.
	AudioRate       int
	AudioRateWindow time.Duration
}

type SignalWSController struct {
	Registry   *app.Registry
	Dispatcher *app.Dispatcher
	Clips      *audio.Store

	opts    Options
	limiter *AudioRateLimiter
}

func NewSignalWSController(registry *app.Registry, dispatcher *app.Dispatcher, clips *audio.Store, opts Options) *SignalWSController {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 10 << 20
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 30 * time.Second
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = domain.DefaultLanguage
	}
	if opts.AudioRate <= 0 {
		opts.AudioRate = 30
	}
	if opts.AudioRateWindow <= 0 {
		opts.AudioRateWindow = 10 * time.Second
	}
	return &SignalWSController{
		Registry:   registry,
		Dispatcher: dispatcher,
		Clips:      clips,
		opts:       opts,
		limiter:    NewAudioRateLimiter(opts.AudioRate, opts.AudioRateWindow),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// BroadcastFrom sends v to every room mate of sid except sid itself.
func (ctl *SignalWSController) BroadcastFrom(sid domain.SessionID, v any) {
	roomID, ok := ctl.Registry.RoomOf(sid)
	if !ok {
		return
	}
	for _, member := range ctl.Registry.MembersOf(roomID) {
		if member == sid {
			continue
		}
		if conn, ok := ctl.Registry.ConnOf(member); ok {
			ctl.sendAny(conn, v)
		}
	}
}

// BroadcastRoom sends v to every member of the room, sender included.
func (ctl *SignalWSController) BroadcastRoom(roomID domain.RoomID, v any) {
	for _, member := range ctl.Registry.MembersOf(roomID) {
		if conn, ok := ctl.Registry.ConnOf(member); ok {
			ctl.sendAny(conn, v)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.opts.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctl.Registry.Bind(sid, conn)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()

	ctl.sendJSON(conn, map[string]any{
		"type":    "connected",
		"message": "Connected to translation server",
	})
}
