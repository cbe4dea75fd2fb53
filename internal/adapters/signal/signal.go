// Package signal is the websocket shell binding one connection to the
// registry and dispatcher. No business logic lives here; it parses events,
// crosses the concurrency boundary, and writes frames back out.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/app"
	"github.com/pvolkov/babelroom/internal/core"
	"github.com/pvolkov/babelroom/internal/domain"
	"github.com/pvolkov/babelroom/internal/provider"
	"github.com/pvolkov/babelroom/internal/store"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket endpoint.
type Controller struct {
	Registry   *app.Registry
	Dispatcher *app.Dispatcher
	Store      *store.Store
	Translator *provider.Translator

	HistoryLimit int
	ReadLimit    int64
	PingPeriod   time.Duration
}

// session is the per-socket state. Owned exclusively by the pumps; the
// registry only ever sees the connection ID.
type session struct {
	connID   core.ConnID
	userID   domain.UserID
	username string
	language string
	conn     *wsConn
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
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

func (c *wsConn) Close() {
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades an authenticated request and runs the pumps. The auth
// middleware has already placed the identity on the gin context.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	userID := domain.UserID(c.GetString("user_id"))
	username := c.GetString("username")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	sess := &session{
		connID:   core.ConnID(uuid.NewString()),
		userID:   userID,
		username: username,
		conn: &wsConn{
			conn: ws,
			send: make(chan core.Frame, 64),
		},
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.connID)).
		Str("user", string(userID)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sess.conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess)
	}()
}
