package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := ctl.PingPeriod
	if ping <= 0 {
		ping = 54 * time.Second
	}
	ticker := time.NewTicker(ping)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, s *session) {
	defer func() {
		ctl.handleDisconnect(s)
		s.conn.Close()
		log.Info().Str("module", "signal").Str("conn", string(s.connID)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := s.conn.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleEvent(ctx, s, data)
		}
	}
}

func (ctl *Controller) handleEvent(ctx context.Context, s *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(s, "bad_payload", "malformed event")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(ctx, s, data)
	case "message:send":
		ctl.handleMessage(ctx, s, data)
	case "audio:send":
		ctl.handleAudio(ctx, s, data)
	case "typing:start":
		ctl.Dispatcher.RelayTyping(s.connID, s.userID, s.username, true)
	case "typing:stop":
		ctl.Dispatcher.RelayTyping(s.connID, s.userID, s.username, false)
	case "language:change":
		ctl.handleLanguageChange(ctx, s, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(s *session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = s.conn.TrySend(core.Frame(b))
}

func (ctl *Controller) sendError(s *session, code, msg string) {
	ctl.sendJSON(s, core.ErrorEvent{Type: core.EvtError, Code: code, Message: msg})
}
