package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/core"
	"github.com/pvolkov/babelroom/internal/domain"
)

// handleJoin validates durable membership, registers presence, pushes
// history, and announces the arrival.
func (ctl *Controller) handleJoin(ctx context.Context, s *session, data []byte) {
	var p struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Language string `json:"language,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(s, "bad_payload", "join requires roomId")
		return
	}
	roomID := domain.RoomID(p.RoomID)

	room, err := ctl.Store.RoomByID(ctx, roomID)
	if err != nil {
		ctl.sendError(s, "room_not_found", "room does not exist")
		return
	}
	member, err := ctl.Store.IsMember(ctx, roomID, s.userID)
	if err != nil {
		ctl.sendError(s, "internal", "membership check failed")
		return
	}
	if !member {
		ctl.sendError(s, "not_authorized", "not a member of this room")
		return
	}

	// Explicit language wins; the stored preference seeds the rest.
	language := p.Language
	if language == "" || !domain.KnownLanguage(language) {
		if u, err := ctl.Store.UserByID(ctx, s.userID); err == nil {
			language = u.PreferredLanguage
		} else {
			language = "en"
		}
	}
	s.language = language

	ctl.Registry.Join(roomID, s.connID, s.userID, s.username, language, s.conn)
	log.Info().Str("module", "signal").Str("conn", string(s.connID)).
		Str("room", p.RoomID).Str("lang", language).Msg("join")

	ctl.sendJSON(s, core.JoinedEvent{
		Type:     core.EvtJoined,
		RoomID:   room.ID,
		RoomName: room.Name,
		Language: language,
	})

	history, err := ctl.Store.ListByRoom(ctx, roomID, ctl.HistoryLimit)
	if err == nil {
		ctl.sendJSON(s, core.HistoryEvent{Type: core.EvtHistory, RoomID: roomID, Messages: history})
	}

	ctl.Dispatcher.NotifyJoined(s.connID, roomID, s.userID, s.username)
}

// handleDisconnect runs once from the readPump teardown.
func (ctl *Controller) handleDisconnect(s *session) {
	roomID, userID, username, ok := ctl.Registry.Leave(s.connID)
	if !ok || roomID == "" {
		return
	}
	ctl.Dispatcher.NotifyLeft(roomID, userID, username)
}
