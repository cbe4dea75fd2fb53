package signal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/app"
	"github.com/pvolkov/babelroom/internal/domain"
)

func (ctl *Controller) handleMessage(ctx context.Context, s *session, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Content  string `json:"content"`
		Language string `json:"language,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || strings.TrimSpace(p.Content) == "" {
		ctl.sendError(s, "bad_payload", "message requires content")
		return
	}
	roomID, ok := ctl.Registry.RoomOf(s.connID)
	if !ok {
		ctl.sendError(s, "not_in_room", "join a room first")
		return
	}

	sourceLang := p.Language
	if sourceLang == "" || !domain.KnownLanguage(sourceLang) {
		sourceLang = ctl.Translator.DetectLanguage(ctx, p.Content)
	}

	if _, err := ctl.Dispatcher.SendText(ctx, s.connID, s.userID, roomID, p.Content, sourceLang); err != nil {
		ctl.reportSendError(s, err)
	}
}

func (ctl *Controller) handleAudio(ctx context.Context, s *session, data []byte) {
	var p struct {
		Type        string `json:"type"`
		AudioBase64 string `json:"audioBase64"`
		MIMEType    string `json:"mimeType"`
		Language    string `json:"language,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.AudioBase64 == "" {
		ctl.sendError(s, "bad_payload", "audio requires audioBase64")
		return
	}
	audio, err := base64.StdEncoding.DecodeString(p.AudioBase64)
	if err != nil {
		ctl.sendError(s, "bad_payload", "audioBase64 is not valid base64")
		return
	}
	roomID, ok := ctl.Registry.RoomOf(s.connID)
	if !ok {
		ctl.sendError(s, "not_in_room", "join a room first")
		return
	}

	langHint := p.Language
	if langHint == "" {
		langHint = s.language
	}

	if _, err := ctl.Dispatcher.SendAudio(ctx, s.connID, s.userID, roomID, audio, p.MIMEType, langHint); err != nil {
		ctl.reportSendError(s, err)
	}
}

// reportSendError tells the sender, and only the sender, why their message
// was rejected.
func (ctl *Controller) reportSendError(s *session, err error) {
	if errors.Is(err, app.ErrNotAuthorized) {
		ctl.sendError(s, "not_authorized", "not a member of this room")
		return
	}
	log.Error().Str("module", "signal").Str("conn", string(s.connID)).Err(err).Msg("send failed")
	ctl.sendError(s, "send_failed", "failed to send message")
}
