package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/domain"
)

// handleLanguageChange updates the presence cache immediately and the stored
// preference durably, so the next join seeds from the new value.
func (ctl *Controller) handleLanguageChange(ctx context.Context, s *session, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(data, &p); err != nil || !domain.KnownLanguage(p.Language) {
		ctl.sendError(s, "bad_payload", "unsupported language code")
		return
	}
	s.language = p.Language
	ctl.Registry.UpdateLanguage(s.connID, p.Language)
	if err := ctl.Store.UpdateUserLanguage(ctx, s.userID, p.Language); err != nil {
		log.Warn().Str("module", "signal").Str("user", string(s.userID)).Err(err).Msg("persist language preference")
	}
}
