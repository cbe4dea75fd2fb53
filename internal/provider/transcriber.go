package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/domain"
)

const (
	defaultTranscribeTimeout = 60 * time.Second
	defaultAudioMIME         = "audio/webm"
)

// TranscriptionOps is the vendor seam for speech-to-text.
type TranscriptionOps interface {
	Transcribe(ctx context.Context, key string, audio []byte, languageHint, mimeType string) (string, error)
}

// Transcriber never fails outright: callers must always have something to
// persist for a voice message, so a final provider failure yields a
// placeholder embedding the language hint.
type Transcriber struct {
	ops     TranscriptionOps
	exec    *Executor
	timeout time.Duration
}

func NewTranscriber(ops TranscriptionOps, exec *Executor, timeout time.Duration) *Transcriber {
	if timeout <= 0 {
		timeout = defaultTranscribeTimeout
	}
	return &Transcriber{ops: ops, exec: exec, timeout: timeout}
}

// NormalizeMIME strips codec parameters from a declared MIME type; providers
// reject codec-qualified strings like "audio/webm;codecs=opus". A blank or
// junk input falls back to audio/webm.
func NormalizeMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.TrimSpace(base)
	if base == "" || !strings.Contains(base, "/") {
		return defaultAudioMIME
	}
	return base
}

// Transcribe converts audio to text. On exhaustion or unrecoverable failure
// it returns the placeholder, never an error.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, languageHint, mimeType string) string {
	base := NormalizeMIME(mimeType)
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var out string
	err := t.exec.Execute(ctx, func(ctx context.Context, key string) error {
		s, err := t.ops.Transcribe(ctx, key, audio, languageHint, base)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(s)
		return nil
	})
	if err != nil {
		log.Error().Str("module", "provider.transcriber").Str("mime", base).Err(err).Msg("transcription unavailable")
		return Placeholder(languageHint)
	}
	return out
}

// Placeholder is the persisted stand-in for an untranscribable voice message.
func Placeholder(languageHint string) string {
	return fmt.Sprintf("🎤 [Voice message in %s] - transcription unavailable", domain.LanguageName(languageHint))
}
