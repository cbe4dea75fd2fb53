package provider

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/domain"
)

const defaultTranslateTimeout = 15 * time.Second

// TranslationOps is the vendor seam for text translation and language
// detection. key is the credential selected by the executor for this attempt.
type TranslationOps interface {
	Translate(ctx context.Context, key, text, sourceLang, targetLang string) (string, error)
	DetectLanguage(ctx context.Context, key, text string) (string, error)
}

// Translator is best-effort: message delivery is never blocked on it.
type Translator struct {
	ops      TranslationOps
	exec     *Executor
	fallback string
	timeout  time.Duration
}

func NewTranslator(ops TranslationOps, exec *Executor, fallbackLang string, timeout time.Duration) *Translator {
	if timeout <= 0 {
		timeout = defaultTranslateTimeout
	}
	if fallbackLang == "" {
		fallbackLang = "en"
	}
	return &Translator{ops: ops, exec: exec, fallback: fallbackLang, timeout: timeout}
}

// Translate returns the translated text, or the original unchanged when the
// source and target match or the provider fails after all retries and
// rotations.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	if sourceLang == targetLang || strings.TrimSpace(text) == "" {
		return text
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var out string
	err := t.exec.Execute(ctx, func(ctx context.Context, key string) error {
		s, err := t.ops.Translate(ctx, key, text, sourceLang, targetLang)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(s)
		return nil
	})
	if err != nil || out == "" {
		log.Warn().Str("module", "provider.translator").
			Str("source", sourceLang).Str("target", targetLang).Err(err).
			Msg("translation degraded to original text")
		return text
	}
	return out
}

// DetectLanguage returns a code from the supported set, or the configured
// fallback when detection fails or yields something we do not handle.
func (t *Translator) DetectLanguage(ctx context.Context, text string) string {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var out string
	err := t.exec.Execute(ctx, func(ctx context.Context, key string) error {
		s, err := t.ops.DetectLanguage(ctx, key, text)
		if err != nil {
			return err
		}
		out = strings.ToLower(strings.TrimSpace(s))
		return nil
	})
	if err != nil || !domain.KnownLanguage(out) {
		return t.fallback
	}
	return out
}
