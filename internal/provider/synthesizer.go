package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrTextUnsuitable means the garbage filter rejected the input before
	// any provider call was made.
	ErrTextUnsuitable = errors.New("text not suitable for synthesis")
	// ErrNoAudio is returned by a backend when the provider answered without
	// an audio payload; the synthesizer falls through to the next voice.
	ErrNoAudio = errors.New("no audio payload in response")
	// ErrSynthesisFailed wraps the terminal failure after all voices and
	// retries. Callers treat audio as optional and continue without it.
	ErrSynthesisFailed = errors.New("synthesis failed")
)

const (
	defaultSynthesizeTimeout = 45 * time.Second
	minSynthesisLen          = 3
	minDistinctRunes         = 3
	repetitionLenThreshold   = 10
	maxSynthesisLen          = 900
)

// defaultVoices is the fallthrough order tried per request.
var defaultVoices = []string{"Kore", "Puck", "Charon", "Orus"}

// Audio is a synthesized payload.
type Audio struct {
	Data     []byte
	MIMEType string
}

// SynthesisOps is the vendor seam for text-to-speech.
type SynthesisOps interface {
	Synthesize(ctx context.Context, key, text, languageCode, voice string) (Audio, error)
}

type Synthesizer struct {
	ops     SynthesisOps
	exec    *Executor
	voices  []string
	timeout time.Duration
}

func NewSynthesizer(ops SynthesisOps, exec *Executor, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultSynthesizeTimeout
	}
	return &Synthesizer{ops: ops, exec: exec, voices: defaultVoices, timeout: timeout}
}

var (
	bracketed    = regexp.MustCompile(`\[.*?\]`)
	repeatedDots = regexp.MustCompile(`\.{3,}`)
)

// CleanText strips markers and rejects garbage. It returns "" when the text
// should not reach the provider at all: shorter than the minimum after
// cleaning, or a long run of fewer than three distinct characters.
func CleanText(text string) string {
	cleaned := bracketed.ReplaceAllString(text, "")
	cleaned = repeatedDots.ReplaceAllString(cleaned, ".")
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) < minSynthesisLen {
		return ""
	}
	distinct := map[rune]struct{}{}
	for _, r := range runes {
		distinct[r] = struct{}{}
	}
	if len(distinct) < minDistinctRunes && len(runes) > repetitionLenThreshold {
		return ""
	}
	if len(runes) > maxSynthesisLen {
		cleaned = string(runes[:maxSynthesisLen])
	}
	return cleaned
}

// Synthesize produces speech audio for text, trying each voice in order and
// rotating credentials inside each attempt. Quota exhaustion across the whole
// pool aborts immediately; any other per-voice failure falls through to the
// next voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text, languageCode string) (Audio, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return Audio{}, ErrTextUnsuitable
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lastErr error
	for _, voice := range s.voices {
		var audio Audio
		err := s.exec.Execute(ctx, func(ctx context.Context, key string) error {
			a, err := s.ops.Synthesize(ctx, key, cleaned, languageCode, voice)
			if err != nil {
				return err
			}
			audio = a
			return nil
		})
		if err == nil {
			if len(audio.Data) == 0 {
				log.Warn().Str("module", "provider.synthesizer").Str("voice", voice).Msg("empty audio, trying next voice")
				continue
			}
			return audio, nil
		}
		if errors.Is(err, ErrAllKeysExhausted) {
			return Audio{}, err
		}
		if errors.Is(err, ErrNoAudio) {
			log.Warn().Str("module", "provider.synthesizer").Str("voice", voice).Msg("no audio from voice, trying next")
			lastErr = err
			continue
		}
		lastErr = err
	}
	return Audio{}, fmt.Errorf("%w: %v", ErrSynthesisFailed, lastErr)
}
