// Package whisper backs the transcription capability with the OpenAI
// Whisper API.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pvolkov/babelroom/internal/domain"
	"github.com/pvolkov/babelroom/internal/provider"
)

// Ops implements provider.TranscriptionOps.
type Ops struct{}

// fileExt picks the upload filename extension the API infers format from.
func fileExt(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "webm"):
		return "webm"
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "mp3"), strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "aac"):
		return "mp3"
	case strings.Contains(mimeType, "m4a"), strings.Contains(mimeType, "mp4"):
		return "m4a"
	default:
		return "webm"
	}
}

func (Ops) Transcribe(ctx context.Context, key string, audio []byte, languageHint, mimeType string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(key))
	language := strings.ToLower(domain.LanguageName(languageHint))

	resp, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio), "audio."+fileExt(mimeType), mimeType),
		Model:    openai.AudioModelWhisper1,
		Language: openai.String(language),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Classify maps OpenAI errors onto the retry taxonomy.
func Classify(err error) provider.FailureClass {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if strings.Contains(strings.ToLower(apiErr.Message), "insufficient_quota") {
			return provider.FailureQuota
		}
		return provider.StatusClass(apiErr.StatusCode)
	}
	return provider.MessageClass(err)
}
