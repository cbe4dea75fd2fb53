// Package gemini backs the translation and synthesis capabilities with the
// Gemini API. A client is built per attempt because the credential comes
// from the rotating pool.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pvolkov/babelroom/internal/domain"
	"github.com/pvolkov/babelroom/internal/provider"
)

const (
	textModel = "gemini-2.5-flash"
	ttsModel  = "gemini-2.5-flash-preview-tts"
)

// Ops implements provider.TranslationOps and provider.SynthesisOps.
type Ops struct{}

func (Ops) client(ctx context.Context, key string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
}

func (o Ops) Translate(ctx context.Context, key, text, sourceLang, targetLang string) (string, error) {
	client, err := o.client(ctx, key)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Provide only the translated text, maintaining the tone and context. Do not add explanations or notes:\n\n%s",
		domain.LanguageName(sourceLang), domain.LanguageName(targetLang), text,
	)
	resp, err := client.Models.GenerateContent(ctx, textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (o Ops) DetectLanguage(ctx context.Context, key, text string) (string, error) {
	client, err := o.client(ctx, key)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(
		"Detect the language of this text and respond with only the ISO 639-1 language code. Valid codes are: %s. Text: %s",
		strings.Join(domain.LanguageCodes(), ", "), text,
	)
	resp, err := client.Models.GenerateContent(ctx, textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (o Ops) Synthesize(ctx context.Context, key, text, languageCode, voice string) (provider.Audio, error) {
	client, err := o.client(ctx, key)
	if err != nil {
		return provider.Audio{}, err
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, ttsModel, genai.Text(text), cfg)
	if err != nil {
		return provider.Audio{}, err
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "audio/") {
				return provider.Audio{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return provider.Audio{}, provider.ErrNoAudio
}

// Classify maps Gemini errors onto the retry taxonomy.
func Classify(err error) provider.FailureClass {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.StatusClass(apiErr.Code)
	}
	return provider.MessageClass(err)
}
