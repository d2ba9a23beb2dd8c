package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// Synthesizer renders text to MP3 via the OpenAI speech endpoint. The voice
// models are multilingual, so the language hint selects nothing beyond what
// the text itself carries.
type Synthesizer struct {
	client *openai.Client
	Model  string
	Voice  string
}

func NewSynthesizer(apiKey, model, voice string) *Synthesizer {
	return &Synthesizer{client: openai.NewClient(apiKey), Model: model, Voice: voice}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, _ string, speed float64) ([]byte, error) {
	model := openai.SpeechModel(s.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(s.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}
	return audio, nil
}
