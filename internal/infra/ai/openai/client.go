package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dyslexiacare/screening/internal/infra/ai/prompt"
	"github.com/dyslexiacare/screening/internal/infra/analyzers"
)

const maxTokens = 2048

// Client wraps the OpenAI API for the model-backed capabilities: narrative
// reports, handwriting text extraction, and speech transcription.
type Client struct {
	*openai.Client
	ChatModel       string
	VisionModel     string
	TranscribeModel string
}

func NewClient(apiKey, chatModel, visionModel, transcribeModel string) *Client {
	return &Client{
		Client:          openai.NewClient(apiKey),
		ChatModel:       chatModel,
		VisionModel:     visionModel,
		TranscribeModel: transcribeModel,
	}
}

// Narrate produces the narrative report JSON for a screening session payload.
func (c *Client) Narrate(ctx context.Context, sessionJSON string) (string, error) {
	model := c.ChatModel
	if model == "" {
		model = openai.GPT4oMini
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(sessionJSON)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractText asks the vision model to transcribe handwriting from the
// stored image, preserving the writer's mistakes.
func (c *Client) ExtractText(ctx context.Context, imageURL string) (string, error) {
	model := c.VisionModel
	if model == "" {
		model = openai.GPT4o
	}
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Transcribe the handwritten text in this image exactly as written, keeping any spelling mistakes or reversed letters. Reply with the transcription only.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract handwriting text: %w", err)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe runs speech-to-text over a local recording. Verbose JSON so the
// reported duration feeds the fluency metrics.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (analyzers.Transcription, error) {
	model := c.TranscribeModel
	if model == "" {
		model = openai.Whisper1
	}
	resp, err := c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return analyzers.Transcription{}, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return analyzers.Transcription{Text: resp.Text, Duration: resp.Duration}, nil
}
