package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiBackend uses the Google Gemini API.
type GeminiBackend struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiBackend creates a Gemini client with the configured API key.
func NewGeminiBackend(ctx context.Context, cfg Config) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, backendError("create gemini client: %v", err)
	}
	name := cfg.Model
	if name == "" || name == DefaultModel {
		name = defaultGeminiModel
	}
	return &GeminiBackend{client: client, model: name, timeout: cfg.Timeout}, nil
}

func (b *GeminiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	m := b.client.GenerativeModel(b.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", backendError("generate content: %v", err)
	}
	return responseText(resp)
}

// Close releases the underlying client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", backendError("no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", backendError("empty completion")
	}
	return sb.String(), nil
}
