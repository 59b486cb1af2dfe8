package chat

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultModel is used when no model is configured for the OpenAI-compatible endpoint.
const DefaultModel = "meta-llama/Llama-3.1-8B-Instruct"

// EinoBackend talks to any OpenAI-compatible chat completion endpoint.
type EinoBackend struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewEinoBackend creates the backend from the base URL, key and model name.
func NewEinoBackend(ctx context.Context, cfg Config) (*EinoBackend, error) {
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   name,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, backendError("create chat model: %v", err)
	}
	return NewEinoBackendWithModel(cm, cfg.Timeout), nil
}

// NewEinoBackendWithModel wraps an existing eino chat model.
func NewEinoBackendWithModel(m model.BaseChatModel, timeout time.Duration) *EinoBackend {
	return &EinoBackend{model: m, timeout: timeout}
}

func (b *EinoBackend) Complete(ctx context.Context, system, user string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	msg, err := b.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", backendError("generate: %v", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", backendError("empty completion")
	}
	return msg.Content, nil
}
