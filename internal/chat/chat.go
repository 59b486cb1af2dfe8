package chat

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SystemInstruction is sent ahead of every general-chat message.
const SystemInstruction = "You are a helpful AI assistant. Answer the user's question."

// ErrChatBackend wraps every completion failure.
var ErrChatBackend = errors.New("chat backend error")

// Backend returns one completion for a system instruction and a user turn.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config selects and configures the chat provider.
type Config struct {
	Provider     string        `yaml:"provider" default:"openai" validate:"oneof=openai gemini"`
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	Timeout      time.Duration `yaml:"timeout" default:"60s"`
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewEinoBackend(ctx, cfg)
	case "gemini":
		return NewGeminiBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

func backendError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrChatBackend, fmt.Sprintf(format, args...))
}
