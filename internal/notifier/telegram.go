package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"PriceSentinel/internal/logger"

	"github.com/go-resty/resty/v2"
)

const telegramBaseURL = "https://api.telegram.org"

// Config holds the Telegram bot settings.
type Config struct {
	Token         string        `yaml:"token"`
	BaseURL       string        `yaml:"base_url" default:"https://api.telegram.org"`
	ProxyURL      string        `yaml:"proxy_url"`
	ReportChatID  int64         `yaml:"report_chat_id"`
	PollTimeout   time.Duration `yaml:"poll_timeout" default:"30s"`
	SendTimeout   time.Duration `yaml:"send_timeout" default:"30s"`
	MaxConcurrent int           `yaml:"max_concurrent" default:"16" validate:"min=1"`
}

// TelegramBot talks to the Telegram Bot API.
type TelegramBot struct {
	cfg    Config
	client *resty.Client
	log    *logger.Logger
}

// NewTelegramBot creates a bot client with optional proxy support.
func NewTelegramBot(cfg Config, log *logger.Logger) *TelegramBot {
	if cfg.BaseURL == "" {
		cfg.BaseURL = telegramBaseURL
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 16
	}
	if log == nil {
		log = logger.Nop()
	}

	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("%s/bot%s", cfg.BaseURL, cfg.Token))
	if cfg.ProxyURL != "" {
		client.SetProxy(cfg.ProxyURL)
	}
	return &TelegramBot{cfg: cfg, client: client, log: log.With("telegram")}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// MaxMessageLength is the sendMessage text limit in characters.
const MaxMessageLength = 4096

// Send posts a plain-text message to chatID, split into several messages
// when it exceeds MaxMessageLength.
func (t *TelegramBot) Send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, MaxMessageLength) {
		if err := t.sendMessage(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramBot) sendMessage(ctx context.Context, chatID int64, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.SendTimeout)
	defer cancel()

	var out apiResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": strconv.FormatInt(chatID, 10),
			"text":    text,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring to
// break after the last newline inside each chunk.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}

// Report sends text to the configured report chat. It is a no-op when no
// report chat is configured.
func (t *TelegramBot) Report(ctx context.Context, text string) error {
	if t.cfg.ReportChatID == 0 {
		return nil
	}
	return t.Send(ctx, t.cfg.ReportChatID, text)
}
