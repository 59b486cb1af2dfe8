package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"PriceSentinel/internal/api"
	"PriceSentinel/internal/chat"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/forecast"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/series"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// ErrMissingConfig means a value required by the selected command is unset.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all application configuration.
type Config struct {
	Log        logger.Config    `yaml:"log"`
	Series     series.Config    `yaml:"series"`
	Collector  collector.Config `yaml:"collector"`
	Forecast   forecast.Config  `yaml:"forecast"`
	HTTP       api.ServerConfig `yaml:"http"`
	Chat       chat.Config      `yaml:"chat"`
	Telegram   notifier.Config  `yaml:"telegram"`
	Schedule   scheduler.Config `yaml:"schedule"`
	Intent     IntentConfig     `yaml:"intent"`
	Prediction PredictionConfig `yaml:"prediction"`
	Proxy      string           `yaml:"proxy"`
}

// IntentConfig holds the keyword sets of the intent router.
type IntentConfig struct {
	TopicKeywords  []string `yaml:"topic_keywords" default:"[\"bitcoin\",\"btc\"]" validate:"min=1"`
	ActionKeywords []string `yaml:"action_keywords" default:"[\"price\",\"prediction\",\"forecast\",\"trend\",\"signal\"]" validate:"min=1"`
}

// PredictionConfig locates the prediction endpoint used by the bot.
type PredictionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout" default:"90s"`
}

// Path resolves the config file path: flag value, then CONFIG_PATH, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load applies defaults, then the YAML file (optional), then .env and the
// process environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Proxy != "" {
		if cfg.Collector.ProxyURL == "" {
			cfg.Collector.ProxyURL = cfg.Proxy
		}
		if cfg.Telegram.ProxyURL == "" {
			cfg.Telegram.ProxyURL = cfg.Proxy
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"NIXTLA_API_KEY":   &c.Forecast.APIKey,
		"NIXTLA_BASE_URL":  &c.Forecast.BaseURL,
		"NILLION_BASE_URL": &c.Chat.BaseURL,
		"NILLION_API_KEY":  &c.Chat.APIKey,
		"ANALYSIS_API_URL": &c.Prediction.URL,
		"TELEGRAM_TOKEN":   &c.Telegram.Token,
		"SERIES_PATH":      &c.Series.Path,
		"SERIES_BACKEND":   &c.Series.Backend,
		"SQLITE_PATH":      &c.Series.SQLitePath,
		"LOG_LEVEL":        &c.Log.Level,
		"HTTPS_PROXY":      &c.Proxy,
		"CHAT_PROVIDER":    &c.Chat.Provider,
		"CHAT_MODEL":       &c.Chat.Model,
		"GEMINI_API_KEY":   &c.Chat.GeminiAPIKey,
		"PRICE_SOURCE":     &c.Collector.Source,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("TELEGRAM_REPORT_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_REPORT_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.ReportChatID = id
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RUN_ON_START %q: %w", v, err)
		}
		c.Schedule.RunOnStart = on
	}
	return nil
}

// ValidateServe checks what the HTTP prediction service needs.
func (c *Config) ValidateServe() error {
	return missing(map[string]string{
		"NIXTLA_API_KEY": c.Forecast.APIKey,
	})
}

// ValidatePredict checks what a one-shot local prediction needs.
func (c *Config) ValidatePredict() error {
	return c.ValidateServe()
}

// ValidateBot checks what the conversational bot needs.
func (c *Config) ValidateBot() error {
	required := map[string]string{
		"ANALYSIS_API_URL": c.Prediction.URL,
		"TELEGRAM_TOKEN":   c.Telegram.Token,
	}
	if c.Chat.Provider == "gemini" {
		required["GEMINI_API_KEY"] = c.Chat.GeminiAPIKey
	} else {
		required["NILLION_BASE_URL"] = c.Chat.BaseURL
		required["NILLION_API_KEY"] = c.Chat.APIKey
	}
	return missing(required)
}

// ValidateUpdate checks what the daily series update needs.
func (c *Config) ValidateUpdate() error {
	path := c.Series.Path
	if c.Series.Backend == "sqlite" {
		path = c.Series.SQLitePath
	}
	return missing(map[string]string{"SERIES_PATH": path})
}

// missing reports every empty value, sorted by name.
func missing(values map[string]string) error {
	var names []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(names, ", "))
}
