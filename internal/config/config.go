package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrMissingLLMURL   = errors.New("LLM_URL is not set")
	ErrMissingBotToken = errors.New("BOT_TOKEN is not set")
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	LLM      LLM
	Telegram Telegram
	Server   Server
	Log      Log
}

type LLM struct {
	URL          string
	Provider     string
	Model        string
	APIKey       string
	Envelope     string
	SystemPrompt string
	// Timeout bounds a single extraction request. Zero leaves the HTTP client without a deadline.
	Timeout time.Duration
}

type Telegram struct {
	Token          string
	APIURL         string
	WebhookURL     string
	WebhookSecret  string
	TypingInterval time.Duration
}

type Server struct {
	Address string
}

type Log struct {
	Level  string
	Format string
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"llm.url":                  "LLM_URL",
	"llm.provider":             "LLM_PROVIDER",
	"llm.model":                "LLM_MODEL",
	"llm.api_key":              "LLM_API_KEY",
	"llm.envelope":             "LLM_ENVELOPE",
	"llm.system_prompt":        "LLM_SYSTEM_PROMPT",
	"llm.timeout":              "LLM_TIMEOUT",
	"telegram.bot_token":       "BOT_TOKEN",
	"telegram.api_url":         "TELEGRAM_API_URL",
	"telegram.webhook_url":     "WEBHOOK_URL",
	"telegram.webhook_secret":  "WEBHOOK_SECRET",
	"telegram.typing_interval": "TYPING_INTERVAL",
	"server.address":           "SERVER_ADDRESS",
	"log.level":                "LOG_LEVEL",
	"log.format":               "LOG_FORMAT",
}

// Load reads dir/.env, then the optional dir/config.toml, then the environment. Environment variables win over
// the config file; variables already set in the process are never replaced by .env.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("toml")

	v.SetDefault("llm.provider", ProviderOllama)
	v.SetDefault("llm.model", "qwen2.5:3b")
	v.SetDefault("llm.envelope", "auto")
	v.SetDefault("llm.timeout", time.Duration(0))
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.typing_interval", 4*time.Second)
	v.SetDefault("server.address", "0.0.0.0:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	cfg := &Config{
		LLM: LLM{
			URL:          v.GetString("llm.url"),
			Provider:     v.GetString("llm.provider"),
			Model:        v.GetString("llm.model"),
			APIKey:       v.GetString("llm.api_key"),
			Envelope:     v.GetString("llm.envelope"),
			SystemPrompt: v.GetString("llm.system_prompt"),
			Timeout:      v.GetDuration("llm.timeout"),
		},
		Telegram: Telegram{
			Token:          v.GetString("telegram.bot_token"),
			APIURL:         v.GetString("telegram.api_url"),
			WebhookURL:     v.GetString("telegram.webhook_url"),
			WebhookSecret:  v.GetString("telegram.webhook_secret"),
			TypingInterval: v.GetDuration("telegram.typing_interval"),
		},
		Server: Server{
			Address: v.GetString("server.address"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.URL == "" {
		return ErrMissingLLMURL
	}

	if c.Telegram.Token == "" {
		return ErrMissingBotToken
	}

	switch c.LLM.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	switch c.LLM.Envelope {
	case "auto", "message", "response":
	default:
		return fmt.Errorf("unknown llm envelope %q", c.LLM.Envelope)
	}

	if c.Telegram.TypingInterval <= 0 {
		return fmt.Errorf("typing interval must be positive, got %s", c.Telegram.TypingInterval)
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm timeout must not be negative, got %s", c.LLM.Timeout)
	}

	return nil
}
