package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"txrelay/internal/adapters/extractor"
	"txrelay/internal/adapters/handler"
	"txrelay/internal/adapters/sender"
	"txrelay/internal/config"
	"txrelay/internal/core/port"
	"txrelay/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Info().Msg("starting txrelay...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	setupLogging(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := bot.New(cfg.Telegram.Token,
		bot.WithSkipGetMe(),
		bot.WithServerURL(cfg.Telegram.APIURL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing telegram bot")
	}

	telegram := sender.NewTelegram(b, cfg.Telegram.TypingInterval)

	err = telegram.RegisterWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret)
	if err != nil {
		log.Error().Err(err).Msg("failed registering webhook")
	}

	ext, err := newExtractor(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing extractor")
	}

	relay := service.NewRelay(ext, telegram)
	e := handler.NewServer(handler.NewWebhook(relay, cfg.Telegram.WebhookSecret))

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("listening for updates")
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
	}
}

func setupLogging(cfg config.Log) {
	var logLevel zerolog.Level

	switch cfg.Level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func newExtractor(cfg config.LLM) (port.Extractor, error) {
	prompt := extractor.NewPrompt(cfg.SystemPrompt)
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return extractor.NewOpenAI(cfg.URL, cfg.APIKey, cfg.Model, prompt, httpClient), nil
	case config.ProviderOpenRouter:
		return extractor.NewOpenRouter(cfg.URL, cfg.APIKey, cfg.Model, prompt, httpClient), nil
	case config.ProviderOllama:
		return extractor.NewOllama(cfg.URL, cfg.Model, extractor.Envelope(cfg.Envelope), prompt, httpClient), nil
	default:
		return nil, errors.New("unsupported llm provider: " + cfg.Provider)
	}
}
