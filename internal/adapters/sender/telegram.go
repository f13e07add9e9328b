package sender

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"
	"txrelay/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

//go:generate mockery --name TelegramBot

// TelegramBot is the subset of *bot.Bot the sender needs.
type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
}

// DefaultTypingInterval stays below the few seconds after which Telegram hides a chat action.
const DefaultTypingInterval = 4 * time.Second

// TelegramMessageLimit is the maximum message length in UTF-16 code units.
const TelegramMessageLimit = 4096

type Telegram struct {
	bot            TelegramBot
	typingInterval time.Duration
}

func NewTelegram(bot TelegramBot, typingInterval time.Duration) *Telegram {
	if typingInterval <= 0 {
		typingInterval = DefaultTypingInterval
	}

	return &Telegram{bot: bot, typingInterval: typingInterval}
}

func (s *Telegram) RegisterWebhook(ctx context.Context, callbackURL, secretToken string) error {
	if callbackURL == "" {
		return domain.ErrMissingWebhookURL
	}

	_, err := s.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         callbackURL,
		SecretToken: secretToken,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", redactURL(err))
	}

	log.Info().Str("url", callbackURL).Msg("webhook registered")

	return nil
}

// SendMessage sends text to the chat, split into as many messages as the length limit requires.
func (s *Telegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	chunks := splitMessage(text, TelegramMessageLimit)
	if len(chunks) > 1 {
		log.Ctx(ctx).Debug().Int("chunks", len(chunks)).Msg("splitting long reply")
	}

	for _, chunk := range chunks {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, redactURL(err))
		}
	}

	return nil
}

func (s *Telegram) SignalTyping(ctx context.Context, chatID int64) error {
	_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		return fmt.Errorf("failed to send typing action: %w", redactURL(err))
	}

	return nil
}

func (s *Telegram) LoopTyping(ctx context.Context, chatID int64) error {
	l := log.Ctx(ctx).With().Int64("chatId", chatID).Logger()
	l.Debug().Msg("starting action routine")

	ticker := time.NewTicker(s.typingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Debug().Msg("done, stopping action routine")
			return nil
		default:
		}

		l.Debug().Msg("transmitting action")
		if err := s.SignalTyping(ctx, chatID); err != nil {
			if ctx.Err() != nil {
				l.Debug().Msg("action interrupted by cancellation")
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			l.Debug().Msg("done, stopping action routine")
			return nil
		case <-ticker.C:
		}
	}
}

// splitMessage cuts text into chunks of at most limit UTF-16 code units, preferring to break after a newline.
func splitMessage(text string, limit int) []string {
	var chunks []string

	for text != "" {
		cut, size := 0, 0
		for cut < len(text) {
			r, width := utf8.DecodeRuneInString(text[cut:])
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			if size+n > limit && cut > 0 {
				break
			}
			size += n
			cut += width
		}

		if cut == len(text) {
			chunks = append(chunks, text)
			break
		}

		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}

		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}

	return chunks
}

// redactURL drops the request URL from transport errors. Bot API URLs embed the bot token.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
