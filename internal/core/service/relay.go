package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"txrelay/internal/core/domain"
	"txrelay/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Relay runs one update through extraction and sends the outcome back to the chat it came from.
type Relay struct {
	extractor port.Extractor
	messenger port.Messenger
}

func NewRelay(extractor port.Extractor, messenger port.Messenger) *Relay {
	return &Relay{extractor: extractor, messenger: messenger}
}

func (r *Relay) Handle(ctx context.Context, update domain.Update) (domain.Status, error) {
	if update.Message == nil {
		log.Ctx(ctx).Debug().Msg("update without message")
		return domain.StatusNoMessage, nil
	}

	message := update.Message
	l := log.Ctx(ctx).With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Logger()
	ctx = l.WithContext(ctx)

	l.Info().Msg("handling update")

	var reply strings.Builder

	if message.Text != "" {
		fmt.Fprintf(&reply, "text: %s\n", message.Text)

		tx, err := r.extract(ctx, message)
		if err != nil {
			l.Warn().Err(err).Msg("extraction failed")
			fmt.Fprintf(&reply, "error: %s\n", err)
		} else {
			reply.WriteString(tx.String())
		}
	}

	if message.From != nil {
		fmt.Fprintf(&reply, "from: %s\n", message.From.DisplayName())
	}

	text := strings.TrimRight(reply.String(), "\n")
	if text == "" {
		l.Debug().Msg("nothing to relay")
		return domain.StatusOK, nil
	}

	if err := r.messenger.SendMessage(ctx, message.ChatID, text); err != nil {
		messagesSent.WithLabelValues("error").Inc()
		l.Error().Msg(domain.ErrSendingReplyFailed.Error())
		l.Debug().Err(err).Msg("send error")
		return "", err
	}

	messagesSent.WithLabelValues("ok").Inc()
	l.Debug().Msg("reply sent")

	return domain.StatusOK, nil
}

// extract keeps the typing indicator alive for the duration of the extraction call. The indicator is stopped and
// its goroutine joined before extract returns, so no chat action can outlive the reply.
func (r *Relay) extract(ctx context.Context, message *domain.Message) (domain.Transaction, error) {
	typingCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := r.messenger.LoopTyping(typingCtx, message.ChatID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("typing indicator stopped")
		}
	}()

	defer func() {
		cancel()
		<-done
	}()

	start := time.Now()
	tx, err := r.extractor.Extract(ctx, message.Text)
	extractionDuration.Observe(time.Since(start).Seconds())
	extractionsTotal.WithLabelValues(extractionResult(err)).Inc()

	return tx, err
}

func extractionResult(err error) string {
	if err == nil {
		return "ok"
	}

	var extractionErr *domain.ExtractionError
	if errors.As(err, &extractionErr) {
		return string(extractionErr.Failure)
	}

	return "error"
}
