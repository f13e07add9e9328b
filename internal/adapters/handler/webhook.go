package handler

import (
	"crypto/subtle"
	"net/http"
	"txrelay/internal/core/domain"
	"txrelay/internal/core/port"

	"github.com/go-telegram/bot/models"
	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SecretTokenHeader carries the secret_token given to setWebhook on every delivery.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type statusResponse struct {
	Status domain.Status `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Webhook struct {
	updates     port.UpdateHandler
	secretToken string
}

func NewWebhook(updates port.UpdateHandler, secretToken string) *Webhook {
	return &Webhook{updates: updates, secretToken: secretToken}
}

func (h *Webhook) Handle(c echo.Context) error {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			log.Warn().Err(err).Msg("failed to generate request id")
		}
		requestID = id.String()
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)
	}

	l := log.With().Str("requestId", requestID).Logger()
	ctx := l.WithContext(c.Request().Context())

	if h.secretToken != "" {
		got := c.Request().Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secretToken)) != 1 {
			webhookUpdates.WithLabelValues("unauthorized").Inc()
			l.Warn().Msg("rejected update with invalid secret token")
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid secret token"})
		}
	}

	var update models.Update
	if err := c.Bind(&update); err != nil {
		webhookUpdates.WithLabelValues("bad_request").Inc()
		l.Warn().Err(err).Msg("failed to decode update")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid update payload"})
	}

	l.Debug().Int64("updateId", update.ID).Msg("received update")

	status, err := h.updates.Handle(ctx, toDomainUpdate(&update))
	if err != nil {
		webhookUpdates.WithLabelValues("send_failed").Inc()
		l.Debug().Err(err).Msg("update handling failed")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrSendingReplyFailed.Error()})
	}

	if status == domain.StatusNoMessage {
		webhookUpdates.WithLabelValues("no_message").Inc()
	} else {
		webhookUpdates.WithLabelValues("ok").Inc()
	}

	return c.JSON(http.StatusOK, statusResponse{Status: status})
}

func toDomainUpdate(update *models.Update) domain.Update {
	if update.Message == nil {
		return domain.Update{}
	}

	msg := update.Message
	message := &domain.Message{
		ID:       msg.ID,
		ChatID:   msg.Chat.ID,
		ChatType: string(msg.Chat.Type),
		Text:     msg.Text,
	}

	if msg.From != nil {
		message.From = &domain.User{
			ID:           msg.From.ID,
			FirstName:    msg.From.FirstName,
			LastName:     msg.From.LastName,
			Username:     msg.From.Username,
			LanguageCode: msg.From.LanguageCode,
		}
	}

	return domain.Update{Message: message}
}
