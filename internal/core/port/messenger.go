package port

import "context"

type Messenger interface {
	// SendMessage posts text to the given chat.
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SignalTyping sends a single "typing" chat action.
	SignalTyping(ctx context.Context, chatID int64) error
	// LoopTyping repeats SignalTyping until ctx is cancelled. It returns nil on cancellation and the error of the
	// first failed signal otherwise.
	LoopTyping(ctx context.Context, chatID int64) error
}

type WebhookRegistrar interface {
	// RegisterWebhook points the platform's update delivery at callbackURL.
	RegisterWebhook(ctx context.Context, callbackURL, secretToken string) error
}
