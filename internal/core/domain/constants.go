package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrMissingWebhookURL  = errors.New("webhook url is not configured")
)
