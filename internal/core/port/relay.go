package port

import (
	"context"
	"txrelay/internal/core/domain"
)

type UpdateHandler interface {
	// Handle processes one inbound update and reports the acknowledgement status.
	Handle(ctx context.Context, update domain.Update) (domain.Status, error)
}
