package port

import (
	"context"
	"txrelay/internal/core/domain"
)

type Extractor interface {
	// Extract turns free text into a transaction record. Failures are returned as *domain.ExtractionError.
	Extract(ctx context.Context, text string) (domain.Transaction, error)
}
