package extractor

import (
	"encoding/json"
	"errors"
	"txrelay/internal/core/domain"
)

var errNoChoices = errors.New("LLM response has no choices")

func decodeTransaction(content string) (domain.Transaction, error) {
	var tx domain.Transaction
	if err := json.Unmarshal([]byte(content), &tx); err != nil {
		return domain.Transaction{}, &domain.ExtractionError{
			Failure: domain.FailureSchemaDecode,
			Content: content,
			Err:     err,
		}
	}

	if tx.Date != nil {
		utc := tx.Date.UTC()
		tx.Date = &utc
	}

	return tx, nil
}
