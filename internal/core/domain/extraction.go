package domain

import "fmt"

// ExtractionFailure names the stage at which an extraction call broke down.
type ExtractionFailure string

const (
	FailureTransport         ExtractionFailure = "transport"
	FailureUpstream          ExtractionFailure = "upstream"
	FailureMalformedEnvelope ExtractionFailure = "malformed_envelope"
	FailureSchemaDecode      ExtractionFailure = "schema_decode"
)

// ExtractionError is returned by every extractor backend. StatusCode and Body are set for upstream failures,
// Content holds the raw model answer for schema decode failures.
type ExtractionError struct {
	Failure    ExtractionFailure
	StatusCode int
	Body       string
	Content    string
	Err        error
}

func (e *ExtractionError) Error() string {
	switch e.Failure {
	case FailureTransport:
		return fmt.Sprintf("LLM request failed: %v", e.Err)
	case FailureUpstream:
		return fmt.Sprintf("LLM HTTP error %d. Body: %s", e.StatusCode, e.Body)
	case FailureMalformedEnvelope:
		if e.Err != nil {
			return fmt.Sprintf("malformed LLM response: %v", e.Err)
		}
		return "LLM response has neither message.content nor response"
	case FailureSchemaDecode:
		return fmt.Sprintf("failed to decode LLM answer %q: %v", e.Content, e.Err)
	default:
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
