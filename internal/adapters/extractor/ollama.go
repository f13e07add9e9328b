package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"txrelay/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Envelope selects which field of the chat endpoint's reply carries the model's answer.
type Envelope string

const (
	// EnvelopeAuto reads message.content and falls back to the top level response field.
	EnvelopeAuto     Envelope = "auto"
	EnvelopeMessage  Envelope = "message"
	EnvelopeResponse Envelope = "response"
)

const DefaultModel = "qwen2.5:3b"

// Ollama talks to an Ollama style {url}/chat endpoint.
type Ollama struct {
	client   *http.Client
	endpoint string
	model    string
	envelope Envelope
	prompt   *Prompt
}

func NewOllama(baseURL, model string, envelope Envelope, prompt *Prompt, client *http.Client) *Ollama {
	if model == "" {
		model = DefaultModel
	}

	if envelope == "" {
		envelope = EnvelopeAuto
	}

	if client == nil {
		client = &http.Client{}
	}

	return &Ollama{
		client:   client,
		endpoint: strings.TrimSuffix(baseURL, "/") + "/chat",
		model:    model,
		envelope: envelope,
		prompt:   prompt,
	}
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Format   string         `json:"format,omitempty"`
	Options  *ollamaOptions `json:"options,omitempty"`
	Stream   bool           `json:"stream"`
}

type ollamaChatResponse struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
	Response *string `json:"response"`
}

func (o *Ollama) Extract(ctx context.Context, text string) (domain.Transaction, error) {
	payloadBuf := new(bytes.Buffer)
	err := json.NewEncoder(payloadBuf).Encode(ollamaChatRequest{
		Model:    o.model,
		Messages: o.prompt.messages(text),
		Format:   "json",
		Options:  &ollamaOptions{Temperature: 0},
		Stream:   false,
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("error encoding LLM request: %w", err)
	}

	body, err := o.postChatRequest(ctx, payloadBuf)
	if err != nil {
		return domain.Transaction{}, err
	}

	log.Ctx(ctx).Debug().Bytes("body", body).Msg("LLM response")

	content, err := o.unwrap(body)
	if err != nil {
		return domain.Transaction{}, err
	}

	return decodeTransaction(content)
}

func (o *Ollama) postChatRequest(ctx context.Context, payloadBuf *bytes.Buffer) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, payloadBuf)
	if err != nil {
		return nil, &domain.ExtractionError{Failure: domain.FailureTransport, Err: err}
	}

	req.Header.Add("Content-Type", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return nil, &domain.ExtractionError{Failure: domain.FailureTransport, Err: err}
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.ExtractionError{Failure: domain.FailureTransport, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &domain.ExtractionError{
			Failure:    domain.FailureUpstream,
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

var errNoContent = errors.New("LLM response has no content field")

func (o *Ollama) unwrap(body []byte) (string, error) {
	var envelope ollamaChatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &domain.ExtractionError{Failure: domain.FailureMalformedEnvelope, Err: err}
	}

	if o.envelope != EnvelopeResponse && envelope.Message != nil && envelope.Message.Content != nil {
		return *envelope.Message.Content, nil
	}

	if o.envelope != EnvelopeMessage && envelope.Response != nil {
		return *envelope.Response, nil
	}

	if o.envelope == EnvelopeAuto {
		return "", &domain.ExtractionError{Failure: domain.FailureMalformedEnvelope}
	}

	return "", &domain.ExtractionError{
		Failure: domain.FailureMalformedEnvelope,
		Err:     fmt.Errorf("%w: expected %s", errNoContent, o.envelope),
	}
}
