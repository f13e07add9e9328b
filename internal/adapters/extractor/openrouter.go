package extractor

import (
	"context"
	"errors"
	"math"
	"net/http"
	"txrelay/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

type openRouterClient interface {
	CreateChatCompletion(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

type OpenRouter struct {
	client openRouterClient
	model  string
	prompt *Prompt
}

func NewOpenRouter(baseURL, apiKey, model string, prompt *Prompt, httpClient *http.Client) *OpenRouter {
	config := openrouter.DefaultConfig(apiKey)
	config.XTitle = "txrelay"
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenRouter{
		model:  model,
		prompt: prompt,
		client: openrouter.NewClientWithConfig(*config),
	}
}

func (o *OpenRouter) Extract(ctx context.Context, text string) (domain.Transaction, error) {
	prompts := o.prompt.messages(text)
	messages := make([]openrouter.ChatCompletionMessage, len(prompts))

	for i, p := range prompts {
		role := openrouter.ChatMessageRoleUser
		if p.Role == roleSystem {
			role = openrouter.ChatMessageRoleSystem
		}

		messages[i] = openrouter.ChatCompletionMessage{
			Role:    role,
			Content: openrouter.Content{Text: p.Content},
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Messages:    messages,
		Model:       o.model,
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openrouter.ChatCompletionResponseFormat{
			Type: openrouter.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openrouter.APIError
		if errors.As(err, &apiErr) {
			return domain.Transaction{}, &domain.ExtractionError{
				Failure:    domain.FailureUpstream,
				StatusCode: apiErr.HTTPStatusCode,
				Body:       apiErr.Message,
				Err:        err,
			}
		}

		return domain.Transaction{}, &domain.ExtractionError{Failure: domain.FailureTransport, Err: err}
	}

	if len(resp.Choices) == 0 {
		return domain.Transaction{}, &domain.ExtractionError{Failure: domain.FailureMalformedEnvelope, Err: errNoChoices}
	}

	return decodeTransaction(resp.Choices[0].Message.Content.Text)
}
