package extractor

import (
	"context"
	"errors"
	"math"
	"net/http"
	"txrelay/internal/core/domain"

	openai "github.com/sashabaranov/go-openai"
)

type openAIClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI extracts through any OpenAI compatible chat completions API.
type OpenAI struct {
	client openAIClient
	model  string
	prompt *Prompt
}

func NewOpenAI(baseURL, apiKey, model string, prompt *Prompt, httpClient *http.Client) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
		prompt: prompt,
	}
}

func (o *OpenAI) Extract(ctx context.Context, text string) (domain.Transaction, error) {
	prompts := o.prompt.messages(text)
	messages := make([]openai.ChatCompletionMessage, len(prompts))

	for i, p := range prompts {
		messages[i] = openai.ChatCompletionMessage{Role: p.Role, Content: p.Content}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		// go-openai omits a zero temperature from the request.
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Transaction{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return domain.Transaction{}, &domain.ExtractionError{Failure: domain.FailureMalformedEnvelope, Err: errNoChoices}
	}

	return decodeTransaction(resp.Choices[0].Message.Content)
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ExtractionError{
			Failure:    domain.FailureUpstream,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.ExtractionError{
			Failure:    domain.FailureUpstream,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
			Err:        err,
		}
	}

	return &domain.ExtractionError{Failure: domain.FailureTransport, Err: err}
}
