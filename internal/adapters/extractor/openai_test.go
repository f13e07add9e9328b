package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"txrelay/internal/core/domain"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOpenAIClient struct {
	createChatCompletionFunc func(ctx context.Context,
		request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context,
	request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return m.createChatCompletionFunc(ctx, request)
}

func openAIResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	}
}

func TestOpenAI_Extract(t *testing.T) {
	testCases := []struct {
		name        string
		mockResp    openai.ChatCompletionResponse
		mockErr     error
		wantItem    *string
		wantFailure domain.ExtractionFailure
		wantErrText string
	}{
		{
			name:     "success",
			mockResp: openAIResponse(`{"type":"income","item":"salary","amount":1500.50}`),
			wantItem: ptr("salary"),
		},
		{
			name:        "api error",
			mockErr:     &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"},
			wantFailure: domain.FailureUpstream,
		},
		{
			name:        "network error",
			mockErr:     errors.New("dial tcp: connection refused"),
			wantFailure: domain.FailureTransport,
		},
		{
			name:        "no choices",
			wantErrText: "malformed LLM response: LLM response has no choices",
			mockResp:    openai.ChatCompletionResponse{},
			wantFailure: domain.FailureMalformedEnvelope,
		},
		{
			name:        "invalid content",
			mockResp:    openAIResponse("not json"),
			wantFailure: domain.FailureSchemaDecode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got openai.ChatCompletionRequest
			mock := &mockOpenAIClient{
				createChatCompletionFunc: func(_ context.Context,
					request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
					got = request
					return tc.mockResp, tc.mockErr
				},
			}

			o := &OpenAI{client: mock, model: "gpt-4o-mini", prompt: fixedPrompt()}

			tx, err := o.Extract(t.Context(), "got my salary 1500.50")

			assert.Equal(t, "gpt-4o-mini", got.Model)
			require.Len(t, got.Messages, 2)
			assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
			assert.Equal(t, "got my salary 1500.50", got.Messages[1].Content)
			require.NotNil(t, got.ResponseFormat)
			assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
			assertDeterministicJSONRequest(t, got)

			if tc.wantFailure != "" {
				var extractionErr *domain.ExtractionError
				require.ErrorAs(t, err, &extractionErr)
				assert.Equal(t, tc.wantFailure, extractionErr.Failure)
				if tc.wantErrText != "" {
					assert.EqualError(t, err, tc.wantErrText)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantItem, tx.Item)
			assert.Equal(t, "1500.50", tx.Amount.Decimal.StringFixed(2))
		})
	}
}

func TestOpenAI_ExtractUpstreamCarriesStatus(t *testing.T) {
	mock := &mockOpenAIClient{
		createChatCompletionFunc: func(_ context.Context,
			_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{},
				&openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "overloaded"}
		},
	}

	_, err := (&OpenAI{client: mock, prompt: fixedPrompt()}).Extract(t.Context(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "overloaded")
}

// assertDeterministicJSONRequest checks the request as it goes over the wire, where zero values may be omitted.
func assertDeterministicJSONRequest(t *testing.T, request any) {
	t.Helper()

	raw, err := json.Marshal(request)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	require.Contains(t, body, "temperature")
	assert.InDelta(t, 0, body["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
}
