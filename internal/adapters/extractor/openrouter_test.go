package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"txrelay/internal/core/domain"

	"github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for the openRouterClient interface.
type mockClient struct {
	createChatCompletionFunc func(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

func (m *mockClient) CreateChatCompletion(ctx context.Context,
	ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	return m.createChatCompletionFunc(ctx, ccr)
}

func TestOpenRouter_Extract(t *testing.T) {
	testCases := []struct {
		name        string
		mockResp    openrouter.ChatCompletionResponse
		mockErr     error
		wantPerson  *string
		wantFailure domain.ExtractionFailure
		wantErrText string
	}{
		{
			name: "success",
			mockResp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{{
					Message: openrouter.ChatCompletionMessage{
						Content: openrouter.Content{Text: `{"type":"expense-loan","person":"friend","amount":20}`},
					},
				}},
			},
			wantPerson: ptr("friend"),
		},
		{
			name:        "API error returned",
			mockErr:     errors.New("api failure"),
			wantFailure: domain.FailureTransport,
		},
		{
			name:        "no choices",
			wantErrText: "malformed LLM response: LLM response has no choices",
			mockResp:    openrouter.ChatCompletionResponse{},
			wantFailure: domain.FailureMalformedEnvelope,
		},
		{
			name: "markdown wrapped answer",
			mockResp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{{
					Message: openrouter.ChatCompletionMessage{
						Content: openrouter.Content{Text: "```json\n{}\n```"},
					},
				}},
			},
			wantFailure: domain.FailureSchemaDecode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got openrouter.ChatCompletionRequest
			mock := &mockClient{
				createChatCompletionFunc: func(_ context.Context,
					ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
					got = ccr
					return tc.mockResp, tc.mockErr
				},
			}
			gen := &OpenRouter{
				client: mock,
				model:  "openai/gpt-4.1",
				prompt: fixedPrompt(),
			}

			tx, err := gen.Extract(t.Context(), "lent a friend 20")

			assert.Equal(t, "openai/gpt-4.1", got.Model)
			require.Len(t, got.Messages, 2)
			assert.Equal(t, openrouter.ChatMessageRoleSystem, got.Messages[0].Role)
			assert.Equal(t, openrouter.ChatMessageRoleUser, got.Messages[1].Role)
			assert.Equal(t, "lent a friend 20", got.Messages[1].Content.Text)
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
			assert.Equal(t, tc.wantPerson, tx.Person)
			require.NotNil(t, tx.Kind)
			assert.Equal(t, domain.ExpenseLoan, *tx.Kind)
		})
	}
}

func TestNewOpenRouter_UsesBaseURL(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"item\":\"rent\"}"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenRouter(srv.URL+"/api/v1", "key", "openai/gpt-4.1", fixedPrompt(), srv.Client())

	tx, err := o.Extract(t.Context(), "rent 500")

	require.NoError(t, err)
	assert.Equal(t, ptr("rent"), tx.Item)
	assert.Equal(t, "/api/v1/chat/completions", gotPath)
	assert.Contains(t, gotBody, "temperature")
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])
}
