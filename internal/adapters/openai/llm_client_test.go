package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: `{"company":"Acme"}`}},
			},
		})
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini", 500, 0.1, 0, zap.NewNop())

	text, err := client.Generate(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"company":"Acme"}`, text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "extract this", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"chatcmpl-2","choices":[]}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini", 500, 0.1, 0, zap.NewNop())
		_, err := client.Generate(context.Background(), "p")
		assert.ErrorContains(t, err, "empty response")
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-bad", srv.URL+"/v1", "gpt-4o-mini", 500, 0.1, 0, zap.NewNop())
		_, err := client.Generate(context.Background(), "p")
		assert.Error(t, err)
	})
}
