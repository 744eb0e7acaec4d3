package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiCompleter_Complete(t *testing.T) {
	var got GeminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Dear team"}]}}]}`))
	}))
	defer srv.Close()

	c := &geminiCompleter{apiKey: "test-key", endpoint: srv.URL, client: srv.Client()}
	text, err := c.Complete(context.Background(), "write a letter", 300, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "Dear team", text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "write a letter", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, int64(300), got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 0.7, got.GenerationConfig.Temperature)
}

func TestGeminiCompleter_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := &geminiCompleter{apiKey: "k", endpoint: srv.URL, client: srv.Client()}
		_, err := c.Complete(context.Background(), "p", 10, 0.1)
		assert.ErrorContains(t, err, "quota")
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		c := &geminiCompleter{apiKey: "k", endpoint: srv.URL, client: srv.Client()}
		_, err := c.Complete(context.Background(), "p", 10, 0.1)
		assert.ErrorIs(t, err, errEmptyCompletion)
	})
}
