package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("WIKIQA_TEST_EMPTY_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "WIKIQA_TEST_EMPTY_KEY"})
	assert.Error(t, err)
}

func TestClient_Embed(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[0.6,0.8]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	t.Setenv("WIKIQA_TEST_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKeyEnv: "WIKIQA_TEST_KEY", Model: "nomic-embed-text"})
	require.NoError(t, err)

	assert.Equal(t, 0, c.Dimension())
	v, err := c.Embed(context.Background(), "shadow clones")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.8}, v)
	assert.Equal(t, 2, c.Dimension())
	assert.Equal(t, "nomic-embed-text", gotModel)
}

func TestClient_EmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	t.Setenv("WIKIQA_TEST_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKeyEnv: "WIKIQA_TEST_KEY"})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
}
