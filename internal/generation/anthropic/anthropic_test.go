package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiqa/internal/domain"
)

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("WIKIQA_TEST_EMPTY_KEY", "")
	_, err := New(Config{APIKeyEnv: "WIKIQA_TEST_EMPTY_KEY"})
	assert.ErrorContains(t, err, "WIKIQA_TEST_EMPTY_KEY")
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m",` +
			`"content":[{"type":"text","text":"He uses "},{"type":"text","text":"shadow clones."}],` +
			`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	t.Setenv("WIKIQA_TEST_KEY", "k")
	b, err := New(Config{APIKeyEnv: "WIKIQA_TEST_KEY", BaseURL: srv.URL + "/", Model: "haiku"})
	require.NoError(t, err)

	out, err := b.Generate(context.Background(), "What does Naruto use?", domain.GenerateOptions{MaxTokens: 30})
	require.NoError(t, err)
	assert.Equal(t, "He uses shadow clones.", out)
	assert.Equal(t, "haiku", body["model"])
	assert.EqualValues(t, 30, body["max_tokens"])
}
