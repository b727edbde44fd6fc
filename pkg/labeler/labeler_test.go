/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: labeler_test.go
Description: Tests for labeler backends against fake endpoints and for reply normalisation.
*/

package labeler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRows = [][]string{{"Alice", "30"}, {"Bob", "45"}}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"name", "col_2"}, labeler.Normalize([]string{"name"}, 2))
	assert.Equal(t, []string{"a", "b"}, labeler.Normalize([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"col_1", "age"}, labeler.Normalize([]string{"  ", " age "}, 2))
	assert.Empty(t, labeler.Normalize(nil, 0))
}

func TestParseColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"object", `{"columns": ["name", "age"]}`, []string{"name", "age"}},
		{"fenced", "```json\n{\"columns\": [\"name\"]}\n```", []string{"name"}},
		{"prose", `Sure! Here it is: {"columns": ["a","b"]} Hope this helps.`, []string{"a", "b"}},
		{"bare array", `["x", "y"]`, []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := labeler.ParseColumns(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := labeler.ParseColumns("no json here")
	assert.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	l, err := labeler.New(labeler.Options{})
	require.NoError(t, err)
	assert.Equal(t, labeler.ProviderNone, l.Name())

	l, err = labeler.New(labeler.Options{Provider: "OpenAI"})
	require.NoError(t, err)
	assert.Equal(t, labeler.ProviderOpenAI, l.Name())

	_, err = labeler.New(labeler.Options{Provider: "http"})
	assert.Error(t, err, "http requires an endpoint")

	_, err = labeler.New(labeler.Options{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNoopLabelerIsUnavailable(t *testing.T) {
	_, err := labeler.NoopLabeler{}.Suggest(context.Background(), sampleRows)
	assert.ErrorIs(t, err, labeler.ErrUnavailable)
}

func TestOpenAILabeler(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, _ = req["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "test-model",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "{\"columns\": [\"customer_name\", \"age\"]}"},
    "finish_reason": "stop"
  }]
}`))
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	l := labeler.NewOpenAILabeler(labeler.Options{
		Model:    "test-model",
		Endpoint: srv.URL + "/v1",
		APIKey:   "test",
		Timeout:  5 * time.Second,
		Logger:   logger,
	})

	names, err := l.Suggest(context.Background(), sampleRows)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_name", "age"}, names)
	assert.Equal(t, "test-model", gotModel)
}

func TestHTTPLabeler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "Alice")
		assert.NotEmpty(t, req["systemInstruction"])

		_ = json.NewEncoder(w).Encode(map[string]string{"text": `{"columns": ["name", "age"]}`})
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	l := labeler.NewHTTPLabeler(labeler.Options{Endpoint: srv.URL, Logger: logger})

	names, err := l.Suggest(context.Background(), sampleRows)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, names)
}

func TestHTTPLabelerFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/error":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/malformed":
			_, _ = w.Write([]byte(`{"text": "I cannot help with that"}`))
		case "/slow":
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`{"text": "{\"columns\": []}"}`))
		}
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	for _, path := range []string{"/error", "/malformed", "/slow"} {
		l := labeler.NewHTTPLabeler(labeler.Options{
			Endpoint: srv.URL + path,
			Timeout:  100 * time.Millisecond,
			Logger:   logger,
		})
		_, err := l.Suggest(context.Background(), sampleRows)
		assert.Error(t, err, path)
	}
}
