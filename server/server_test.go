package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pmock "github.com/botirk38/embedscore/providers/mock"
	"github.com/botirk38/embedscore/similarity"
	"github.com/botirk38/embedscore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, provider types.EmbeddingProvider) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Config{Provider: provider, Concurrency: 2}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func resultIDs(t *testing.T, out map[string]any) []string {
	t.Helper()
	results, ok := out["results"].([]any)
	require.True(t, ok, "results missing: %v", out)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.(map[string]any)["id"].(string)
	}
	return ids
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Default   string   `json:"default"`
		Supported []string `json:"supported"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "cosine", out.Default)
	assert.Equal(t, []string{"cosine"}, out.Supported)
}

func TestScore(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, out := post(t, srv, "/v1/score", `{
		"query": [1, 0],
		"candidates": [
			{"id": "b", "vector": [0, 1]},
			{"id": "a", "vector": [2, 0]}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cosine", out["metric"])
	assert.Equal(t, []string{"b", "a"}, resultIDs(t, out))

	results := out["results"].([]any)
	assert.InDelta(t, 1.0, results[0].(map[string]any)["score"], 1e-12)
	assert.InDelta(t, 0.0, results[1].(map[string]any)["score"], 1e-12)
}

func TestScore_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed", `{"query": [1,`, http.StatusBadRequest, "invalid_input"},
		{"unknown field", `{"query": [1], "vectors": []}`, http.StatusBadRequest, "invalid_input"},
		{"empty query", `{"query": [], "candidates": [{"id": "a", "vector": [1]}]}`, http.StatusBadRequest, "invalid_input"},
		{"length mismatch", `{"query": [1, 2], "candidates": [{"id": "a", "vector": [1, 2, 3]}]}`, http.StatusBadRequest, "invalid_input"},
		{"unsupported metric", `{"metric": "euclidean", "query": [1], "candidates": [{"id": "a", "vector": [1]}]}`, http.StatusBadRequest, "unsupported_metric"},
		{"zero vector", `{"query": [1, 1], "candidates": [{"id": "a", "vector": [0, 0]}]}`, http.StatusUnprocessableEntity, "degenerate_vector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, srv, "/v1/score", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.kind, out["error"])
			assert.NotContains(t, out, "results")
		})
	}
}

func TestCompare(t *testing.T) {
	p := new(pmock.EmbeddingProvider)
	p.On("EmbedText", mock.Anything, "automobile").Return([]float64{1, 0.1, 0}, nil)
	p.On("EmbedText", mock.Anything, "vehicle").Return([]float64{0.9, 0.2, 0}, nil)
	p.On("EmbedText", mock.Anything, "stick").Return([]float64{0.1, 0, 1}, nil)
	srv := newTestServer(t, p)

	resp, out := post(t, srv, "/v1/compare", `{"query": "automobile", "candidates": ["stick", "vehicle"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"stick", "vehicle"}, resultIDs(t, out))
}

func TestCompare_Errors(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp, out := post(t, srv, "/v1/compare", `{"query": "a", "candidates": ["b"]}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unavailable", out["error"])
	})

	t.Run("remote failure", func(t *testing.T) {
		p := new(pmock.EmbeddingProvider)
		p.On("EmbedText", mock.Anything, mock.Anything).
			Return(nil, errors.Join(types.ErrRemoteService, errors.New("503 from upstream")))
		srv := newTestServer(t, p)

		resp, out := post(t, srv, "/v1/compare", `{"query": "a", "candidates": ["b"]}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "remote_service", out["error"])
	})

	t.Run("empty candidate", func(t *testing.T) {
		srv := newTestServer(t, new(pmock.EmbeddingProvider))
		resp, out := post(t, srv, "/v1/compare", `{"query": "a", "candidates": ["b", ""]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_input", out["error"])
	})
}

func TestStatus(t *testing.T) {
	code, kind := status(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal", kind)

	code, _ = status(similarity.ErrDegenerateVector)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}
