package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpforge/internal/api"
)

func TestSuggest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/suggest", r.URL.Path)

		var req suggestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "describe a weather tool", req.Prompt)

		json.NewEncoder(w).Encode(suggestResponse{Suggestion: "Fetches the current forecast."})
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	require.True(t, c.Configured())

	suggestion, err := c.Suggest(context.Background(), "describe a weather tool")
	require.NoError(t, err)
	assert.Equal(t, "Fetches the current forecast.", suggestion)
}

func TestSuggest_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Suggest(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, api.IsUpstream(err))
	assert.Contains(t, err.Error(), "503")
}

func TestSuggest_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0)
	_, err := c.Suggest(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, api.IsUpstream(err))
}

func TestSuggest_NoEndpoint(t *testing.T) {
	c := NewClient("", 0)
	assert.False(t, c.Configured())

	_, err := c.Suggest(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, api.IsUpstream(err))
}

func TestSuggest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, 10*time.Millisecond)
	_, err := c.Suggest(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, api.IsUpstream(err))
}
