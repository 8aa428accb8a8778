package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRunnerExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req, "value")
		json.NewEncoder(w).Encode(Result{Kind: "ok", Output: "42\n"})
	}))
	defer srv.Close()

	r := NewHTTPRunner(srv.URL)
	res, err := r.Execute(context.Background(), json.RawMessage(`{"stmts":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Kind)
	assert.Equal(t, "42\n", res.Output)
}

func TestHTTPRunnerBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPRunner(srv.URL)
	_, err := r.Execute(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestHTTPRunnerUnreachable(t *testing.T) {
	r := NewHTTPRunner("http://127.0.0.1:1")
	_, err := r.Execute(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)
}
