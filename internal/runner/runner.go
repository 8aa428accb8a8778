// Package runner abstracts the external code-execution engine. The server
// never interprets programs itself; it forwards the client-parsed program to
// an interpreter service and relays the result.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Result is the interpreter's verdict: kind is "ok" or "error", output is
// the program's combined output or the error text.
type Result struct {
	Kind   string `json:"kind"`
	Output string `json:"output"`
}

// Runner executes an already-parsed program.
type Runner interface {
	Execute(ctx context.Context, program json.RawMessage) (*Result, error)
}

// HTTPRunner forwards programs to an interpreter service over HTTP.
type HTTPRunner struct {
	url    string
	client *http.Client
}

func NewHTTPRunner(url string) *HTTPRunner {
	return &HTTPRunner{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *HTTPRunner) Execute(ctx context.Context, program json.RawMessage) (*Result, error) {
	body, err := json.Marshal(map[string]json.RawMessage{"value": program})
	if err != nil {
		return nil, fmt.Errorf("failed to encode program: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build interpreter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("interpreter unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("interpreter returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode interpreter response: %w", err)
	}
	return &result, nil
}
