// Package sandbox drives out-of-process execution of backend artifacts in
// ephemeral remote environments.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client provisions remote execution environments. One environment is
// exclusive to one request; environments are never pooled or reused.
type Client interface {
	CreateEnvironment(ctx context.Context) (Env, error)
}

// Env is a live remote environment handle.
type Env interface {
	ID() string
	MakeDirectory(ctx context.Context, path string) error
	WriteFile(ctx context.Context, path, content string) error
	RunCode(ctx context.Context, source, language string) (*RunOutput, error)
	Kill(ctx context.Context) error
}

// RunOutput is the remote runtime's report for one run-code call.
type RunOutput struct {
	Text  string    `json:"text"`
	Error *RunError `json:"error,omitempty"`
	Logs  RunLogs   `json:"logs"`
}

// RunError carries the structured error the runtime reports when the
// executed code itself fails.
type RunError struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Traceback string `json:"traceback,omitempty"`
}

type RunLogs struct {
	Stdout []string `json:"stdout"`
	Stderr []string `json:"stderr"`
}

// HTTPClient talks to the remote sandbox service.
type HTTPClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPClient builds a client for the given endpoint. An empty apiKey
// falls back to the SANDBOX_API_KEY env var.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if apiKey == "" {
		apiKey = os.Getenv("SANDBOX_API_KEY")
	}
	return &HTTPClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
	}
}

func (c *HTTPClient) CreateEnvironment(ctx context.Context) (Env, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/environments", map[string]any{}, &out); err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("create environment: empty id in response")
	}
	return &httpEnv{client: c, id: out.ID}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sandbox: unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type httpEnv struct {
	client *HTTPClient
	id     string
}

func (e *httpEnv) ID() string { return e.id }

// MakeDirectory creates path (and parents) in the environment. The remote
// service treats an existing directory as success, so repeated calls are
// safe.
func (e *httpEnv) MakeDirectory(ctx context.Context, path string) error {
	return e.client.do(ctx, http.MethodPost, "/environments/"+e.id+"/directories",
		map[string]any{"path": path}, nil)
}

func (e *httpEnv) WriteFile(ctx context.Context, path, content string) error {
	return e.client.do(ctx, http.MethodPost, "/environments/"+e.id+"/files",
		map[string]any{"path": path, "content": content}, nil)
}

func (e *httpEnv) RunCode(ctx context.Context, source, language string) (*RunOutput, error) {
	var out RunOutput
	err := e.client.do(ctx, http.MethodPost, "/environments/"+e.id+"/run",
		map[string]any{"source": source, "language": language}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *httpEnv) Kill(ctx context.Context) error {
	return e.client.do(ctx, http.MethodDelete, "/environments/"+e.id, nil, nil)
}
