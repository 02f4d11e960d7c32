package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"codecanvas/internal/gateway/repository/snapshot"
	"codecanvas/internal/generate"
	"codecanvas/internal/livepreview"
	"codecanvas/internal/llm"
	"codecanvas/internal/sandbox"
)

type stubEnv struct {
	kills int
}

func (e *stubEnv) ID() string                                      { return "env-1" }
func (e *stubEnv) MakeDirectory(context.Context, string) error     { return nil }
func (e *stubEnv) WriteFile(context.Context, string, string) error { return nil }
func (e *stubEnv) Kill(context.Context) error                      { e.kills++; return nil }

func (e *stubEnv) RunCode(context.Context, string, string) (*sandbox.RunOutput, error) {
	return &sandbox.RunOutput{Logs: sandbox.RunLogs{Stdout: []string{"hello"}}}, nil
}

type stubSandbox struct {
	creates int
	env     *stubEnv
}

func (c *stubSandbox) CreateEnvironment(context.Context) (sandbox.Env, error) {
	c.creates++
	return c.env, nil
}

func newTestHandlers(llmResponse string) (*Handlers, *stubSandbox) {
	client := &stubSandbox{env: &stubEnv{}}
	return New(
		generate.New(&llm.FakeClient{Response: llmResponse}),
		sandbox.NewDriver(client),
		livepreview.NewRuntime(nil),
		snapshot.NewMemoryStore(),
	), client
}

func TestHandleGenerate(t *testing.T) {
	h, _ := newTestHandlers("")

	req := httptest.NewRequest("POST", "/v1/artifacts/generate",
		strings.NewReader(`{"prompt":"a heading"}`))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
		Artifact  struct {
			Type string `json:"artifact_type"`
		} `json:"artifact"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" || resp.Artifact.Type != "frontend" {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}

	// the validated artifact must be snapshotted under the session
	paths, err := h.Snapshots.List(req.Context(), resp.SessionID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(paths) == 0 || paths[0] != "artifact.json" {
		t.Fatalf("unexpected snapshot paths: %v", paths)
	}
}

func TestHandleGenerate_EmptyPrompt(t *testing.T) {
	h, _ := newTestHandlers("")

	req := httptest.NewRequest("POST", "/v1/artifacts/generate", strings.NewReader(`{"prompt":"  "}`))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	if rec.Code != 422 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGenerate_InvalidModelOutput(t *testing.T) {
	h, _ := newTestHandlers("not an artifact at all")

	req := httptest.NewRequest("POST", "/v1/artifacts/generate", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	if rec.Code != 422 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlePreview(t *testing.T) {
	h, _ := newTestHandlers("")

	body := `{"artifact":{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<h1>hi</h1>"}]}}`
	req := httptest.NewRequest("POST", "/v1/artifacts/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<h1>hi</h1>") {
		t.Fatalf("document missing content: %s", rec.Body.String())
	}
}

func TestHandleExecute_RejectsFrontend(t *testing.T) {
	h, client := newTestHandlers("")

	body := `{"artifact":{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<h1>hi</h1>"}]}}`
	req := httptest.NewRequest("POST", "/v1/artifacts/execute", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleExecute(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if client.creates != 0 {
		t.Fatalf("frontend rejection must provision nothing, got %d creates", client.creates)
	}
}

func TestHandleExecute(t *testing.T) {
	h, client := newTestHandlers("")

	body := `{"artifact":{"artifact_type":"backend","language":"python","files":[{"path":"main.py","content":"print('hello')"}],"run":"python main.py"}}`
	req := httptest.NewRequest("POST", "/v1/artifacts/execute", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleExecute(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			Success bool   `json:"success"`
			Stdout  string `json:"stdout"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.Success || resp.Result.Stdout != "hello" {
		t.Fatalf("unexpected result: %s", rec.Body.String())
	}
	if client.env.kills != 1 {
		t.Fatalf("expected one environment kill, got %d", client.env.kills)
	}
}

func TestHandleExecuteStream_SSE(t *testing.T) {
	h, client := newTestHandlers("")

	body := `{"artifact":{"artifact_type":"backend","language":"python","files":[{"path":"main.py","content":"print('hello')"}],"run":"python main.py"}}`
	req := httptest.NewRequest("POST", "/v1/artifacts/execute/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleExecuteStream(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	var types []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var chunk struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		types = append(types, chunk.Type)
	}
	if len(types) == 0 {
		t.Fatalf("no SSE frames in body: %s", rec.Body.String())
	}
	done := 0
	for _, typ := range types {
		if typ == "done" {
			done++
		}
	}
	if done != 1 || types[len(types)-1] != "done" {
		t.Fatalf("expected one terminal done frame, got %v", types)
	}
	if client.env.kills != 1 {
		t.Fatalf("expected one environment kill, got %d", client.env.kills)
	}
}

func TestHandleSnapshotGet_NotFound(t *testing.T) {
	h, _ := newTestHandlers("")

	req := httptest.NewRequest("GET", "/v1/snapshots/s-1/file?path=missing.json", nil)
	req.SetPathValue("session", "s-1")
	rec := httptest.NewRecorder()
	h.HandleSnapshotGet(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}
