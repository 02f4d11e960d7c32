package sandbox

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"codecanvas/internal/artifact"
)

type fakeEnv struct {
	id     string
	dirs   []string
	writes []string
	kills  int
	runOut *RunOutput
	runErr error
	runFn  func(ctx context.Context) (*RunOutput, error)
}

func (e *fakeEnv) ID() string { return e.id }

func (e *fakeEnv) MakeDirectory(_ context.Context, path string) error {
	e.dirs = append(e.dirs, path)
	return nil
}

func (e *fakeEnv) WriteFile(_ context.Context, path, _ string) error {
	e.writes = append(e.writes, path)
	return nil
}

func (e *fakeEnv) RunCode(ctx context.Context, _, _ string) (*RunOutput, error) {
	if e.runFn != nil {
		return e.runFn(ctx)
	}
	if e.runErr != nil {
		return nil, e.runErr
	}
	return e.runOut, nil
}

func (e *fakeEnv) Kill(_ context.Context) error {
	e.kills++
	return nil
}

type fakeClient struct {
	creates   int
	createErr error
	env       *fakeEnv
}

func (c *fakeClient) CreateEnvironment(_ context.Context) (Env, error) {
	c.creates++
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.env, nil
}

func backendArtifact() *artifact.Artifact {
	return &artifact.Artifact{
		Type:     artifact.TypeBackend,
		Language: artifact.LangPython,
		Files:    []artifact.File{{Path: "main.py", Content: "print('hi')"}},
		Run:      "python main.py",
	}
}

func TestExecute_RejectsFrontendBeforeProvisioning(t *testing.T) {
	client := &fakeClient{env: &fakeEnv{id: "e1"}}
	d := NewDriver(client)

	a := &artifact.Artifact{
		Type:     artifact.TypeFrontend,
		Language: artifact.LangHTML,
		Files:    []artifact.File{{Path: "index.html", Content: "<h1>hi</h1>"}},
	}
	_, err := d.Execute(context.Background(), a)
	if !errors.Is(err, ErrNotExecutable) {
		t.Fatalf("expected ErrNotExecutable, got %v", err)
	}
	if client.creates != 0 {
		t.Fatalf("frontend rejection must provision nothing, got %d creates", client.creates)
	}

	if _, err := d.ExecuteStream(context.Background(), a); !errors.Is(err, ErrNotExecutable) {
		t.Fatalf("stream variant: expected ErrNotExecutable, got %v", err)
	}
	if client.creates != 0 {
		t.Fatalf("stream rejection must provision nothing, got %d creates", client.creates)
	}
}

func TestExecute_HybridIsExecutable(t *testing.T) {
	env := &fakeEnv{id: "e1", runOut: &RunOutput{Logs: RunLogs{Stdout: []string{"out"}}}}
	d := NewDriver(&fakeClient{env: env})

	a := backendArtifact()
	a.Type = artifact.TypeHybrid
	res, err := d.Execute(context.Background(), a)
	if err != nil {
		t.Fatalf("hybrid execution failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
}

func TestExecute_SuccessKillsExactlyOnce(t *testing.T) {
	env := &fakeEnv{
		id:     "e1",
		runOut: &RunOutput{Logs: RunLogs{Stdout: []string{"line1", "line2"}}},
	}
	client := &fakeClient{env: env}
	d := NewDriver(client)

	res, err := d.Execute(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !res.Success || res.ExitCode != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Stdout != "line1\nline2" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
	if env.kills != 1 {
		t.Fatalf("expected exactly one kill, got %d", env.kills)
	}
	if !reflect.DeepEqual(env.writes, []string{"main.py"}) {
		t.Fatalf("unexpected writes: %v", env.writes)
	}
}

func TestExecute_RuntimeErrorIsFirstClass(t *testing.T) {
	env := &fakeEnv{
		id: "e1",
		runOut: &RunOutput{
			Error: &RunError{Name: "NameError", Value: "name 'x' is not defined", Traceback: "Traceback..."},
			Logs:  RunLogs{Stderr: []string{"boom"}},
		},
	}
	d := NewDriver(&fakeClient{env: env})

	res, err := d.Execute(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("runtime failure must not be a transport error: %v", err)
	}
	if res.Success || res.ExitCode != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Error == "" || res.Stderr == "" {
		t.Fatalf("structured error missing: %+v", res)
	}
	if env.kills != 1 {
		t.Fatalf("expected exactly one kill, got %d", env.kills)
	}
}

func TestExecute_TransportFailureStillKills(t *testing.T) {
	env := &fakeEnv{id: "e1", runErr: errors.New("connection reset")}
	d := NewDriver(&fakeClient{env: env})

	res, err := d.Execute(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("mid-run transport failure must yield a result, got error %v", err)
	}
	if res.Success {
		t.Fatalf("expected failed result, got %+v", res)
	}
	if env.kills != 1 {
		t.Fatalf("expected exactly one kill, got %d", env.kills)
	}
}

func TestExecute_ProvisioningFailure(t *testing.T) {
	d := NewDriver(&fakeClient{createErr: errors.New("no capacity")})
	_, err := d.Execute(context.Background(), backendArtifact())
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("expected ErrProvisioning, got %v", err)
	}
}

func drain(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var chunks []Chunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestExecuteStream_ExactlyOneTerminalDone(t *testing.T) {
	env := &fakeEnv{
		id: "e1",
		runOut: &RunOutput{
			Logs: RunLogs{Stdout: []string{"a", "b"}, Stderr: []string{"warn"}},
		},
	}
	d := NewDriver(&fakeClient{env: env})

	ch, err := d.ExecuteStream(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("stream failed to start: %v", err)
	}
	chunks := drain(t, ch)

	done := 0
	for _, c := range chunks {
		if c.Type == ChunkDone {
			done++
		}
		if c.Timestamp == 0 {
			t.Fatalf("chunk missing timestamp: %+v", c)
		}
	}
	if done != 1 {
		t.Fatalf("expected exactly one done chunk, got %d in %v", done, chunks)
	}
	if chunks[len(chunks)-1].Type != ChunkDone {
		t.Fatalf("done must be terminal, got %v", chunks)
	}

	var stdout, stderr []string
	for _, c := range chunks {
		switch c.Type {
		case ChunkStdout:
			stdout = append(stdout, c.Content)
		case ChunkStderr:
			stderr = append(stderr, c.Content)
		}
	}
	if !reflect.DeepEqual(stdout, []string{"a", "b"}) || !reflect.DeepEqual(stderr, []string{"warn"}) {
		t.Fatalf("output chunks wrong: stdout=%v stderr=%v", stdout, stderr)
	}
	if env.kills != 1 {
		t.Fatalf("expected exactly one kill, got %d", env.kills)
	}
}

func TestExecuteStream_RuntimeErrorEndsWithDone(t *testing.T) {
	env := &fakeEnv{
		id: "e1",
		runOut: &RunOutput{
			Error: &RunError{Name: "SyntaxError", Value: "invalid syntax"},
		},
	}
	d := NewDriver(&fakeClient{env: env})

	ch, err := d.ExecuteStream(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("stream failed to start: %v", err)
	}
	chunks := drain(t, ch)

	var sawError bool
	done := 0
	for _, c := range chunks {
		if c.Type == ChunkError {
			sawError = true
		}
		if c.Type == ChunkDone {
			done++
		}
	}
	if !sawError || done != 1 {
		t.Fatalf("expected one error and one done, got %v", chunks)
	}
	if chunks[len(chunks)-1].Type != ChunkDone {
		t.Fatalf("done must be terminal, got %v", chunks)
	}
}

func TestExecuteStream_CancellationStillKills(t *testing.T) {
	env := &fakeEnv{id: "e1"}
	env.runFn = func(ctx context.Context) (*RunOutput, error) {
		// code is in flight until the request dies
		<-ctx.Done()
		return nil, ctx.Err()
	}
	d := NewDriver(&fakeClient{env: env})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := d.ExecuteStream(ctx, backendArtifact())
	if err != nil {
		t.Fatalf("stream failed to start: %v", err)
	}
	for c := range ch {
		if c.Type == ChunkStatus && c.Content == "execution started" {
			cancel()
		}
	}
	if env.kills != 1 {
		t.Fatalf("cancelled stream must still kill exactly once, got %d", env.kills)
	}
}

func TestExecuteStream_ProvisioningFailure(t *testing.T) {
	client := &fakeClient{createErr: errors.New("quota exceeded")}
	d := NewDriver(client)

	ch, err := d.ExecuteStream(context.Background(), backendArtifact())
	if err != nil {
		t.Fatalf("stream failed to start: %v", err)
	}
	chunks := drain(t, ch)
	if len(chunks) != 2 || chunks[0].Type != ChunkError || chunks[1].Type != ChunkDone {
		t.Fatalf("expected error then done, got %v", chunks)
	}
}

func TestMaterialize_ParentDirsFirst(t *testing.T) {
	env := &fakeEnv{id: "e1", runOut: &RunOutput{}}
	a := &artifact.Artifact{
		Type:     artifact.TypeBackend,
		Language: artifact.LangNode,
		Files: []artifact.File{
			{Path: "src/lib/deep/util.js", Content: "x"},
			{Path: "src/index.js", Content: "y"},
		},
	}
	if err := materialize(context.Background(), env, a); err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	wantDirs := []string{"src", "src/lib", "src/lib/deep"}
	if !reflect.DeepEqual(env.dirs, wantDirs) {
		t.Fatalf("dirs %v, want %v", env.dirs, wantDirs)
	}
	wantWrites := []string{"src/lib/deep/util.js", "src/index.js"}
	if !reflect.DeepEqual(env.writes, wantWrites) {
		t.Fatalf("writes %v, want %v", env.writes, wantWrites)
	}
}

func TestFormatRunError(t *testing.T) {
	got := formatRunError(&RunError{Name: "TypeError", Value: "bad", Traceback: "tb"})
	want := "TypeError: bad\ntb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
