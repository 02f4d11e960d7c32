package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"codecanvas/internal/artifact"
	"codecanvas/internal/classify"
)

// ErrNotExecutable rejects frontend-classified artifacts before any remote
// resource is provisioned. Hard security/cost boundary, not a convenience
// check.
var ErrNotExecutable = errors.New("sandbox: artifact is not executable")

// ErrProvisioning marks failures acquiring or preparing the remote
// environment, before the artifact's code ever ran.
var ErrProvisioning = errors.New("sandbox: environment provisioning failed")

// Result is the outcome of one buffered execution. Created fresh per
// request and never mutated after the run completes. A run whose code
// errored is Success=false with the structured stderr captured; that is an
// expected outcome, not a transport error.
type Result struct {
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Error      string `json:"error,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
}

// ChunkType labels one streamed execution event.
type ChunkType string

const (
	ChunkStdout ChunkType = "stdout"
	ChunkStderr ChunkType = "stderr"
	ChunkError  ChunkType = "error"
	ChunkStatus ChunkType = "status"
	ChunkDone   ChunkType = "done"
)

// Chunk is an ordered, append-only execution event. Every stream ends with
// exactly one done chunk.
type Chunk struct {
	Type      ChunkType `json:"type"`
	Content   string    `json:"content"`
	Timestamp int64     `json:"timestamp"`
}

func chunk(t ChunkType, content string) Chunk {
	return Chunk{Type: t, Content: content, Timestamp: time.Now().UnixMilli()}
}

// Driver runs backend artifacts in environments provisioned from its
// client. One fresh environment per invocation, torn down unconditionally.
type Driver struct {
	client Client
}

func NewDriver(client Client) *Driver {
	return &Driver{client: client}
}

// checkExecutable enforces the routing precondition. The declared type is
// authoritative; a routing mismatch is logged diagnostics, not grounds to
// override the declaration.
func checkExecutable(a *artifact.Artifact) error {
	if a == nil || len(a.Files) == 0 {
		return fmt.Errorf("%w: empty artifact", ErrNotExecutable)
	}
	if mm := classify.Check(a); mm != nil {
		log.Printf("sandbox: %v", mm)
	}
	if a.Type == artifact.TypeFrontend {
		return fmt.Errorf("%w: frontend artifacts render in the browser", ErrNotExecutable)
	}
	return nil
}

// Execute provisions an environment, materializes the artifact's files,
// runs the entry file, and returns the collected result. The environment is
// killed in all paths, including cancellation.
func (d *Driver) Execute(ctx context.Context, a *artifact.Artifact) (*Result, error) {
	if err := checkExecutable(a); err != nil {
		return nil, err
	}
	start := time.Now()

	env, err := d.client.CreateEnvironment(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	defer d.kill(env)

	if err := materialize(ctx, env, a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	entry := a.EntryFile()
	out, err := env.RunCode(ctx, entry.Content, string(a.Language))
	if err != nil {
		// transport failure mid-run: report a generic failed result, the
		// deferred kill still runs
		return &Result{
			Success:    false,
			Error:      "execution failed: " + err.Error(),
			ExitCode:   1,
			DurationMS: time.Since(start).Milliseconds(),
		}, nil
	}
	return collect(out, time.Since(start)), nil
}

// ExecuteStream is the streaming variant: phase status events, then
// interleaved stdout/stderr, at most one error, exactly one terminal done.
// Teardown is guaranteed even when the consumer disconnects mid-stream.
func (d *Driver) ExecuteStream(ctx context.Context, a *artifact.Artifact) (<-chan Chunk, error) {
	if err := checkExecutable(a); err != nil {
		return nil, err
	}
	ch := make(chan Chunk, 16)

	go func() {
		defer close(ch)
		start := time.Now()

		emit := func(c Chunk) bool {
			select {
			case ch <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(msg string) {
			emit(chunk(ChunkError, msg))
			emit(chunk(ChunkDone, "failed"))
		}

		env, err := d.client.CreateEnvironment(ctx)
		if err != nil {
			fail("environment provisioning failed: " + err.Error())
			return
		}
		defer d.kill(env)
		if !emit(chunk(ChunkStatus, "environment acquired")) {
			return
		}

		if err := materialize(ctx, env, a); err != nil {
			fail("writing files failed: " + err.Error())
			return
		}
		if !emit(chunk(ChunkStatus, "files written")) {
			return
		}
		if !emit(chunk(ChunkStatus, "execution started")) {
			return
		}

		entry := a.EntryFile()
		out, err := env.RunCode(ctx, entry.Content, string(a.Language))
		if err != nil {
			fail("execution failed: " + err.Error())
			return
		}

		for _, line := range out.Logs.Stdout {
			if !emit(chunk(ChunkStdout, line)) {
				return
			}
		}
		for _, line := range out.Logs.Stderr {
			if !emit(chunk(ChunkStderr, line)) {
				return
			}
		}
		if out.Error != nil {
			emit(chunk(ChunkError, formatRunError(out.Error)))
			emit(chunk(ChunkDone, fmt.Sprintf("failed in %dms", time.Since(start).Milliseconds())))
			return
		}
		emit(chunk(ChunkDone, fmt.Sprintf("completed in %dms", time.Since(start).Milliseconds())))
	}()

	return ch, nil
}

// kill tears the environment down on a context detached from the request:
// a cancelled request must never leak a live environment.
func (d *Driver) kill(env Env) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(context.Background()), 15*time.Second)
	defer cancel()
	if err := env.Kill(ctx); err != nil {
		log.Printf("sandbox: kill %s: %v", env.ID(), err)
	}
}

// materialize writes every artifact file into the environment in declared
// order, creating intermediate directories first. All writes complete
// before the entry file is invoked.
func materialize(ctx context.Context, env Env, a *artifact.Artifact) error {
	for _, dir := range parentDirs(a) {
		if err := env.MakeDirectory(ctx, dir); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	for _, f := range a.Files {
		if err := env.WriteFile(ctx, f.Path, f.Content); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}

// parentDirs lists the unique directories implied by file paths, parents
// first.
func parentDirs(a *artifact.Artifact) []string {
	seen := map[string]bool{}
	for _, f := range a.Files {
		dir := path.Dir(f.Path)
		for dir != "." && dir != "/" && dir != "" && !seen[dir] {
			seen[dir] = true
			dir = path.Dir(dir)
		}
	}
	out := make([]string, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}
	// sorting lexicographically yields parents before children
	sort.Strings(out)
	return out
}

func collect(out *RunOutput, elapsed time.Duration) *Result {
	res := &Result{
		Stdout:     strings.Join(out.Logs.Stdout, "\n"),
		Stderr:     strings.Join(out.Logs.Stderr, "\n"),
		DurationMS: elapsed.Milliseconds(),
	}
	if out.Error != nil {
		res.Success = false
		res.ExitCode = 1
		res.Error = formatRunError(out.Error)
		if res.Stderr != "" {
			res.Stderr += "\n"
		}
		res.Stderr += res.Error
		return res
	}
	res.Success = true
	res.ExitCode = 0
	if out.Text != "" && res.Stdout == "" {
		res.Stdout = out.Text
	}
	return res
}

func formatRunError(e *RunError) string {
	msg := strings.TrimSpace(e.Name + ": " + e.Value)
	if e.Traceback != "" {
		msg += "\n" + e.Traceback
	}
	return msg
}
