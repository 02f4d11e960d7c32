package livepreview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"codecanvas/internal/safeio"
)

// ExecRunner is the server-side substrate: a real npm install and vite dev
// server in a scratch directory. It stands in for the in-browser container
// runtime when the pipeline runs outside a browser.
type ExecRunner struct {
	dir  string
	port int
}

func NewExecRunner(port int) *ExecRunner {
	if port <= 0 {
		port = 5173
	}
	return &ExecRunner{port: port}
}

func (r *ExecRunner) Mount(ctx context.Context, files map[string]string) error {
	dir, err := os.MkdirTemp("", "codecanvas-preview-*")
	if err != nil {
		return err
	}
	r.dir = dir
	// file paths originate from model output; confine writes to the
	// scratch directory
	fsys, err := safeio.NewSafeFS(dir)
	if err != nil {
		return err
	}
	for path, content := range files {
		if err := fsys.SafeWriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("mount %s: %w", path, err)
		}
	}
	return nil
}

func (r *ExecRunner) Install(ctx context.Context, onOutput func(line string)) (Process, error) {
	return r.start(ctx, onOutput, "npm", "install", "--no-audit", "--no-fund")
}

func (r *ExecRunner) StartDevServer(ctx context.Context, onOutput func(line string), onReady func(url string)) (Process, error) {
	proc, err := r.start(ctx, onOutput, "npm", "run", "dev", "--", "--port", fmt.Sprint(r.port))
	if err != nil {
		return nil, err
	}
	// Readiness comes from the port accepting connections, not from
	// scraping vite's log output.
	go func() {
		addr := fmt.Sprintf("127.0.0.1:%d", r.port)
		deadline := time.Now().Add(60 * time.Second)
		for time.Now().Before(deadline) {
			if ctx.Err() != nil {
				return
			}
			conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
			if err == nil {
				conn.Close()
				onReady("http://" + addr)
				return
			}
			time.Sleep(250 * time.Millisecond)
		}
	}()
	return proc, nil
}

func (r *ExecRunner) start(ctx context.Context, onOutput func(line string), name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	for _, pipe := range []io.Reader{stdout, stderr} {
		go func(rd io.Reader) {
			sc := bufio.NewScanner(rd)
			sc.Buffer(make([]byte, 64*1024), 1024*1024)
			for sc.Scan() {
				if onOutput != nil {
					onOutput(sc.Text())
				}
			}
		}(pipe)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
