// Package livepreview provisions a real dev-server environment for
// artifacts whose dependencies the lightweight CDN preview cannot satisfy.
package livepreview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// State is the runtime's lifecycle stage. Error is reachable from any
// stage.
type State string

const (
	StateIdle       State = "idle"
	StateBooting    State = "booting"
	StateInstalling State = "installing"
	StateStarting   State = "starting"
	StateReady      State = "ready"
	StateError      State = "error"
)

// ErrSessionExpired is the unrecoverable singleton conflict: a live
// instance exists but could not be detected for reuse. The substrate
// permits one instance per context; the only way out is a reload.
var ErrSessionExpired = errors.New("livepreview: session expired, reload required")

// Callbacks receive runtime progress. All callbacks are optional and are
// invoked from the boot goroutine.
type Callbacks struct {
	OnStatus      func(state State, detail string)
	OnServerReady func(url string)
	OnOutput      func(stream, line string)
}

// Process is a handle on one subprocess started by the runner.
type Process interface {
	Wait() error
	Kill() error
}

// Runner abstracts the substrate that installs dependencies and serves the
// project. The ready URL comes from an explicit server-ready signal, never
// from log scraping: bound addresses are not embeddable as-is.
type Runner interface {
	Mount(ctx context.Context, files map[string]string) error
	Install(ctx context.Context, onOutput func(line string)) (Process, error)
	StartDevServer(ctx context.Context, onOutput func(line string), onReady func(url string)) (Process, error)
}

// Session is one live runtime instance with its teardown handle.
type Session struct {
	runtime *Runtime

	mu     sync.Mutex
	server Process
	torn   bool
}

// Runtime is the one-instance-per-context heavyweight substrate. All
// callers serialize through Boot: reuse the live session or fail with
// ErrSessionExpired, never boot concurrently.
type Runtime struct {
	runner Runner

	mu       sync.Mutex
	state    State
	session  *Session
	readyURL string
}

func NewRuntime(runner Runner) *Runtime {
	return &Runtime{runner: runner, state: StateIdle}
}

// State reports the current lifecycle stage.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Boot provisions the project and starts install + dev server. When a live
// session already exists it is returned as-is: booting a second instance is
// an intrinsic substrate limitation, and reuse is the recovery.
func (r *Runtime) Boot(ctx context.Context, spec Spec, cb Callbacks) (*Session, error) {
	r.mu.Lock()
	switch r.state {
	case StateIdle, StateError:
		// fall through to a fresh boot
	default:
		if r.session != nil {
			sess := r.session
			state, url := r.state, r.readyURL
			r.mu.Unlock()
			log.Printf("livepreview: reusing live instance (state=%s)", state)
			// replay current progress so the reusing caller's callbacks
			// are not left silent
			if cb.OnStatus != nil {
				cb.OnStatus(state, url)
			}
			if state == StateReady && url != "" && cb.OnServerReady != nil {
				cb.OnServerReady(url)
			}
			return sess, nil
		}
		r.mu.Unlock()
		return nil, ErrSessionExpired
	}
	sess := &Session{runtime: r}
	r.session = sess
	r.state = StateBooting
	r.readyURL = ""
	r.mu.Unlock()

	status := func(s State, detail string) {
		r.mu.Lock()
		r.state = s
		if s == StateReady {
			r.readyURL = detail
		}
		r.mu.Unlock()
		if cb.OnStatus != nil {
			cb.OnStatus(s, detail)
		}
	}
	failed := func(stage string, err error) error {
		status(StateError, fmt.Sprintf("%s: %v", stage, err))
		r.clear(sess)
		return fmt.Errorf("livepreview: %s: %w", stage, err)
	}

	status(StateBooting, "mounting project")
	if err := r.runner.Mount(ctx, synthesizeProject(spec)); err != nil {
		return nil, failed("mount", err)
	}

	status(StateInstalling, "installing dependencies")
	install, err := r.runner.Install(ctx, func(line string) {
		if cb.OnOutput != nil {
			cb.OnOutput("install", line)
		}
	})
	if err != nil {
		return nil, failed("install", err)
	}
	sess.track(install)
	if err := install.Wait(); err != nil {
		return nil, failed("install", err)
	}
	if sess.tornDown() {
		return nil, failed("install", errors.New("torn down during provisioning"))
	}

	status(StateStarting, "starting dev server")
	server, err := r.runner.StartDevServer(ctx,
		func(line string) {
			if cb.OnOutput != nil {
				cb.OnOutput("server", line)
			}
		},
		func(url string) {
			status(StateReady, url)
			if cb.OnServerReady != nil {
				cb.OnServerReady(url)
			}
		},
	)
	if err != nil {
		return nil, failed("start", err)
	}
	sess.track(server)
	return sess, nil
}

func (r *Runtime) clear(sess *Session) {
	r.mu.Lock()
	if r.session == sess {
		r.session = nil
	}
	r.mu.Unlock()
}

// track records the most recently started subprocess; teardown during
// provisioning kills whatever has been started so far.
func (s *Session) track(p Process) {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		_ = p.Kill()
		return
	}
	s.server = p
	s.mu.Unlock()
}

func (s *Session) tornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.torn
}

// Teardown kills the dev-server subprocess and releases the singleton.
// Idempotent: repeated calls are no-ops. Safe to invoke while provisioning
// is still in progress.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	s.torn = true
	proc := s.server
	s.server = nil
	s.mu.Unlock()

	if proc != nil {
		if err := proc.Kill(); err != nil {
			log.Printf("livepreview: kill dev server: %v", err)
		}
	}
	s.runtime.mu.Lock()
	if s.runtime.session == s {
		s.runtime.session = nil
		s.runtime.state = StateIdle
		s.runtime.readyURL = ""
	}
	s.runtime.mu.Unlock()
}
