package runner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Alia5/padscript/emu"
)

// Supervisor starts and stops runs against one host, at most one at a
// time, and remembers the last finished run.
type Supervisor struct {
	ctx    context.Context
	host   emu.Host
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	current *Runner
	last    *Runner
}

// NewSupervisor returns a Supervisor whose runs are cancelled when ctx is.
func NewSupervisor(ctx context.Context, host emu.Host, opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Supervisor{ctx: ctx, host: host, opts: opts, logger: opts.Logger}
}

// Start runs the script at path. It returns once the script has loaded:
// nil if it is now running, an error wrapping ErrLoad if it failed to load,
// or ErrAlreadyRunning if another run has not finished.
func (s *Supervisor) Start(path string) (*Runner, error) {
	s.mu.Lock()
	if s.current != nil && !finished(s.current) {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	if s.current != nil {
		s.last = s.current
	}
	r := New(path, s.host, s.opts)
	if err := r.Start(s.ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = r
	s.mu.Unlock()

	go s.watch(r)

	select {
	case <-r.Loaded():
	case <-r.Done():
	}
	if res, ok := r.Result(); ok && res.State == LoadError {
		return r, res.Err
	}
	return r, nil
}

func (s *Supervisor) watch(r *Runner) {
	<-r.Done()
	s.mu.Lock()
	if s.current == r {
		s.current = nil
		s.last = r
	}
	s.mu.Unlock()
	res, _ := r.Result()
	s.logger.Debug("run ended", "path", r.Path(), "state", res.State)
}

func finished(r *Runner) bool {
	_, ok := r.Result()
	return ok
}

// Stop cancels the current run without waiting for it to end.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r == nil || finished(r) {
		return ErrNotRunning
	}
	r.Stop()
	return nil
}

// Runner returns the current run, or the last finished one.
func (s *Supervisor) Runner() (*Runner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current, true
	}
	return s.last, s.last != nil
}

// Status returns the status of Runner.
func (s *Supervisor) Status() (Status, bool) {
	r, ok := s.Runner()
	if !ok {
		return Status{}, false
	}
	return r.Status(), true
}
