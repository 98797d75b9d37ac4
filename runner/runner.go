// Package runner drives one script run against an emulation core: it
// installs the override manipulators, loads and runs the script on its own
// goroutine, and tears everything down exactly once however the run ends.
package runner

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/script"
)

// Options configure runs.
type Options struct {
	Logger *slog.Logger
	// PrintLimit and PrintBurst rate limit script print output.
	PrintLimit rate.Limit
	PrintBurst int
	// Output, if set, receives every printed line.
	Output func(line string)
}

// Status is a snapshot of a run.
type Status struct {
	State   State
	Path    string
	Digest  string
	Err     error
	Frames  uint64
	Elapsed time.Duration
}

// Runner owns one script run. The override store and mirror live exactly
// as long as the Runner.
type Runner struct {
	path   string
	host   emu.Host
	opts   Options
	logger *slog.Logger

	store  *override.Store
	mirror *override.Mirror

	ctx    context.Context
	cancel context.CancelCauseFunc

	loaded   chan struct{}
	done     chan struct{}
	loadOnce sync.Once
	teardown sync.Once

	mu         sync.Mutex
	state      State
	result     Result
	digest     string
	started    time.Time
	elapsed    time.Duration
	startFrame uint64
	frames     uint64
}

// New returns a Runner for the script at path. Nothing happens until Start.
func New(path string, host emu.Host, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		path:   path,
		host:   host,
		opts:   opts,
		logger: opts.Logger.With("script", filepath.Base(path)),
		store:  override.NewStore(),
		mirror: override.NewMirror(),
		loaded: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start moves the Runner from Created to Running and begins loading the
// script on a new goroutine. Cancelling ctx cancels the run.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != Created {
		r.mu.Unlock()
		return fmt.Errorf("%w: runner is %s", ErrAlreadyRunning, r.state)
	}
	r.state = Running
	r.started = time.Now()
	r.startFrame = r.host.FrameCount()
	r.ctx, r.cancel = context.WithCancelCause(ctx)
	r.mu.Unlock()

	go r.run()
	return nil
}

// Stop cancels the run. It does not wait; use Done or Wait.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel(ErrCancelled)
	}
}

// Loaded is closed once the script has loaded, or the run has ended.
func (r *Runner) Loaded() <-chan struct{} { return r.loaded }

// Done is closed once teardown has finished.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Wait blocks until the run has ended and returns its result.
func (r *Runner) Wait() Result {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Result returns the result of a finished run.
func (r *Runner) Result() (Result, bool) {
	select {
	case <-r.done:
	default:
		return Result{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, true
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) Path() string { return r.path }

// Digest returns the BLAKE2b-256 of the loaded source in hex, or "" before
// the source has been read.
func (r *Runner) Digest() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.digest
}

// Mirror returns what the manipulators last delivered.
func (r *Runner) Mirror() *override.Mirror { return r.mirror }

// Store returns the overrides the script has set.
func (r *Runner) Store() *override.Store { return r.store }

// Status returns a snapshot of the run.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Status{
		State:   r.state,
		Path:    r.path,
		Digest:  r.digest,
		Err:     r.result.Err,
		Frames:  r.frames,
		Elapsed: r.elapsed,
	}
	if r.state == Running {
		st.Frames = r.host.FrameCount() - r.startFrame
		st.Elapsed = time.Since(r.started)
	}
	return st
}

// Digest returns the hex BLAKE2b-256 of src.
func Digest(src []byte) string {
	sum := blake2b.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func (r *Runner) fault(err error) {
	r.cancel(fmt.Errorf("%w: %w", ErrRuntime, err))
}

func (r *Runner) markLoaded() {
	r.loadOnce.Do(func() { close(r.loaded) })
}

func (r *Runner) run() {
	ctx := r.ctx
	reg := r.host.Registry()
	api := script.NewAPI(ctx, script.Config{
		Store:      r.store,
		Mirror:     r.mirror,
		Host:       r.host,
		Logger:     r.logger,
		PrintLimit: r.opts.PrintLimit,
		PrintBurst: r.opts.PrintBurst,
		Output:     r.opts.Output,
	})

	var (
		eng    script.Engine
		paused bool
		result Result
	)
	defer func() {
		if p := recover(); p != nil {
			result = Result{State: RuntimeError, Err: fmt.Errorf("%w: panic: %v", ErrRuntime, p)}
		}
		r.finish(result, func() {
			api.Seal()
			_ = reg.SetPadManipulator(emu.ConsumerScript, nil)
			_ = reg.SetWiimoteManipulator(emu.ConsumerScript, nil)
			if paused {
				api.Release()
			}
			if eng != nil {
				eng.Close()
			}
		})
	}()

	_ = reg.SetPadManipulator(emu.ConsumerScript, override.NewPadManipulator(r.store, r.mirror, r.fault))
	_ = reg.SetWiimoteManipulator(emu.ConsumerScript, override.NewWiimoteManipulator(r.store, r.mirror, r.fault))

	src, err := os.ReadFile(r.path)
	if err != nil {
		result = Result{State: LoadError, Err: fmt.Errorf("%w: %w", ErrLoad, err)}
		return
	}
	digest := Digest(src)
	r.mu.Lock()
	r.digest = digest
	r.mu.Unlock()

	eng, err = script.NewEngine(r.path, api)
	if err != nil {
		result = Result{State: LoadError, Err: fmt.Errorf("%w: %w", ErrLoad, err)}
		return
	}
	if err := eng.Load(filepath.Base(r.path), src); err != nil {
		result = Result{State: LoadError, Err: fmt.Errorf("%w: %w", ErrLoad, err)}
		return
	}
	if ctx.Err() != nil {
		result = classify(ctx, nil)
		return
	}

	r.host.Pause()
	paused = true
	r.logger.Info("script loaded", "digest", digest[:16])
	r.markLoaded()

	result = classify(ctx, eng.Run(ctx))
}

// classify maps how Run returned onto a terminal state. A done context
// takes precedence over the engine's error, since engines report
// cancellation in their own terms.
func classify(ctx context.Context, err error) Result {
	if cause := context.Cause(ctx); cause != nil {
		switch {
		case errors.Is(cause, ErrRuntime):
			return Result{State: RuntimeError, Err: cause}
		case errors.Is(cause, ErrCancelled):
			return Result{State: Cancelled, Err: ErrCancelled}
		default:
			return Result{State: Cancelled, Err: fmt.Errorf("%w: %w", ErrCancelled, cause)}
		}
	}
	if err != nil {
		return Result{State: RuntimeError, Err: fmt.Errorf("%w: %w", ErrRuntime, err)}
	}
	return Result{State: Completed}
}

func (r *Runner) finish(result Result, release func()) {
	r.teardown.Do(func() {
		release()
		r.cancel(nil)

		end := r.host.FrameCount()
		r.mu.Lock()
		r.state = result.State
		r.result = result
		r.elapsed = time.Since(r.started)
		r.frames = end - r.startFrame
		elapsed, frames := r.elapsed, r.frames
		r.mu.Unlock()

		attrs := []any{"state", result.State, "frames", frames, "elapsed", elapsed}
		switch result.State {
		case Completed, Cancelled:
			r.logger.Info("script finished", attrs...)
		default:
			r.logger.Error("script finished", append(attrs, "error", result.Err)...)
		}
		r.markLoaded()
		close(r.done)
	})
}
