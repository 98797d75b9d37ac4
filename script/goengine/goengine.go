// Package goengine runs Go scripts (.go) on the yaegi interpreter. Scripts
// import "padscript" for the host API and may use fmt, math, strings,
// strconv and time from the standard library. The entry point is func Run
// in package main, called once package initialization is done. A script
// without one only runs its initialization.
//
//	package main
//
//	import "padscript"
//
//	func Run() {
//		padscript.PadPress(0, "a")
//		padscript.FrameAdvance()
//	}
package goengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/Alia5/padscript/script"
)

func init() {
	script.RegisterEngine(".go", New)
}

var allowedPkgs = []string{
	"fmt/fmt",
	"math/math",
	"strings/strings",
	"strconv/strconv",
	"time/time",
}

func restrictedStdlib() interp.Exports {
	restricted := interp.Exports{}
	for _, key := range allowedPkgs {
		if syms, ok := stdlib.Symbols[key]; ok {
			restricted[key] = syms
		}
	}
	return restricted
}

func exports(api *script.API) interp.Exports {
	return interp.Exports{
		// Yaegi expects keys as "importPath/pkgName".
		"padscript/padscript": {
			"PadPress":         reflect.ValueOf(api.PadPress),
			"PadRelease":       reflect.ValueOf(api.PadRelease),
			"PadSetAxis":       reflect.ValueOf(api.PadSetAxis),
			"PadClearAxis":     reflect.ValueOf(api.PadClearAxis),
			"PadClear":         reflect.ValueOf(api.PadClear),
			"PadObserved":      reflect.ValueOf(api.PadObserved),
			"WiimotePress":     reflect.ValueOf(api.WiimotePress),
			"WiimoteRelease":   reflect.ValueOf(api.WiimoteRelease),
			"WiimoteClear":     reflect.ValueOf(api.WiimoteClear),
			"WiimoteObserved":  reflect.ValueOf(api.WiimoteObserved),
			"NunchukPress":     reflect.ValueOf(api.NunchukPress),
			"NunchukRelease":   reflect.ValueOf(api.NunchukRelease),
			"NunchukSetAxis":   reflect.ValueOf(api.NunchukSetAxis),
			"NunchukClearAxis": reflect.ValueOf(api.NunchukClearAxis),
			"ClassicPress":     reflect.ValueOf(api.ClassicPress),
			"ClassicRelease":   reflect.ValueOf(api.ClassicRelease),
			"ClassicSetAxis":   reflect.ValueOf(api.ClassicSetAxis),
			"ClassicClearAxis": reflect.ValueOf(api.ClassicClearAxis),
			"FrameAdvance":     reflect.ValueOf(api.FrameAdvance),
			"FrameCount":       reflect.ValueOf(api.FrameCount),
			"Print":            reflect.ValueOf(api.Print),
		},
	}
}

const (
	// hostPkg carries the hooks Run needs from inside the interpreter.
	hostPkg = "padscripthost"
	// entry calls the script's Run and reports when the interpreter
	// goroutine has left it, cancelled or not.
	entry = `func() { defer padscripthost.Exited(); main.Run() }()`
	// exitWait bounds how long a cancelled Run waits for the script to
	// unwind, for scripts blocked outside the host API.
	exitWait = 2 * time.Second
)

func hostExports(exited func()) interp.Exports {
	return interp.Exports{
		hostPkg + "/" + hostPkg: {
			"Exited": reflect.ValueOf(exited),
		},
	}
}

// Engine is a yaegi interpreter with the host API exported as package
// padscript.
type Engine struct {
	api    *script.API
	i      *interp.Interpreter
	prog   *interp.Program
	stdout *lineWriter
	exited chan struct{}
}

// New returns an engine bound to api.
func New(api *script.API) script.Engine {
	return &Engine{api: api}
}

func (e *Engine) Load(name string, src []byte) error {
	out := &lineWriter{print: e.api.Print}
	i := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := i.Use(restrictedStdlib()); err != nil {
		return err
	}
	if err := i.Use(exports(e.api)); err != nil {
		return err
	}
	exited := make(chan struct{})
	var once sync.Once
	if err := i.Use(hostExports(func() { once.Do(func() { close(exited) }) })); err != nil {
		return err
	}
	prog, err := i.Compile(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.i, e.prog, e.stdout, e.exited = i, prog, out, exited
	return nil
}

func (e *Engine) Run(ctx context.Context) error {
	if e.prog == nil {
		return fmt.Errorf("goengine: run before load")
	}
	defer e.stdout.Flush()
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	if _, err := e.i.ExecuteWithContext(ctx, e.prog); err != nil {
		return err
	}
	if _, err := e.i.Eval("main.Run"); err != nil {
		if !strings.Contains(err.Error(), "undefined") {
			return err
		}
		e.api.Logger().Warn("script declares no func Run, nothing to call")
		return nil
	}
	if _, err := e.i.Eval(`import "` + hostPkg + `"`); err != nil {
		return err
	}
	_, err := e.i.EvalWithContext(ctx, entry)
	if ctx.Err() != nil {
		// yaegi returns on cancellation without waiting for its goroutine.
		select {
		case <-e.exited:
		case <-time.After(exitWait):
			e.api.Logger().Warn("script still running after cancellation", "waited", exitWait)
		}
	}
	return err
}

func (e *Engine) Close() {
	e.i, e.prog = nil, nil
}

// lineWriter turns interpreter stdout into print calls, one per line.
type lineWriter struct {
	mu    sync.Mutex
	buf   []byte
	print func(args ...any)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		adv, line, err := bufio.ScanLines(w.buf, false)
		if err != nil || adv == 0 {
			break
		}
		w.print(string(line))
		w.buf = w.buf[adv:]
	}
	return len(p), nil
}

// Flush prints a trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.print(string(w.buf))
		w.buf = nil
	}
}

var _ io.Writer = (*lineWriter)(nil)
