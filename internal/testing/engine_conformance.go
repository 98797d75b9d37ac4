package testing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/script"
)

// EngineSources are the scripts EngineConformance runs, written in the
// language of the engine under test.
type EngineSources struct {
	// Overrides presses pad 0 "a", sets pad 0 stickX to 255, presses
	// nunchuk 1 "c", sets classic 2 "lx" to 5, then returns.
	Overrides string
	// Observed advances one frame, then prints pad 1's observed stickX and
	// the frame count.
	Observed string
	// RuntimeError presses a button on pad 9 without handling the error.
	RuntimeError string
	// SyntaxError does not parse.
	SyntaxError string
	// PrintLoop prints 1, 2, 3, ... forever.
	PrintLoop string
	// FrameLoop calls frameAdvance forever.
	FrameLoop string
	// AxisLoop sets pad 0 stickX to 0, 1, ..., 255, 0, ... forever and
	// never prints.
	AxisLoop string
}

// Harness is one script run wired to a simulated core.
type Harness struct {
	Store  *override.Store
	Mirror *override.Mirror
	Sim    *emu.Sim
	API    *script.API
	Cancel context.CancelCauseFunc
	Ctx    context.Context

	mu    sync.Mutex
	lines []string
	onOut func(n int)
}

// NewHarness builds a Harness with a paused, unfed simulated core.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	sim, err := emu.NewSim(nil, slog.New(slog.DiscardHandler), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancelCause(t.Context())
	t.Cleanup(func() { cancel(nil) })
	h := &Harness{
		Store:  override.NewStore(),
		Mirror: override.NewMirror(),
		Sim:    sim,
		Ctx:    ctx,
		Cancel: cancel,
	}
	sim.Pause()
	h.API = script.NewAPI(ctx, script.Config{
		Store:  h.Store,
		Mirror: h.Mirror,
		Host:   sim,
		Logger: slog.New(slog.DiscardHandler),
		Output: h.output,
	})
	return h
}

func (h *Harness) output(line string) {
	h.mu.Lock()
	h.lines = append(h.lines, line)
	n := len(h.lines)
	f := h.onOut
	h.mu.Unlock()
	if f != nil {
		f(n)
	}
}

// Lines returns the printed lines so far.
func (h *Harness) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}

// Load creates the engine for a file with extension ext and loads src.
func (h *Harness) Load(t *testing.T, ext, src string) (script.Engine, error) {
	t.Helper()
	eng, err := script.NewEngine("test"+ext, h.API)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng, eng.Load("test"+ext, []byte(src))
}

// EngineConformance checks the behavior every engine shares.
func EngineConformance(t *testing.T, ext string, src EngineSources) {
	t.Run("overrides", func(t *testing.T) {
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.Overrides)
		require.NoError(t, err)
		require.NoError(t, eng.Run(h.Ctx))

		p, _ := h.Store.Pad(0)
		assert.Equal(t, gcpad.ButtonA, p.Buttons())
		assert.Equal(t, uint8(255), p.Axis(gcpad.AxisStickX))
		w, _ := h.Store.Wiimote(1)
		assert.Equal(t, wiimote.NunchukButtonC, w.NunchukButtons())
		c, _ := h.Store.Wiimote(2)
		assert.Equal(t, uint8(5), c.ClassicAxis(override.ClassicLeftX))
	})

	t.Run("observed", func(t *testing.T) {
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.Observed)
		require.NoError(t, err)
		go func() { _ = h.Sim.Run(h.Ctx, 1000) }()
		require.NoError(t, eng.Run(h.Ctx))

		lines := h.Lines()
		require.Len(t, lines, 1)
		assert.Regexp(t, `^128\s+[1-9][0-9]*$`, lines[0])
		assert.False(t, h.Sim.Paused(), "first frame advance resumes the core")
	})

	t.Run("runtime error", func(t *testing.T) {
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.RuntimeError)
		require.NoError(t, err)
		err = eng.Run(h.Ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slot out of range")
	})

	t.Run("syntax error", func(t *testing.T) {
		h := NewHarness(t)
		_, err := h.Load(t, ext, src.SyntaxError)
		assert.Error(t, err)
		assert.Empty(t, h.Lines())
	})

	t.Run("cancellation bound", func(t *testing.T) {
		const stopAt = 25
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.PrintLoop)
		require.NoError(t, err)
		h.onOut = func(n int) {
			if n == stopAt {
				h.Cancel(errors.New("stop requested"))
			}
		}
		done := make(chan error, 1)
		go func() { done <- eng.Run(h.Ctx) }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("script did not stop")
		}
		lines := h.Lines()
		assert.LessOrEqual(t, len(lines), stopAt+1)
		for i, l := range lines {
			assert.Equal(t, strconv.Itoa(i+1), l)
		}
	})

	t.Run("no store writes after cancellation", func(t *testing.T) {
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.AxisLoop)
		require.NoError(t, err)
		p, _ := h.Store.Pad(0)
		done := make(chan error, 1)
		go func() { done <- eng.Run(h.Ctx) }()
		assert.Eventually(t, func() bool {
			return p.Axis(gcpad.AxisStickX) != gcpad.MainStickCenterX
		}, 5*time.Second, time.Millisecond)
		h.Cancel(errors.New("stop requested"))
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("script did not stop")
		}
		before := p.Axis(gcpad.AxisStickX)
		time.Sleep(200 * time.Millisecond)
		assert.Equal(t, before, p.Axis(gcpad.AxisStickX))
	})

	t.Run("cancel while waiting for a frame", func(t *testing.T) {
		h := NewHarness(t)
		eng, err := h.Load(t, ext, src.FrameLoop)
		require.NoError(t, err)
		done := make(chan error, 1)
		go func() { done <- eng.Run(h.Ctx) }()
		time.Sleep(20 * time.Millisecond)
		h.Cancel(errors.New("stop requested"))
		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("script did not stop")
		}
	})
}
