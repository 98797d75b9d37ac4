// Package script exposes the override store, the observed-state mirror and
// the emulation core to scripts. API is the engine-neutral host surface;
// engines register themselves by file extension and bind it into their
// runtime.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/override"
)

var (
	// ErrValue is returned for an axis value outside [0, 255].
	ErrValue = errors.New("value out of range")
	// ErrEnded is returned by calls that would change the override store
	// after the run has ended.
	ErrEnded = errors.New("run ended")
)

// Config wires an API to one run.
type Config struct {
	Store  *override.Store
	Mirror *override.Mirror
	Host   emu.Host
	Logger *slog.Logger

	// PrintLimit bounds printed lines per second. Zero means unlimited.
	PrintLimit rate.Limit
	// PrintBurst is the number of lines printed back to back before the
	// limit applies.
	PrintBurst int
	// Output, if set, receives every printed line that passes the limiter.
	// Go scripts may print from several goroutines at once.
	Output func(line string)
}

// API is the host surface bound into every engine. Its methods are safe
// for concurrent use; Go scripts may call them from their own goroutines.
type API struct {
	ctx     context.Context
	cfg     Config
	logger  *slog.Logger
	limiter *rate.Limiter
	dropped atomic.Int64
	resumed atomic.Bool

	// gate is read-held by every store write and write-held by Seal.
	gate   sync.RWMutex
	sealed bool
}

// NewAPI returns an API whose blocking calls end when ctx is done.
func NewAPI(ctx context.Context, cfg Config) *API {
	limit, burst := cfg.PrintLimit, cfg.PrintBurst
	if limit == 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger.With("source", "script"),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Logger returns the logger script diagnostics are written to.
func (a *API) Logger() *slog.Logger { return a.logger }

// Context returns the run context. Engines arm their cancellation hook on it.
func (a *API) Context() context.Context { return a.ctx }

// Seal waits for store writes in flight and fails every later one with
// ErrEnded. Runs call it on teardown, before the store is read for the last
// time.
func (a *API) Seal() {
	a.gate.Lock()
	a.sealed = true
	a.gate.Unlock()
}

// write admits one store write. The returned func must be called once the
// write is done.
func (a *API) write() (func(), error) {
	a.gate.RLock()
	if a.sealed || a.ctx.Err() != nil {
		a.gate.RUnlock()
		return nil, ErrEnded
	}
	return a.gate.RUnlock, nil
}

func axisValue(v int) (uint8, error) {
	if v < 0 || v > 0xff {
		return 0, fmt.Errorf("%w: %d", ErrValue, v)
	}
	return uint8(v), nil
}

func unknown(kind, name string) error {
	return fmt.Errorf("%w: %s %q", override.ErrUnknownInput, kind, name)
}

func (a *API) pad(slot int, button string) (*override.PadOverride, uint16, error) {
	p, err := a.cfg.Store.Pad(slot)
	if err != nil {
		return nil, 0, err
	}
	b, ok := gcpad.ButtonByName(button)
	if !ok {
		return nil, 0, unknown("pad button", button)
	}
	return p, b, nil
}

// PadPress forces a pad button on until it is released.
func (a *API) PadPress(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	p, b, err := a.pad(slot, button)
	if err != nil {
		return err
	}
	p.Press(b)
	return nil
}

// PadRelease stops forcing a pad button.
func (a *API) PadRelease(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	p, b, err := a.pad(slot, button)
	if err != nil {
		return err
	}
	p.Release(b)
	return nil
}

// PadSetAxis overrides a pad axis with v in [0, 255].
func (a *API) PadSetAxis(slot int, axis string, v int) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	p, err := a.cfg.Store.Pad(slot)
	if err != nil {
		return err
	}
	ax, ok := gcpad.AxisByName(axis)
	if !ok {
		return unknown("pad axis", axis)
	}
	u, err := axisValue(v)
	if err != nil {
		return err
	}
	p.SetAxis(ax, u)
	return nil
}

// PadClearAxis returns a pad axis to its rest value.
func (a *API) PadClearAxis(slot int, axis string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	p, err := a.cfg.Store.Pad(slot)
	if err != nil {
		return err
	}
	ax, ok := gcpad.AxisByName(axis)
	if !ok {
		return unknown("pad axis", axis)
	}
	p.ClearAxis(ax)
	return nil
}

// PadClear removes every override of the pad.
func (a *API) PadClear(slot int) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	p, err := a.cfg.Store.Pad(slot)
	if err != nil {
		return err
	}
	p.Clear()
	return nil
}

// PadObserved returns the last report delivered on the port, keyed by the
// same names PadSetAxis accepts.
func (a *API) PadObserved(slot int) (map[string]any, error) {
	st, err := a.cfg.Mirror.Pad(slot)
	if err != nil {
		return nil, err
	}
	return PadFields(st), nil
}

// PadFields flattens a report into script values.
func PadFields(st gcpad.PadStatus) map[string]any {
	m := map[string]any{"button": int(st.Button)}
	for ax := range gcpad.NumAxes {
		m[ax.String()] = int(st.Get(ax))
	}
	return m
}

func (a *API) wiimote(slot int) (*override.WiimoteOverride, error) {
	return a.cfg.Store.Wiimote(slot)
}

// WiimotePress forces a Wiimote core button on.
func (a *API) WiimotePress(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	b, ok := wiimote.ButtonByName(button)
	if !ok {
		return unknown("wiimote button", button)
	}
	w.Press(b)
	return nil
}

// WiimoteRelease stops forcing a Wiimote core button.
func (a *API) WiimoteRelease(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	b, ok := wiimote.ButtonByName(button)
	if !ok {
		return unknown("wiimote button", button)
	}
	w.Release(b)
	return nil
}

// WiimoteClear removes every override of the port, extensions included.
func (a *API) WiimoteClear(slot int) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	w.Clear()
	return nil
}

// WiimoteObserved returns the last core buttons and extension reports
// delivered on the port.
func (a *API) WiimoteObserved(slot int) (map[string]any, error) {
	st, err := a.cfg.Mirror.Wiimote(slot)
	if err != nil {
		return nil, err
	}
	return WiimoteFields(st), nil
}

// WiimoteFields flattens a Wiimote state into script values.
func WiimoteFields(st override.WiimoteState) map[string]any {
	nc, cc := st.Nunchuk, st.Classic
	pressed := nc.Pressed()
	return map[string]any{
		"buttons": int(st.Buttons),
		"nunchuk": map[string]any{
			"x": int(nc.StickX()),
			"y": int(nc.StickY()),
			"c": pressed&wiimote.NunchukButtonC != 0,
			"z": pressed&wiimote.NunchukButtonZ != 0,
		},
		"classic": map[string]any{
			"buttons": int(cc.Buttons()),
			"lx":      int(cc.LeftX()),
			"ly":      int(cc.LeftY()),
			"rx":      int(cc.RightX()),
			"ry":      int(cc.RightY()),
		},
	}
}

func (a *API) nunchuk(slot int, button string) (*override.WiimoteOverride, uint8, error) {
	w, err := a.wiimote(slot)
	if err != nil {
		return nil, 0, err
	}
	b, ok := wiimote.NunchukButtonByName(button)
	if !ok {
		return nil, 0, unknown("nunchuk button", button)
	}
	return w, b, nil
}

// NunchukPress forces "c" or "z" on.
func (a *API) NunchukPress(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, b, err := a.nunchuk(slot, button)
	if err != nil {
		return err
	}
	w.NunchukPress(b)
	return nil
}

// NunchukRelease stops forcing "c" or "z".
func (a *API) NunchukRelease(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, b, err := a.nunchuk(slot, button)
	if err != nil {
		return err
	}
	w.NunchukRelease(b)
	return nil
}

// NunchukSetAxis overrides the Nunchuk stick axis "x" or "y".
func (a *API) NunchukSetAxis(slot int, axis string, v int) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	ax, err := override.ParseNunchukAxis(axis)
	if err != nil {
		return err
	}
	u, err := axisValue(v)
	if err != nil {
		return err
	}
	w.SetNunchukAxis(ax, u)
	return nil
}

// NunchukClearAxis returns a Nunchuk stick axis to center.
func (a *API) NunchukClearAxis(slot int, axis string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	ax, err := override.ParseNunchukAxis(axis)
	if err != nil {
		return err
	}
	w.ClearNunchukAxis(ax)
	return nil
}

func (a *API) classic(slot int, button string) (*override.WiimoteOverride, uint16, error) {
	w, err := a.wiimote(slot)
	if err != nil {
		return nil, 0, err
	}
	b, ok := wiimote.ClassicButtonByName(button)
	if !ok {
		return nil, 0, unknown("classic button", button)
	}
	return w, b, nil
}

// ClassicPress forces a Classic Controller button on.
func (a *API) ClassicPress(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, b, err := a.classic(slot, button)
	if err != nil {
		return err
	}
	w.ClassicPress(b)
	return nil
}

// ClassicRelease stops forcing a Classic Controller button.
func (a *API) ClassicRelease(slot int, button string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, b, err := a.classic(slot, button)
	if err != nil {
		return err
	}
	w.ClassicRelease(b)
	return nil
}

// ClassicSetAxis overrides a left stick axis. The right stick axes are
// rejected with override.ErrUnsupported.
func (a *API) ClassicSetAxis(slot int, axis string, v int) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	ax, err := override.ParseClassicAxis(axis)
	if err != nil {
		return err
	}
	u, err := axisValue(v)
	if err != nil {
		return err
	}
	return w.SetClassicAxis(ax, u)
}

// ClassicClearAxis returns a left stick axis to center.
func (a *API) ClassicClearAxis(slot int, axis string) error {
	done, err := a.write()
	if err != nil {
		return err
	}
	defer done()
	w, err := a.wiimote(slot)
	if err != nil {
		return err
	}
	ax, err := override.ParseClassicAxis(axis)
	if err != nil {
		return err
	}
	return w.ClearClassicAxis(ax)
}

// FrameAdvance blocks until the core has polled the next frame and returns
// its number. The first call releases the pause the run started under.
func (a *API) FrameAdvance() (uint64, error) {
	if a.resumed.CompareAndSwap(false, true) {
		a.cfg.Host.Resume()
	}
	return a.cfg.Host.WaitFrame(a.ctx)
}

// Release resumes the core if no FrameAdvance has done so yet. Runs call it
// on teardown so a script that never advanced cannot leave the core paused.
func (a *API) Release() {
	if a.resumed.CompareAndSwap(false, true) {
		a.cfg.Host.Resume()
	}
}

// FrameCount returns the number of frames the core has polled.
func (a *API) FrameCount() uint64 {
	return a.cfg.Host.FrameCount()
}

// Print logs its arguments separated by spaces. Lines over the rate limit
// are dropped and counted; the count is logged with the next line that
// gets through. Nothing is printed once the run context is done.
func (a *API) Print(args ...any) {
	if a.ctx.Err() != nil {
		return
	}
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = fmt.Sprint(v)
	}
	line := strings.Join(parts, " ")
	if !a.limiter.Allow() {
		a.dropped.Add(1)
		return
	}
	if n := a.dropped.Swap(0); n > 0 {
		a.logger.Warn("script output rate limited", "dropped", n)
	}
	a.logger.Info(line)
	if a.cfg.Output != nil {
		a.cfg.Output(line)
	}
}

// Dropped returns the number of printed lines discarded since the last
// line that got through.
func (a *API) Dropped() int { return int(a.dropped.Load()) }
