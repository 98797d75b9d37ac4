// Package jsengine runs JavaScript scripts (.js) on goja.
package jsengine

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/Alia5/padscript/script"
)

func init() {
	script.RegisterEngine(".js", New)
}

// Engine is a goja runtime with the host API bound as the globals pad,
// wiimote, nunchuk, classic, emu and print.
type Engine struct {
	vm   *goja.Runtime
	api  *script.API
	prog *goja.Program
}

// New returns an engine bound to api.
func New(api *script.API) script.Engine {
	return &Engine{api: api}
}

func (e *Engine) Load(name string, src []byte) error {
	prog, err := goja.Compile(name, string(src), false)
	if err != nil {
		return err
	}
	vm := goja.New()
	if err := bind(vm, e.api); err != nil {
		return err
	}
	e.vm, e.prog = vm, prog
	return nil
}

func (e *Engine) Run(ctx context.Context) error {
	if e.prog == nil {
		return fmt.Errorf("jsengine: run before load")
	}
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	vm := e.vm
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(interrupted)
		vm.Interrupt(context.Cause(ctx))
	})
	defer func() {
		// A callback that already started must finish before Close may
		// clear the interrupt.
		if !stop() {
			<-interrupted
		}
	}()
	_, err := vm.RunProgram(e.prog)
	return err
}

// Close releases the runtime. It must not be called while Run is active.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.ClearInterrupt()
	}
	e.vm, e.prog = nil, nil
}

func bind(vm *goja.Runtime, api *script.API) error {
	objects := map[string]map[string]any{
		"pad": {
			"press":     api.PadPress,
			"release":   api.PadRelease,
			"setAxis":   api.PadSetAxis,
			"clearAxis": api.PadClearAxis,
			"clear":     api.PadClear,
			"observed":  api.PadObserved,
		},
		"wiimote": {
			"press":    api.WiimotePress,
			"release":  api.WiimoteRelease,
			"clear":    api.WiimoteClear,
			"observed": api.WiimoteObserved,
		},
		"nunchuk": {
			"press":     api.NunchukPress,
			"release":   api.NunchukRelease,
			"setAxis":   api.NunchukSetAxis,
			"clearAxis": api.NunchukClearAxis,
		},
		"classic": {
			"press":     api.ClassicPress,
			"release":   api.ClassicRelease,
			"setAxis":   api.ClassicSetAxis,
			"clearAxis": api.ClassicClearAxis,
		},
		"emu": {
			"frameAdvance": api.FrameAdvance,
			"frameCount":   api.FrameCount,
		},
	}
	for name, funcs := range objects {
		obj := vm.NewObject()
		for fn, impl := range funcs {
			if err := obj.Set(fn, impl); err != nil {
				return fmt.Errorf("bind %s.%s: %w", name, fn, err)
			}
		}
		if err := vm.Set(name, obj); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return vm.Set("print", func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.String()
		}
		api.Print(args...)
		return goja.Undefined()
	})
}
