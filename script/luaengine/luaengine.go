// Package luaengine runs Lua scripts (.lua) on gopher-lua in a sandbox
// holding only the base, table, string and math libraries.
package luaengine

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/Alia5/padscript/script"
)

func init() {
	script.RegisterEngine(".lua", New)
}

// Globals removed from the base library.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"}

// Engine is a sandboxed Lua state with the host API bound as the tables
// pad, wiimote, nunchuk, classic and emu, and the function print.
type Engine struct {
	api *script.API
	L   *lua.LState
	fn  *lua.LFunction
}

// New returns an engine bound to api.
func New(api *script.API) script.Engine {
	return &Engine{api: api}
}

func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (e *Engine) Load(name string, src []byte) error {
	L := newSandbox()
	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		L.Close()
		return err
	}
	e.bind(L)
	e.L, e.fn = L, fn
	return nil
}

func (e *Engine) Run(ctx context.Context) error {
	if e.fn == nil {
		return fmt.Errorf("luaengine: run before load")
	}
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()
	e.L.Push(e.fn)
	return e.L.PCall(0, lua.MultRet, nil)
}

func (e *Engine) Close() {
	if e.L != nil {
		e.L.Close()
	}
	e.L, e.fn = nil, nil
}

func (e *Engine) bind(L *lua.LState) {
	api := e.api
	tables := map[string]map[string]lua.LGFunction{
		"pad": {
			"press":     buttonFunc(api.PadPress),
			"release":   buttonFunc(api.PadRelease),
			"setAxis":   setAxisFunc(api.PadSetAxis),
			"clearAxis": buttonFunc(api.PadClearAxis),
			"clear":     slotFunc(api.PadClear),
			"observed":  observedFunc(api.PadObserved),
		},
		"wiimote": {
			"press":    buttonFunc(api.WiimotePress),
			"release":  buttonFunc(api.WiimoteRelease),
			"clear":    slotFunc(api.WiimoteClear),
			"observed": observedFunc(api.WiimoteObserved),
		},
		"nunchuk": {
			"press":     buttonFunc(api.NunchukPress),
			"release":   buttonFunc(api.NunchukRelease),
			"setAxis":   setAxisFunc(api.NunchukSetAxis),
			"clearAxis": buttonFunc(api.NunchukClearAxis),
		},
		"classic": {
			"press":     buttonFunc(api.ClassicPress),
			"release":   buttonFunc(api.ClassicRelease),
			"setAxis":   setAxisFunc(api.ClassicSetAxis),
			"clearAxis": buttonFunc(api.ClassicClearAxis),
		},
		"emu": {
			"frameAdvance": func(L *lua.LState) int {
				n, err := api.FrameAdvance()
				if err != nil {
					L.RaiseError("%s", err.Error())
				}
				L.Push(lua.LNumber(n))
				return 1
			},
			"frameCount": func(L *lua.LState) int {
				L.Push(lua.LNumber(api.FrameCount()))
				return 1
			},
		},
	}
	for name, funcs := range tables {
		L.SetGlobal(name, L.SetFuncs(L.NewTable(), funcs))
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		args := make([]any, n)
		for i := 1; i <= n; i++ {
			args[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		api.Print(args...)
		return 0
	}))
}

func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func slotFunc(f func(int) error) lua.LGFunction {
	return func(L *lua.LState) int {
		raise(L, f(L.CheckInt(1)))
		return 0
	}
}

func buttonFunc(f func(int, string) error) lua.LGFunction {
	return func(L *lua.LState) int {
		raise(L, f(L.CheckInt(1), L.CheckString(2)))
		return 0
	}
}

func setAxisFunc(f func(int, string, int) error) lua.LGFunction {
	return func(L *lua.LState) int {
		raise(L, f(L.CheckInt(1), L.CheckString(2), L.CheckInt(3)))
		return 0
	}
}

func observedFunc(f func(int) (map[string]any, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		m, err := f(L.CheckInt(1))
		raise(L, err)
		L.Push(toTable(L, m))
		return 1
	}
}

func toTable(L *lua.LState, m map[string]any) *lua.LTable {
	t := L.NewTable()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		t.RawSetString(k, toValue(L, m[k]))
	}
	return t
}

func toValue(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case int:
		return lua.LNumber(v)
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case map[string]any:
		return toTable(L, v)
	}
	return lua.LNil
}
