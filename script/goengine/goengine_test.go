package goengine_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/emu"
	ptesting "github.com/Alia5/padscript/internal/testing"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/script"
	"github.com/Alia5/padscript/script/goengine"
)

func TestConformance(t *testing.T) {
	ptesting.EngineConformance(t, ".go", ptesting.EngineSources{
		Overrides: `package main

import "padscript"

func Run() {
	padscript.PadPress(0, "a")
	padscript.PadSetAxis(0, "stickX", 255)
	padscript.NunchukPress(1, "c")
	padscript.ClassicSetAxis(2, "lx", 5)
}
`,
		Observed: `package main

import "padscript"

func Run() {
	padscript.FrameAdvance()
	m, _ := padscript.PadObserved(1)
	padscript.Print(m["stickX"], padscript.FrameCount())
}
`,
		RuntimeError: `package main

import "padscript"

func Run() {
	if err := padscript.PadPress(9, "a"); err != nil {
		panic(err)
	}
}
`,
		SyntaxError: `package main

func Run( {
`,
		PrintLoop: `package main

import "padscript"

func Run() {
	for i := 1; ; i++ {
		padscript.Print(i)
	}
}
`,
		FrameLoop: `package main

import "padscript"

func Run() {
	for {
		padscript.FrameAdvance()
	}
}
`,
		AxisLoop: `package main

import "padscript"

func Run() {
	for i := 0; ; i++ {
		padscript.PadSetAxis(0, "stickX", i%256)
	}
}
`,
	})
}

func TestStdoutIsPrinted(t *testing.T) {
	h := ptesting.NewHarness(t)
	eng, err := h.Load(t, ".go", `package main

import (
	"fmt"
	"strings"
)

func Run() {
	fmt.Println(strings.ToUpper("hello"))
	fmt.Print("partial")
}
`)
	require.NoError(t, err)
	require.NoError(t, eng.Run(h.Ctx))
	assert.Equal(t, []string{"HELLO", "partial"}, h.Lines())
}

func TestRestrictedImports(t *testing.T) {
	h := ptesting.NewHarness(t)
	_, err := h.Load(t, ".go", `package main

import "os"

func Run() { os.Exit(1) }
`)
	assert.Error(t, err)
}

func TestEntryPoint(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
		wantLog string
	}{
		{
			name:    "misspelled",
			src:     "package main\n\nfunc run() {}\n",
			wantLog: "script declares no func Run",
		},
		{
			name:    "init only",
			src:     "package main\n\nimport \"padscript\"\n\nfunc init() { padscript.PadPress(0, \"a\") }\n",
			wantLog: "script declares no func Run",
		},
		{
			name:    "not a function",
			src:     "package main\n\nvar Run = 5\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sim, err := emu.NewSim(nil, slog.New(slog.DiscardHandler), nil)
			require.NoError(t, err)
			api := script.NewAPI(t.Context(), script.Config{
				Store:  override.NewStore(),
				Mirror: override.NewMirror(),
				Host:   sim,
				Logger: slog.New(slog.NewTextHandler(&buf, nil)),
			})
			eng := goengine.New(api)
			t.Cleanup(eng.Close)
			require.NoError(t, eng.Load("entry.go", []byte(tt.src)))

			err = eng.Run(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}
