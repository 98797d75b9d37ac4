package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/apiclient"
	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/internal/server/api"
	"github.com/Alia5/padscript/runner"
	_ "github.com/Alia5/padscript/script/engines"
)

var quiet = slog.New(slog.DiscardHandler)

const feedYAML = `pads:
  - slot: 0
    frames:
      - {button: 0x0800, stickX: 128, stickY: 128, substickX: 128, substickY: 128}
wiimotes:
  - slot: 1
    mode: 0x35
    extension: nunchuk
    key: 0123456789abcdeffedcba9876543210
`

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

func TestRunCompleted(t *testing.T) {
	var out bytes.Buffer
	c := &Run{
		SimFlags: SimFlags{Feed: writeFile(t, "feed.yaml", feedYAML), FPS: 1000},
		Script:   writeFile(t, "a.lua", "pad.press(0, 'a')\nfor i = 1, 3 do emu.frameAdvance() end\n"),
		Out:      &out,
	}
	require.NoError(t, c.run(t.Context(), quiet, log.NewRaw(nil)))

	s := out.String()
	assert.Contains(t, s, "pad 0")
	assert.Contains(t, s, "0x0900", "live Y plus scripted A")
	assert.Contains(t, s, "wiimote 1")
	assert.Contains(t, s, "completed: ")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		src    string
		want   error
	}{
		{name: "load error", script: "bad.js", src: "function (", want: runner.ErrLoad},
		{name: "runtime error", script: "bad.js", src: `pad.press(7, "a")`, want: runner.ErrRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &Run{SimFlags: SimFlags{FPS: 1000}, Script: writeFile(t, tt.script, tt.src), Out: &out}
			err := c.run(t.Context(), quiet, log.NewRaw(nil))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunFrameLimit(t *testing.T) {
	var out bytes.Buffer
	c := &Run{
		SimFlags: SimFlags{FPS: 1000},
		Script:   writeFile(t, "loop.js", "while (true) { emu.frameAdvance(); }"),
		Frames:   20,
		Out:      &out,
	}
	require.NoError(t, c.run(t.Context(), quiet, log.NewRaw(nil)))
	assert.Contains(t, out.String(), "cancelled: ")
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	var out bytes.Buffer
	c := &Run{
		SimFlags: SimFlags{FPS: 1000},
		Script:   writeFile(t, "loop.lua", "while true do emu.frameAdvance() end"),
		Out:      &out,
	}
	require.NoError(t, c.run(ctx, quiet, log.NewRaw(nil)))
	assert.Contains(t, out.String(), "cancelled: ")
}

func TestRunRejectsBadFPS(t *testing.T) {
	c := &Run{Script: writeFile(t, "a.js", ""), Out: &bytes.Buffer{}}
	assert.Error(t, c.run(t.Context(), quiet, log.NewRaw(nil)))
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.js", `pad.press(0, "a");`)
	bad := writeFile(t, "bad.lua", "if then")

	var out bytes.Buffer
	c := &Check{Scripts: []string{good}, Jobs: 2, Out: &out}
	require.NoError(t, c.Run(quiet))
	assert.Contains(t, out.String(), "ok    "+good)

	out.Reset()
	c = &Check{Scripts: []string{good, bad, good}, Out: &out}
	err := c.Run(quiet)
	require.EqualError(t, err, "1 of 3 scripts failed to load")
	assert.Contains(t, out.String(), "FAIL  "+bad)
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	s := &Serve{
		ServerConfig: api.ServerConfig{Addr: "127.0.0.1:0"},
		SimFlags:     SimFlags{Feed: writeFile(t, "feed.yaml", feedYAML), FPS: 1000},
		Version:      "1.2.3",
	}
	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.serve(ctx, quiet, log.NewRaw(nil), func(srv *api.Server) { addrCh <- srv.Addr() })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("serve failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not start")
	}

	c := apiclient.New(addr)
	ping, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", ping.Version)

	started, err := c.ScriptStart(writeFile(t, "loop.js", `pad.press(0, "b"); while (true) { emu.frameAdvance(); }`))
	require.NoError(t, err)
	assert.Equal(t, "running", started.State)

	assert.Eventually(t, func() bool {
		pad, err := c.PadObserved(0)
		return err == nil && pad.Button == 0x0a00
	}, 5*time.Second, 10*time.Millisecond)

	_, err = c.ScriptStop()
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		st, err := c.ScriptStatus()
		return err == nil && st.State == "cancelled"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
