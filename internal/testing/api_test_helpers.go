package testing

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/internal/server/api"
	"github.com/Alia5/padscript/runner"
)

// TestFeed connects pad 0 holding Y and Wiimote 0 in mode 0x35 with an
// encrypted Nunchuk.
func TestFeed() *emu.Feed {
	return &emu.Feed{
		Pads: []emu.PadFeed{{Slot: 0, Frames: []gcpad.PadStatus{{
			Button: gcpad.ButtonY, StickX: 0x80, StickY: 0x80, SubstickX: 0x80, SubstickY: 0x80,
		}}}},
		Wiimotes: []emu.WiimoteFeed{{
			Slot: 0, Mode: 0x35, Extension: "nunchuk", Key: "0123456789abcdeffedcba9876543210",
		}},
	}
}

// StartAPIServer starts an API server on a free port, backed by a
// Supervisor driving a running simulated core fed with TestFeed. register
// is called to let the caller register the handlers needed for the test.
// Returns the address, the supervisor and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router, sup *runner.Supervisor, apiSrv *api.Server)) (addr string, sup *runner.Supervisor, done func()) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	sim, err := emu.NewSim(TestFeed(), logger, log.NewRaw(nil))
	if err != nil {
		t.Fatalf("sim failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		_ = sim.Run(ctx, 1000)
	}()
	sup = runner.NewSupervisor(ctx, sim, runner.Options{Logger: logger})

	apiSrv := api.New("127.0.0.1:0", api.ServerConfig{}, logger)
	if register != nil {
		register(apiSrv.Router(), sup, apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		cancel()
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		if r, ok := sup.Runner(); ok {
			r.Stop()
			<-r.Done()
		}
		cancel()
		<-simDone
	}
	return apiSrv.Addr(), sup, done
}

// ExecCmd executes a raw command against a running API server and returns the full
// response line without the trailing newline. Client errors call t.Fatalf.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()
	r := bufio.NewReader(c)
	_, _ = fmt.Fprintf(c, "%s\n", cmd)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}

// ExecuteLine routes a single command line through r the way the server's
// connection handler does, without network IO, and returns the response line.
func ExecuteLine(t *testing.T, r *api.Router, line string) string {
	t.Helper()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	path := strings.ToLower(fields[0])
	h, params := r.Match(path)
	if h == nil {
		return jsonError("unknown path")
	}
	req := &api.Request{Ctx: t.Context(), Params: params, Args: fields[1:]}
	res := &api.Response{}
	if err := h(req, res, slog.New(slog.DiscardHandler)); err != nil {
		return jsonError(err.Error())
	}
	return res.JSON
}

func jsonError(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
