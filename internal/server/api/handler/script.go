package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/Alia5/padscript/apitypes"
	"github.com/Alia5/padscript/internal/server/api"
	"github.com/Alia5/padscript/runner"
)

// StateIdle is reported by script/status before any script was started.
const StateIdle = "idle"

// ScriptStart returns a handler that starts the script named by the
// arguments. It answers once the script has loaded.
func ScriptStart(sup *runner.Supervisor) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		path := strings.Join(req.Args, " ")
		if path == "" {
			return errors.New("missing script path")
		}
		r, err := sup.Start(path)
		if err != nil {
			return err
		}
		logger.Info("script started", "path", path, "digest", r.Digest())
		return writeJSON(res, apitypes.ScriptStartResponse{State: r.State().String(), Digest: r.Digest()})
	}
}

// ScriptStop returns a handler that requests cancellation of the current
// run. It does not wait for the run to end.
func ScriptStop(sup *runner.Supervisor) api.HandlerFunc {
	return func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
		if err := sup.Stop(); err != nil {
			return err
		}
		r, _ := sup.Runner()
		return writeJSON(res, apitypes.ScriptStopResponse{State: r.State().String()})
	}
}

// ScriptStatus returns a handler reporting the current or last run.
func ScriptStatus(sup *runner.Supervisor) api.HandlerFunc {
	return func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
		st, ok := sup.Status()
		if !ok {
			return writeJSON(res, apitypes.ScriptStatusResponse{State: StateIdle})
		}
		out := apitypes.ScriptStatusResponse{
			State:     st.State.String(),
			Path:      st.Path,
			Digest:    st.Digest,
			Frames:    st.Frames,
			ElapsedMs: st.Elapsed.Milliseconds(),
		}
		if st.Err != nil {
			out.LastError = st.Err.Error()
		}
		return writeJSON(res, out)
	}
}

func writeJSON(res *api.Response, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res.JSON = string(b)
	return nil
}
