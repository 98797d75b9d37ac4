package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/Alia5/padscript/apitypes"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/internal/server/api"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/runner"
)

var errNoRun = errors.New("no script has run")

func observedSlot(sup *runner.Supervisor, req *api.Request) (*override.Mirror, int, error) {
	slot, err := strconv.Atoi(req.Params["slot"])
	if err != nil {
		return nil, 0, err
	}
	r, ok := sup.Runner()
	if !ok {
		return nil, 0, errNoRun
	}
	return r.Mirror(), slot, nil
}

// PadObserved returns a handler for "pad/{slot}/observed". It reports the
// last report delivered on the port by the current or last run.
func PadObserved(sup *runner.Supervisor) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, _ *slog.Logger) error {
		m, slot, err := observedSlot(sup, req)
		if err != nil {
			return err
		}
		st, err := m.Pad(slot)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.PadObservedResponse{
			Slot:         slot,
			Button:       st.Button,
			StickX:       st.StickX,
			StickY:       st.StickY,
			SubstickX:    st.SubstickX,
			SubstickY:    st.SubstickY,
			TriggerLeft:  st.TriggerLeft,
			TriggerRight: st.TriggerRight,
		})
	}
}

// WiimoteObserved returns a handler for "wiimote/{slot}/observed".
func WiimoteObserved(sup *runner.Supervisor) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, _ *slog.Logger) error {
		m, slot, err := observedSlot(sup, req)
		if err != nil {
			return err
		}
		st, err := m.Wiimote(slot)
		if err != nil {
			return err
		}
		nc, cc := st.Nunchuk, st.Classic
		pressed := nc.Pressed()
		return writeJSON(res, apitypes.WiimoteObservedResponse{
			Slot:    slot,
			Buttons: st.Buttons,
			Nunchuk: apitypes.NunchukObserved{
				X: nc.StickX(),
				Y: nc.StickY(),
				C: pressed&wiimote.NunchukButtonC != 0,
				Z: pressed&wiimote.NunchukButtonZ != 0,
			},
			Classic: apitypes.ClassicObserved{
				Buttons: cc.Buttons(),
				LX:      cc.LeftX(),
				LY:      cc.LeftY(),
				RX:      cc.RightX(),
				RY:      cc.RightY(),
			},
		})
	}
}
