package handler_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/apiclient"
	"github.com/Alia5/padscript/apitypes"
	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	handlerTest "github.com/Alia5/padscript/internal/testing"
)

func TestObservedBeforeAnyRun(t *testing.T) {
	addr, _, done := handlerTest.StartAPIServer(t, registerScript)
	defer done()
	c := apiclient.NewTransport(addr, nil)

	tests := []struct {
		name    string
		command string
		wantMsg string
	}{
		{name: "pad", command: "pad/0/observed", wantMsg: "no script has run"},
		{name: "wiimote", command: "wiimote/0/observed", wantMsg: "no script has run"},
		{name: "bad slot", command: "pad/x/observed", wantMsg: `strconv.Atoi: parsing "x": invalid syntax`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Do(t.Context(), tt.command, "")
			var se *apiclient.ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}
}

func TestObservedReflectsOverrides(t *testing.T) {
	addr, _, done := handlerTest.StartAPIServer(t, registerScript)
	defer done()
	c := apiclient.NewTransport(addr, nil)

	_, err := c.Do(t.Context(), "script/start", writeScript(t, "loop.js", loopScript))
	require.NoError(t, err)

	var pad apitypes.PadObservedResponse
	require.Eventually(t, func() bool {
		line, err := c.Do(t.Context(), "pad/0/observed", "")
		if err != nil || json.Unmarshal([]byte(line), &pad) != nil {
			return false
		}
		return pad.Button&gcpad.ButtonA != 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, gcpad.ButtonA|gcpad.ButtonY, pad.Button, "live buttons are kept")
	assert.Equal(t, uint8(255), pad.StickX)
	assert.Equal(t, gcpad.MainStickCenterY, pad.StickY)

	var wm apitypes.WiimoteObservedResponse
	require.Eventually(t, func() bool {
		line, err := c.Do(t.Context(), "wiimote/0/observed", "")
		if err != nil || json.Unmarshal([]byte(line), &wm) != nil {
			return false
		}
		return wm.Buttons&wiimote.ButtonTwo != 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, wm.Nunchuk.C)
	assert.False(t, wm.Nunchuk.Z)
	assert.Equal(t, wiimote.NunchukStickCenter, wm.Nunchuk.X)

	_, err = c.Do(t.Context(), "pad/4/observed", "")
	var se *apiclient.ServerError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "slot out of range")
}
