package gcpad_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padscript/device/gcpad"
)

func TestStatusWireFormat(t *testing.T) {
	tests := []struct {
		name   string
		status gcpad.PadStatus
		wire   []byte
	}{
		{
			name:   "neutral",
			status: gcpad.Neutral(),
			wire:   []byte{0x00, 0x00, 0x80, 0x80, 0x80, 0x80, 0x00, 0x00},
		},
		{
			name:   "a+start, full left trigger",
			status: gcpad.PadStatus{Button: gcpad.ButtonA | gcpad.ButtonStart, StickX: 0x80, StickY: 0x80, SubstickX: 0x80, SubstickY: 0x80, TriggerLeft: 0xff},
			wire:   []byte{0x00, 0x11, 0x80, 0x80, 0x80, 0x80, 0xff, 0x00},
		},
		{
			name:   "dpad and sticks",
			status: gcpad.PadStatus{Button: gcpad.ButtonUp | gcpad.ButtonLeft, StickX: 0x00, StickY: 0xff, SubstickX: 0x12, SubstickY: 0x34, TriggerRight: 0x56},
			wire:   []byte{0x09, 0x00, 0x00, 0xff, 0x12, 0x34, 0x00, 0x56},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.status.MarshalBinary()
			assert.NoError(t, err)
			assert.Equal(t, tt.wire, b)

			var got gcpad.PadStatus
			assert.NoError(t, got.UnmarshalBinary(tt.wire))
			assert.Equal(t, tt.status, got)
		})
	}

	var s gcpad.PadStatus
	assert.ErrorIs(t, s.UnmarshalBinary([]byte{0x00}), io.ErrUnexpectedEOF)
}

func TestAxes(t *testing.T) {
	var s gcpad.PadStatus
	for a := range gcpad.NumAxes {
		s.Set(a, uint8(a)+1)
	}
	assert.Equal(t, gcpad.PadStatus{StickX: 1, StickY: 2, SubstickX: 3, SubstickY: 4, TriggerLeft: 5, TriggerRight: 6}, s)

	a, ok := gcpad.AxisByName("TriggerL")
	assert.True(t, ok)
	assert.Equal(t, gcpad.AxisTriggerLeft, a)
	assert.Equal(t, gcpad.TriggerRest, a.Rest())
	assert.Equal(t, gcpad.MainStickCenterX, gcpad.AxisStickX.Rest())

	_, ok = gcpad.AxisByName("wheel")
	assert.False(t, ok)

	b, ok := gcpad.ButtonByName("Start")
	assert.True(t, ok)
	assert.Equal(t, gcpad.ButtonStart, b)
}
