package override_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/override"
)

func TestStoreSlots(t *testing.T) {
	s := override.NewStore()
	for _, slot := range []int{-1, 4, 100} {
		_, err := s.Pad(slot)
		assert.ErrorIs(t, err, override.ErrOutOfRange)
		_, err = s.Wiimote(slot)
		assert.ErrorIs(t, err, override.ErrOutOfRange)
	}
	for slot := range override.NumSlots {
		p, err := s.Pad(slot)
		require.NoError(t, err)
		assert.Zero(t, p.Buttons())
		for a := range gcpad.NumAxes {
			assert.Equal(t, a.Rest(), p.Axis(a), "slot %d axis %s", slot, a)
		}
	}
}

func TestPadOverrideLastWriteWins(t *testing.T) {
	s := override.NewStore()
	p, err := s.Pad(2)
	require.NoError(t, err)

	p.SetAxis(gcpad.AxisStickX, 0x10)
	p.SetAxis(gcpad.AxisStickX, 0x20)
	assert.Equal(t, uint8(0x20), p.Axis(gcpad.AxisStickX))

	p.Press(gcpad.ButtonA | gcpad.ButtonB)
	p.Release(gcpad.ButtonA)
	assert.Equal(t, gcpad.ButtonB, p.Buttons())

	p.ClearAxis(gcpad.AxisStickX)
	assert.Equal(t, gcpad.MainStickCenterX, p.Axis(gcpad.AxisStickX))

	p.SetAxis(gcpad.AxisTriggerLeft, 0xff)
	p.Clear()
	assert.Zero(t, p.Buttons())
	assert.Equal(t, gcpad.TriggerRest, p.Axis(gcpad.AxisTriggerLeft))
}

func TestWiimoteOverrideAxes(t *testing.T) {
	s := override.NewStore()
	w, err := s.Wiimote(0)
	require.NoError(t, err)

	assert.Equal(t, wiimote.NunchukStickCenter, w.NunchukAxis(override.NunchukX))
	w.SetNunchukAxis(override.NunchukY, 0x05)
	assert.Equal(t, uint8(0x05), w.NunchukAxis(override.NunchukY))
	w.ClearNunchukAxis(override.NunchukY)
	assert.Equal(t, wiimote.NunchukStickCenter, w.NunchukAxis(override.NunchukY))

	assert.NoError(t, w.SetClassicAxis(override.ClassicLeftX, 0x3f))
	assert.Equal(t, uint8(0x3f), w.ClassicAxis(override.ClassicLeftX))
	assert.ErrorIs(t, w.SetClassicAxis(override.ClassicRightX, 0x01), override.ErrUnsupported)
	assert.ErrorIs(t, w.ClearClassicAxis(override.ClassicRightY), override.ErrUnsupported)
	assert.Equal(t, wiimote.ClassicRightStickCenterX, w.ClassicAxis(override.ClassicRightX))

	w.NunchukPress(wiimote.NunchukButtonC)
	w.Press(wiimote.ButtonA)
	w.ClassicPress(wiimote.ClassicButtonZL)
	w.Clear()
	assert.Zero(t, w.Buttons())
	assert.Zero(t, w.NunchukButtons())
	assert.Zero(t, w.ClassicButtons())
	assert.Equal(t, wiimote.ClassicLeftStickCenterX, w.ClassicAxis(override.ClassicLeftX))
}

func TestParseAxes(t *testing.T) {
	a, err := override.ParseNunchukAxis("y")
	assert.NoError(t, err)
	assert.Equal(t, override.NunchukY, a)
	_, err = override.ParseNunchukAxis("z")
	assert.ErrorIs(t, err, override.ErrUnknownInput)

	c, err := override.ParseClassicAxis("rx")
	assert.NoError(t, err)
	assert.Equal(t, override.ClassicRightX, c)
	_, err = override.ParseClassicAxis("trigger")
	assert.ErrorIs(t, err, override.ErrUnknownInput)
}

func TestMirrorStartsAtRest(t *testing.T) {
	m := override.NewMirror()
	p, err := m.Pad(3)
	require.NoError(t, err)
	assert.Equal(t, gcpad.Neutral(), p)

	w, err := m.Wiimote(3)
	require.NoError(t, err)
	assert.Equal(t, wiimote.NeutralNunchuk(), w.Nunchuk)
	assert.Equal(t, wiimote.NeutralClassic(), w.Classic)

	_, err = m.Pad(4)
	assert.ErrorIs(t, err, override.ErrOutOfRange)
	_, err = m.Wiimote(-1)
	assert.ErrorIs(t, err, override.ErrOutOfRange)
}
