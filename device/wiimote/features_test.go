package wiimote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/device/wiimote"
)

func TestReportModeViews(t *testing.T) {
	tests := []struct {
		mode                    byte
		core, accel, ir, extLen int
	}{
		{mode: 0x30, core: 2},
		{mode: 0x31, core: 2, accel: 3},
		{mode: 0x32, core: 2, extLen: 8},
		{mode: 0x33, core: 2, accel: 3, ir: 12},
		{mode: 0x34, core: 2, extLen: 19},
		{mode: 0x35, core: 2, accel: 3, extLen: 16},
		{mode: 0x36, core: 2, ir: 10, extLen: 9},
		{mode: 0x37, core: 2, accel: 3, ir: 10, extLen: 6},
		{mode: 0x3d, extLen: 21},
	}
	for _, tt := range tests {
		rptf, ok := wiimote.ReportModes[tt.mode]
		require.True(t, ok)
		v, err := rptf.Views(make([]byte, rptf.Size))
		require.NoError(t, err, "mode %#x", tt.mode)
		assert.Len(t, v.Core, tt.core, "mode %#x core", tt.mode)
		assert.Len(t, v.Accel, tt.accel, "mode %#x accel", tt.mode)
		assert.Len(t, v.IR, tt.ir, "mode %#x ir", tt.mode)
		assert.Len(t, v.Ext, tt.extLen, "mode %#x ext", tt.mode)
		assert.Equal(t, tt.core == 0, v.Core == nil)
		assert.Equal(t, tt.extLen == 0, v.Ext == nil)
	}
}

func TestViewsAreBounded(t *testing.T) {
	rptf := wiimote.ReportModes[0x37]
	data := make([]byte, rptf.Size+10)
	v, err := rptf.Views(data)
	require.NoError(t, err)
	assert.Equal(t, len(v.Ext), cap(v.Ext), "views must not reach past their region")

	v.Core[0] = 0xaa
	assert.Equal(t, byte(0xaa), data[rptf.Core])
}

func TestViewsMalformed(t *testing.T) {
	tests := []struct {
		name string
		rptf wiimote.Features
		len  int
	}{
		{name: "size beyond buffer", rptf: wiimote.ReportModes[0x37], len: 10},
		{name: "core beyond size", rptf: wiimote.Features{Core: 3, Size: 4}, len: 4},
		{name: "short extension", rptf: wiimote.Features{Core: 2, Ext: 4, Size: 8}, len: 8},
		{name: "accel beyond size", rptf: wiimote.Features{Accel: 5, Size: 6}, len: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rptf.Views(make([]byte, tt.len))
			assert.ErrorIs(t, err, wiimote.ErrMalformed)
		})
	}
}

func TestParseExtension(t *testing.T) {
	for _, ext := range []wiimote.Extension{wiimote.ExtensionNone, wiimote.ExtensionNunchuk, wiimote.ExtensionClassic} {
		got, err := wiimote.ParseExtension(ext.String())
		require.NoError(t, err)
		assert.Equal(t, ext, got)
	}
	_, err := wiimote.ParseExtension("balance-board")
	assert.Error(t, err)
}

func TestClassicFields(t *testing.T) {
	c := wiimote.NeutralClassic()
	assert.Equal(t, wiimote.ClassicLeftStickCenterX, c.LeftX())
	assert.Equal(t, wiimote.ClassicLeftStickCenterY, c.LeftY())
	assert.Equal(t, wiimote.ClassicRightStickCenterX, c.RightX())
	assert.Equal(t, wiimote.ClassicRightStickCenterY, c.RightY())

	c.SetLeftX(0xff)
	assert.Equal(t, uint8(0x3f), c.LeftX())
	assert.Equal(t, wiimote.ClassicRightStickCenterX, c.RightX(), "left stick writes keep right stick bits")

	c.SetButtons(wiimote.ClassicButtonA | wiimote.ClassicPadUp)
	assert.Equal(t, wiimote.ClassicButtonA|wiimote.ClassicPadUp, c.Buttons())
}

func TestButtonNames(t *testing.T) {
	b, ok := wiimote.ButtonByName("HOME")
	assert.True(t, ok)
	assert.Equal(t, wiimote.ButtonHome, b)
	n, ok := wiimote.NunchukButtonByName("c")
	assert.True(t, ok)
	assert.Equal(t, wiimote.NunchukButtonC, n)
	cb, ok := wiimote.ClassicButtonByName("zl")
	assert.True(t, ok)
	assert.Equal(t, wiimote.ClassicButtonZL, cb)
	_, ok = wiimote.ButtonByName("turbo")
	assert.False(t, ok)
}
