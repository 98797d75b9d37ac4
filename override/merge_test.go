package override

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padscript/device/wiimote"
)

func maskedNunchukButtons(live, override uint8) uint8 {
	const m = wiimote.NunchukButtonsReleased
	return live&^(override&m) | override&^m
}

func TestMergeAxisSentinel(t *testing.T) {
	const rest = uint8(0x80)
	for live := range 256 {
		for _, ov := range []uint8{0x00, 0x01, 0x7f, rest, 0x81, 0xff} {
			got := uint8(live)
			mergeAxis(&got, ov, rest)
			if ov == rest {
				assert.Equal(t, uint8(live), got, "rest override must keep live %d", live)
			} else {
				assert.Equal(t, ov, got, "override %d on live %d", ov, live)
			}
		}
	}
}

func TestMergeButtonsMonotonic(t *testing.T) {
	masks := []uint16{0x0000, 0x0001, 0x0100, 0x0f0f, 0x1234, 0xffff}
	for _, live := range masks {
		for _, ov := range masks {
			once := MergeButtons(live, ov)
			assert.Equal(t, live|ov, once)
			assert.Equal(t, live, once&live, "live presses must survive")
			assert.Equal(t, once, MergeButtons(once, ov), "merge must be idempotent")
		}
	}
}

func TestNunchukNormalizationMatchesMaskedSet(t *testing.T) {
	for live := range uint8(4) {
		for ov := range uint8(4) {
			assert.Equal(t, maskedNunchukButtons(live, ov), MergeNunchukButtons(live, ov),
				"live=%02b override=%02b", live, ov)
		}
	}

	// accelerometer low bits share the byte and must pass through
	for _, high := range []uint8{0x00, 0x54, 0xfc} {
		for ov := range uint8(4) {
			live := high | wiimote.NunchukButtonsReleased
			got := MergeNunchukButtons(live, ov)
			assert.Equal(t, high, got&^wiimote.NunchukButtonsReleased)
			assert.Equal(t, maskedNunchukButtons(live, ov), got)
		}
	}
}

func TestNunchukPressClearsActiveLowBit(t *testing.T) {
	idle := wiimote.NunchukButtonsReleased
	assert.Equal(t, idle&^wiimote.NunchukButtonC, MergeNunchukButtons(idle, wiimote.NunchukButtonC))
	assert.Equal(t, uint8(0), MergeNunchukButtons(idle, wiimote.NunchukButtonC|wiimote.NunchukButtonZ))
	assert.Equal(t, idle, MergeNunchukButtons(idle, 0))
	// a real press is never undone
	got := MergeNunchukButtons(idle&^wiimote.NunchukButtonZ, wiimote.NunchukButtonC)
	assert.Zero(t, got&wiimote.NunchukButtonZ)
	assert.Zero(t, got&wiimote.NunchukButtonC)
}
