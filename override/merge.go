package override

import (
	"golang.org/x/exp/constraints"

	"github.com/Alia5/padscript/device/wiimote"
)

// mergeAxis replaces *live with override unless override is the rest
// sentinel.
func mergeAxis[T constraints.Unsigned](live *T, override, rest T) {
	if override != rest {
		*live = override
	}
}

// MergeButtons adds the override presses to a live active-high button mask.
func MergeButtons[T constraints.Unsigned](live, override T) T {
	return live | override
}

// MergeNunchukButtons adds override presses (active high) to a live Nunchuk
// button byte (active low, NunchukButtonsReleased when idle). The live byte
// is flipped to active high, OR'ed, and flipped back; bits outside the
// released mask pass through.
func MergeNunchukButtons(live, override uint8) uint8 {
	live ^= wiimote.NunchukButtonsReleased
	live |= override
	return live ^ wiimote.NunchukButtonsReleased
}
