package wiimote

import "strings"

// Core button bits, as the little-endian uint16 read from the core region.
const (
	ButtonLeft  uint16 = 0x0001
	ButtonRight uint16 = 0x0002
	ButtonDown  uint16 = 0x0004
	ButtonUp    uint16 = 0x0008
	ButtonPlus  uint16 = 0x0010
	ButtonTwo   uint16 = 0x0100
	ButtonOne   uint16 = 0x0200
	ButtonB     uint16 = 0x0400
	ButtonA     uint16 = 0x0800
	ButtonMinus uint16 = 0x1000
	ButtonHome  uint16 = 0x8000
)

// CoreSize is the length of the core button region.
const CoreSize = 2

// CoreButtons reads the button field of a core region.
func CoreButtons(core []byte) uint16 {
	return uint16(core[0]) | uint16(core[1])<<8
}

// SetCoreButtons writes the button field of a core region.
func SetCoreButtons(core []byte, v uint16) {
	core[0] = byte(v)
	core[1] = byte(v >> 8)
}

var coreButtonNames = map[string]uint16{
	"left":  ButtonLeft,
	"right": ButtonRight,
	"down":  ButtonDown,
	"up":    ButtonUp,
	"plus":  ButtonPlus,
	"two":   ButtonTwo,
	"one":   ButtonOne,
	"b":     ButtonB,
	"a":     ButtonA,
	"minus": ButtonMinus,
	"home":  ButtonHome,
}

// ButtonByName looks up a core button bit by its script name.
func ButtonByName(name string) (uint16, bool) {
	b, ok := coreButtonNames[strings.ToLower(name)]
	return b, ok
}
