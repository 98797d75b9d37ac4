package wiimote

import "strings"

// ExtensionSize is the length of a Nunchuk or Classic Controller report.
const ExtensionSize = 6

// Nunchuk report layout. Buttons are active low: a set bit means released.
//
//	0: stick X
//	1: stick Y
//	2: accel X (high bits)
//	3: accel Y (high bits)
//	4: accel Z (high bits)
//	5: buttons (bit 0 Z, bit 1 C) and accel low bits
type Nunchuk [ExtensionSize]byte

const (
	NunchukButtonZ uint8 = 0x01
	NunchukButtonC uint8 = 0x02

	// NunchukButtonsReleased is the button byte pattern with every button up.
	NunchukButtonsReleased uint8 = 0x03

	NunchukStickCenter uint8 = 0x80
)

func (n *Nunchuk) StickX() uint8      { return n[0] }
func (n *Nunchuk) StickY() uint8      { return n[1] }
func (n *Nunchuk) SetStickX(v uint8)  { n[0] = v }
func (n *Nunchuk) SetStickY(v uint8)  { n[1] = v }
func (n *Nunchuk) Buttons() uint8     { return n[5] }
func (n *Nunchuk) SetButtons(v uint8) { n[5] = v }

// Pressed returns the buttons held down, as active-high bits.
func (n *Nunchuk) Pressed() uint8 {
	return (n[5] ^ NunchukButtonsReleased) & NunchukButtonsReleased
}

// NeutralNunchuk returns a report with the stick centered and no button held.
func NeutralNunchuk() Nunchuk {
	return Nunchuk{NunchukStickCenter, NunchukStickCenter, 0x80, 0x80, 0x80, NunchukButtonsReleased}
}

var nunchukButtonNames = map[string]uint8{
	"c": NunchukButtonC,
	"z": NunchukButtonZ,
}

// NunchukButtonByName looks up a Nunchuk button bit by its script name.
func NunchukButtonByName(name string) (uint8, bool) {
	b, ok := nunchukButtonNames[strings.ToLower(name)]
	return b, ok
}

// Classic Controller report layout.
//
//	0: left X (bits 0-5), right X bits 3-4 (bits 6-7)
//	1: left Y (bits 0-5), right X bits 1-2 (bits 6-7)
//	2: right Y (bits 0-4), left trigger bits 3-4 (bits 5-6), right X bit 0 (bit 7)
//	3: right trigger (bits 0-4), left trigger bits 0-2 (bits 5-7)
//	4-5: buttons (LE uint16)
type Classic [ExtensionSize]byte

const (
	ClassicButtonR     uint16 = 0x0002
	ClassicButtonPlus  uint16 = 0x0004
	ClassicButtonHome  uint16 = 0x0008
	ClassicButtonMinus uint16 = 0x0010
	ClassicButtonL     uint16 = 0x0020
	ClassicPadDown     uint16 = 0x0040
	ClassicPadRight    uint16 = 0x0080
	ClassicPadUp       uint16 = 0x0100
	ClassicPadLeft     uint16 = 0x0200
	ClassicButtonZR    uint16 = 0x0400
	ClassicButtonX     uint16 = 0x0800
	ClassicButtonA     uint16 = 0x1000
	ClassicButtonY     uint16 = 0x2000
	ClassicButtonB     uint16 = 0x4000
	ClassicButtonZL    uint16 = 0x8000

	ClassicLeftStickCenterX  uint8 = 0x20
	ClassicLeftStickCenterY  uint8 = 0x20
	ClassicRightStickCenterX uint8 = 0x10
	ClassicRightStickCenterY uint8 = 0x10

	classicLeftMask uint8 = 0x3f
)

func (c *Classic) LeftX() uint8 { return c[0] & classicLeftMask }
func (c *Classic) LeftY() uint8 { return c[1] & classicLeftMask }

// SetLeftX stores the low 6 bits of v, keeping the right stick bits.
func (c *Classic) SetLeftX(v uint8) { c[0] = c[0]&^classicLeftMask | v&classicLeftMask }

// SetLeftY stores the low 6 bits of v, keeping the right stick bits.
func (c *Classic) SetLeftY(v uint8) { c[1] = c[1]&^classicLeftMask | v&classicLeftMask }

// RightX reassembles the 5-bit right stick X split over bytes 0-2.
func (c *Classic) RightX() uint8 {
	return c[2]>>7 | (c[1]>>6)<<1 | (c[0]>>6)<<3
}

func (c *Classic) RightY() uint8 { return c[2] & 0x1f }

func (c *Classic) Buttons() uint16     { return uint16(c[4]) | uint16(c[5])<<8 }
func (c *Classic) SetButtons(v uint16) { c[4], c[5] = byte(v), byte(v>>8) }

// NeutralClassic returns a report with both sticks centered.
func NeutralClassic() Classic {
	var c Classic
	c.SetLeftX(ClassicLeftStickCenterX)
	c.SetLeftY(ClassicLeftStickCenterY)
	rx := ClassicRightStickCenterX
	c[0] |= (rx >> 3) << 6
	c[1] |= ((rx >> 1) & 0x3) << 6
	c[2] = ClassicRightStickCenterY | (rx&1)<<7
	return c
}

var classicButtonNames = map[string]uint16{
	"r":     ClassicButtonR,
	"plus":  ClassicButtonPlus,
	"home":  ClassicButtonHome,
	"minus": ClassicButtonMinus,
	"l":     ClassicButtonL,
	"down":  ClassicPadDown,
	"right": ClassicPadRight,
	"up":    ClassicPadUp,
	"left":  ClassicPadLeft,
	"zr":    ClassicButtonZR,
	"x":     ClassicButtonX,
	"a":     ClassicButtonA,
	"y":     ClassicButtonY,
	"b":     ClassicButtonB,
	"zl":    ClassicButtonZL,
}

// ClassicButtonByName looks up a Classic Controller button bit by its
// script name.
func ClassicButtonByName(name string) (uint16, bool) {
	b, ok := classicButtonNames[strings.ToLower(name)]
	return b, ok
}
