// Package gcpad describes the GameCube controller report the emulation core
// polls once per frame for each of the four controller ports.
package gcpad

import (
	"io"
	"strings"
)

// Button bits of PadStatus.Button.
const (
	ButtonLeft  uint16 = 0x0001
	ButtonRight uint16 = 0x0002
	ButtonDown  uint16 = 0x0004
	ButtonUp    uint16 = 0x0008
	TriggerZ    uint16 = 0x0010
	TriggerR    uint16 = 0x0020
	TriggerL    uint16 = 0x0040
	ButtonA     uint16 = 0x0100
	ButtonB     uint16 = 0x0200
	ButtonX     uint16 = 0x0400
	ButtonY     uint16 = 0x0800
	ButtonStart uint16 = 0x1000
)

// Rest positions. An override equal to the rest position is not applied.
const (
	MainStickCenterX uint8 = 0x80
	MainStickCenterY uint8 = 0x80
	CStickCenterX    uint8 = 0x80
	CStickCenterY    uint8 = 0x80
	TriggerRest      uint8 = 0x00
)

// StatusSize is the size of the PadStatus wire format.
const StatusSize = 8

// PadStatus is a single polled controller report.
//
// Wire format: fixed 8 bytes, little-endian.
//
//	Button:       2 bytes (LE uint16)
//	StickX:       1 byte
//	StickY:       1 byte
//	SubstickX:    1 byte
//	SubstickY:    1 byte
//	TriggerLeft:  1 byte
//	TriggerRight: 1 byte
type PadStatus struct {
	Button       uint16 `json:"button" yaml:"button" toml:"button"`
	StickX       uint8  `json:"stickX" yaml:"stickX" toml:"stickX"`
	StickY       uint8  `json:"stickY" yaml:"stickY" toml:"stickY"`
	SubstickX    uint8  `json:"substickX" yaml:"substickX" toml:"substickX"`
	SubstickY    uint8  `json:"substickY" yaml:"substickY" toml:"substickY"`
	TriggerLeft  uint8  `json:"triggerLeft" yaml:"triggerLeft" toml:"triggerLeft"`
	TriggerRight uint8  `json:"triggerRight" yaml:"triggerRight" toml:"triggerRight"`
}

// Neutral returns a report with no buttons held and every axis at rest.
func Neutral() PadStatus {
	return PadStatus{
		StickX:    MainStickCenterX,
		StickY:    MainStickCenterY,
		SubstickX: CStickCenterX,
		SubstickY: CStickCenterY,
	}
}

// MarshalBinary encodes PadStatus to the fixed 8-byte wire format.
func (s PadStatus) MarshalBinary() ([]byte, error) {
	b := make([]byte, StatusSize)
	b[0] = byte(s.Button)
	b[1] = byte(s.Button >> 8)
	b[2] = s.StickX
	b[3] = s.StickY
	b[4] = s.SubstickX
	b[5] = s.SubstickY
	b[6] = s.TriggerLeft
	b[7] = s.TriggerRight
	return b, nil
}

// UnmarshalBinary decodes PadStatus from the fixed 8-byte wire format.
func (s *PadStatus) UnmarshalBinary(data []byte) error {
	if len(data) < StatusSize {
		return io.ErrUnexpectedEOF
	}
	s.Button = uint16(data[0]) | uint16(data[1])<<8
	s.StickX = data[2]
	s.StickY = data[3]
	s.SubstickX = data[4]
	s.SubstickY = data[5]
	s.TriggerLeft = data[6]
	s.TriggerRight = data[7]
	return nil
}

// Axis names one analog field of a PadStatus.
type Axis int

const (
	AxisStickX Axis = iota
	AxisStickY
	AxisSubstickX
	AxisSubstickY
	AxisTriggerLeft
	AxisTriggerRight

	NumAxes
)

var axisNames = [NumAxes]string{"stickX", "stickY", "substickX", "substickY", "triggerL", "triggerR"}

func (a Axis) String() string {
	if a < 0 || a >= NumAxes {
		return "unknown"
	}
	return axisNames[a]
}

// Rest returns the sentinel value meaning "no override" for the axis.
func (a Axis) Rest() uint8 {
	switch a {
	case AxisStickX:
		return MainStickCenterX
	case AxisStickY:
		return MainStickCenterY
	case AxisSubstickX:
		return CStickCenterX
	case AxisSubstickY:
		return CStickCenterY
	default:
		return TriggerRest
	}
}

// Get returns the value of axis a.
func (s *PadStatus) Get(a Axis) uint8 {
	switch a {
	case AxisStickX:
		return s.StickX
	case AxisStickY:
		return s.StickY
	case AxisSubstickX:
		return s.SubstickX
	case AxisSubstickY:
		return s.SubstickY
	case AxisTriggerLeft:
		return s.TriggerLeft
	case AxisTriggerRight:
		return s.TriggerRight
	}
	return 0
}

// Set stores v into axis a.
func (s *PadStatus) Set(a Axis, v uint8) {
	switch a {
	case AxisStickX:
		s.StickX = v
	case AxisStickY:
		s.StickY = v
	case AxisSubstickX:
		s.SubstickX = v
	case AxisSubstickY:
		s.SubstickY = v
	case AxisTriggerLeft:
		s.TriggerLeft = v
	case AxisTriggerRight:
		s.TriggerRight = v
	}
}

// AxisByName looks up an axis by its script name. Case-insensitive.
func AxisByName(name string) (Axis, bool) {
	for i, n := range axisNames {
		if strings.EqualFold(n, name) {
			return Axis(i), true
		}
	}
	return 0, false
}

var buttonNames = map[string]uint16{
	"left":  ButtonLeft,
	"right": ButtonRight,
	"down":  ButtonDown,
	"up":    ButtonUp,
	"z":     TriggerZ,
	"r":     TriggerR,
	"l":     TriggerL,
	"a":     ButtonA,
	"b":     ButtonB,
	"x":     ButtonX,
	"y":     ButtonY,
	"start": ButtonStart,
}

// ButtonByName looks up a button bit by its script name. Case-insensitive.
func ButtonByName(name string) (uint16, bool) {
	b, ok := buttonNames[strings.ToLower(name)]
	return b, ok
}
