// Package override holds the controller overrides a script asks for, the
// manipulators that merge them into live reports on the emulation thread,
// and the mirror of what was last delivered downstream.
//
// Every override field is individually atomic: the script goroutine writes
// while the emulation thread reads, and a single field never tears. Two
// fields of one slot may be observed from different writes.
package override

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
)

// NumSlots is the number of controller ports of each kind.
const NumSlots = 4

var (
	// ErrOutOfRange is returned for a slot index outside [0, NumSlots).
	ErrOutOfRange = errors.New("slot out of range")
	// ErrUnknownInput is returned for a button or axis name that does not exist.
	ErrUnknownInput = errors.New("unknown input")
	// ErrUnsupported is returned for inputs that exist on the device but
	// cannot be overridden.
	ErrUnsupported = errors.New("unsupported input")
)

func checkSlot(slot int) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, slot, NumSlots)
	}
	return nil
}

// PadOverride is the override of one GameCube controller port.
type PadOverride struct {
	buttons atomic.Uint32
	axes    [gcpad.NumAxes]atomic.Uint32
}

// Press forces the buttons in mask on. Presses only ever add to the live
// report; a real press cannot be suppressed.
func (o *PadOverride) Press(mask uint16) { o.buttons.Or(uint32(mask)) }

// Release stops forcing the buttons in mask.
func (o *PadOverride) Release(mask uint16) { o.buttons.And(^uint32(mask)) }

// Buttons returns the buttons currently forced on.
func (o *PadOverride) Buttons() uint16 { return uint16(o.buttons.Load()) }

// SetAxis overrides axis a with v. Setting an axis to its rest value is the
// same as clearing it.
func (o *PadOverride) SetAxis(a gcpad.Axis, v uint8) { o.axes[a].Store(uint32(v)) }

// ClearAxis puts axis a back to its rest value.
func (o *PadOverride) ClearAxis(a gcpad.Axis) { o.axes[a].Store(uint32(a.Rest())) }

// Axis returns the override value of axis a.
func (o *PadOverride) Axis(a gcpad.Axis) uint8 { return uint8(o.axes[a].Load()) }

// Clear removes every override of the port.
func (o *PadOverride) Clear() {
	o.buttons.Store(0)
	for a := range gcpad.NumAxes {
		o.ClearAxis(a)
	}
}

// NunchukAxis names a Nunchuk stick axis.
type NunchukAxis int

// Nunchuk stick axes.
const (
	NunchukX NunchukAxis = iota
	NunchukY
)

// ParseNunchukAxis looks up a Nunchuk axis by its script name.
func ParseNunchukAxis(name string) (NunchukAxis, error) {
	switch name {
	case "x", "X":
		return NunchukX, nil
	case "y", "Y":
		return NunchukY, nil
	}
	return 0, fmt.Errorf("%w: nunchuk axis %q", ErrUnknownInput, name)
}

// ClassicAxis names a Classic Controller stick axis.
type ClassicAxis int

const (
	ClassicLeftX ClassicAxis = iota
	ClassicLeftY
	// The right stick is part of the report but cannot be overridden.
	ClassicRightX
	ClassicRightY
)

// ParseClassicAxis looks up a Classic Controller axis by its script name.
func ParseClassicAxis(name string) (ClassicAxis, error) {
	switch name {
	case "lx", "LX":
		return ClassicLeftX, nil
	case "ly", "LY":
		return ClassicLeftY, nil
	case "rx", "RX":
		return ClassicRightX, nil
	case "ry", "RY":
		return ClassicRightY, nil
	}
	return 0, fmt.Errorf("%w: classic axis %q", ErrUnknownInput, name)
}

// WiimoteOverride is the override of one Wiimote port and whichever
// extension is attached to it.
type WiimoteOverride struct {
	core atomic.Uint32

	nunchukButtons atomic.Uint32
	nunchukX       atomic.Uint32
	nunchukY       atomic.Uint32

	classicButtons atomic.Uint32
	classicLX      atomic.Uint32
	classicLY      atomic.Uint32
}

// Press forces the core buttons in mask on.
func (o *WiimoteOverride) Press(mask uint16) { o.core.Or(uint32(mask)) }

// Release stops forcing the core buttons in mask.
func (o *WiimoteOverride) Release(mask uint16) { o.core.And(^uint32(mask)) }

// Buttons returns the core buttons currently forced on.
func (o *WiimoteOverride) Buttons() uint16 { return uint16(o.core.Load()) }

// NunchukPress forces Nunchuk buttons on. mask uses active-high bits.
func (o *WiimoteOverride) NunchukPress(mask uint8) { o.nunchukButtons.Or(uint32(mask)) }

// NunchukRelease stops forcing the Nunchuk buttons in mask.
func (o *WiimoteOverride) NunchukRelease(mask uint8) { o.nunchukButtons.And(^uint32(mask)) }

// NunchukButtons returns the Nunchuk buttons forced on, active high.
func (o *WiimoteOverride) NunchukButtons() uint8 { return uint8(o.nunchukButtons.Load()) }

// SetNunchukAxis overrides stick axis a with v.
func (o *WiimoteOverride) SetNunchukAxis(a NunchukAxis, v uint8) {
	if a == NunchukX {
		o.nunchukX.Store(uint32(v))
		return
	}
	o.nunchukY.Store(uint32(v))
}

// ClearNunchukAxis puts axis a back to center.
func (o *WiimoteOverride) ClearNunchukAxis(a NunchukAxis) {
	o.SetNunchukAxis(a, wiimote.NunchukStickCenter)
}

// NunchukAxis returns the override value of axis a.
func (o *WiimoteOverride) NunchukAxis(a NunchukAxis) uint8 {
	if a == NunchukX {
		return uint8(o.nunchukX.Load())
	}
	return uint8(o.nunchukY.Load())
}

// ClassicPress forces Classic Controller buttons on. mask uses active-high
// bits.
func (o *WiimoteOverride) ClassicPress(mask uint16) { o.classicButtons.Or(uint32(mask)) }

// ClassicRelease stops forcing the Classic Controller buttons in mask.
func (o *WiimoteOverride) ClassicRelease(mask uint16) { o.classicButtons.And(^uint32(mask)) }

// ClassicButtons returns the Classic Controller buttons forced on.
func (o *WiimoteOverride) ClassicButtons() uint16 { return uint16(o.classicButtons.Load()) }

// SetClassicAxis overrides a left stick axis. The right stick returns
// ErrUnsupported.
func (o *WiimoteOverride) SetClassicAxis(a ClassicAxis, v uint8) error {
	switch a {
	case ClassicLeftX:
		o.classicLX.Store(uint32(v))
	case ClassicLeftY:
		o.classicLY.Store(uint32(v))
	default:
		return fmt.Errorf("%w: classic right stick", ErrUnsupported)
	}
	return nil
}

// ClearClassicAxis puts a left stick axis back to center.
func (o *WiimoteOverride) ClearClassicAxis(a ClassicAxis) error {
	switch a {
	case ClassicLeftX:
		return o.SetClassicAxis(a, wiimote.ClassicLeftStickCenterX)
	case ClassicLeftY:
		return o.SetClassicAxis(a, wiimote.ClassicLeftStickCenterY)
	}
	return fmt.Errorf("%w: classic right stick", ErrUnsupported)
}

// ClassicAxis returns the override value of axis a. The right stick always
// reads as centered.
func (o *WiimoteOverride) ClassicAxis(a ClassicAxis) uint8 {
	switch a {
	case ClassicLeftX:
		return uint8(o.classicLX.Load())
	case ClassicLeftY:
		return uint8(o.classicLY.Load())
	case ClassicRightX:
		return wiimote.ClassicRightStickCenterX
	}
	return wiimote.ClassicRightStickCenterY
}

// Clear removes every override of the port and its extensions.
func (o *WiimoteOverride) Clear() {
	o.core.Store(0)
	o.nunchukButtons.Store(0)
	o.ClearNunchukAxis(NunchukX)
	o.ClearNunchukAxis(NunchukY)
	o.classicButtons.Store(0)
	_ = o.ClearClassicAxis(ClassicLeftX)
	_ = o.ClearClassicAxis(ClassicLeftY)
}

// Store holds the overrides of every port for the lifetime of one script
// run.
type Store struct {
	pads     [NumSlots]PadOverride
	wiimotes [NumSlots]WiimoteOverride
}

// NewStore returns a store with every port at rest.
func NewStore() *Store {
	s := &Store{}
	for i := range NumSlots {
		s.pads[i].Clear()
		s.wiimotes[i].Clear()
	}
	return s
}

// Pad returns the override of GameCube port slot.
func (s *Store) Pad(slot int) (*PadOverride, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	return &s.pads[slot], nil
}

// Wiimote returns the override of Wiimote port slot.
func (s *Store) Wiimote(slot int) (*WiimoteOverride, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	return &s.wiimotes[slot], nil
}
