package override

import (
	"sync"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
)

// WiimoteState is what was last delivered for a Wiimote port. Nunchuk holds
// plaintext.
type WiimoteState struct {
	Buttons uint16
	Nunchuk wiimote.Nunchuk
	Classic wiimote.Classic
}

type padCell struct {
	mu sync.Mutex
	st gcpad.PadStatus
}

type wiimoteCell struct {
	mu sync.Mutex
	st WiimoteState
}

// Mirror keeps a copy of the last report delivered downstream for every
// port. It is written by the manipulators on every poll and read by the
// script; it never feeds back into a report.
type Mirror struct {
	pads     [NumSlots]padCell
	wiimotes [NumSlots]wiimoteCell
}

// NewMirror returns a mirror with every port at rest.
func NewMirror() *Mirror {
	m := &Mirror{}
	for i := range NumSlots {
		m.pads[i].st = gcpad.Neutral()
		m.wiimotes[i].st = WiimoteState{
			Nunchuk: wiimote.NeutralNunchuk(),
			Classic: wiimote.NeutralClassic(),
		}
	}
	return m
}

// Pad returns the last report delivered on GameCube port slot.
func (m *Mirror) Pad(slot int) (gcpad.PadStatus, error) {
	if err := checkSlot(slot); err != nil {
		return gcpad.PadStatus{}, err
	}
	c := &m.pads[slot]
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st, nil
}

// Wiimote returns the last state delivered on Wiimote port slot.
func (m *Mirror) Wiimote(slot int) (WiimoteState, error) {
	if err := checkSlot(slot); err != nil {
		return WiimoteState{}, err
	}
	c := &m.wiimotes[slot]
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st, nil
}

func (m *Mirror) setPad(slot int, st gcpad.PadStatus) {
	c := &m.pads[slot]
	c.mu.Lock()
	c.st = st
	c.mu.Unlock()
}

func (m *Mirror) setWiimoteButtons(slot int, v uint16) {
	c := &m.wiimotes[slot]
	c.mu.Lock()
	c.st.Buttons = v
	c.mu.Unlock()
}

func (m *Mirror) setNunchuk(slot int, n *wiimote.Nunchuk) {
	c := &m.wiimotes[slot]
	c.mu.Lock()
	c.st.Nunchuk = *n
	c.mu.Unlock()
}

func (m *Mirror) setClassic(slot int, cc *wiimote.Classic) {
	c := &m.wiimotes[slot]
	c.mu.Lock()
	c.st.Classic = *cc
	c.mu.Unlock()
}
