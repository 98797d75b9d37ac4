// Package emu holds the interfaces between input manipulators and an
// emulation core, plus Sim, a deterministic simulated core used by the CLI
// and by tests.
package emu

import (
	"fmt"
	"sync/atomic"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
)

// PadManipulator rewrites a polled GameCube report in place.
type PadManipulator interface {
	ManipulatePad(status *gcpad.PadStatus, slot int)
}

// WiimoteManipulator rewrites a raw Wiimote input report in place.
type WiimoteManipulator interface {
	ManipulateWiimote(data []byte, rptf wiimote.Features, slot int, ext wiimote.Extension, key wiimote.Key)
}

// Consumer indexes a manipulator slot in the Registry. Each consumer owns
// exactly one slot per report kind.
type Consumer int

const (
	ConsumerScript Consumer = iota
	ConsumerTAS

	NumConsumers
)

func (c Consumer) String() string {
	switch c {
	case ConsumerScript:
		return "script"
	case ConsumerTAS:
		return "tas"
	}
	return fmt.Sprintf("consumer(%d)", int(c))
}

type padEntry struct{ m PadManipulator }
type wiimoteEntry struct{ m WiimoteManipulator }

// Registry holds the installed manipulators. Installing and polling may
// happen concurrently: each slot is swapped atomically, so a poll sees
// either the old or the new manipulator, never a partial one.
type Registry struct {
	pads     [NumConsumers]atomic.Pointer[padEntry]
	wiimotes [NumConsumers]atomic.Pointer[wiimoteEntry]
}

func checkConsumer(c Consumer) error {
	if c < 0 || c >= NumConsumers {
		return fmt.Errorf("unknown %s", c)
	}
	return nil
}

// SetPadManipulator installs m under consumer c, displacing only that
// consumer's previous manipulator. A nil m uninstalls.
func (r *Registry) SetPadManipulator(c Consumer, m PadManipulator) error {
	if err := checkConsumer(c); err != nil {
		return err
	}
	if m == nil {
		r.pads[c].Store(nil)
		return nil
	}
	r.pads[c].Store(&padEntry{m: m})
	return nil
}

// SetWiimoteManipulator installs m under consumer c, displacing only that
// consumer's previous manipulator. A nil m uninstalls.
func (r *Registry) SetWiimoteManipulator(c Consumer, m WiimoteManipulator) error {
	if err := checkConsumer(c); err != nil {
		return err
	}
	if m == nil {
		r.wiimotes[c].Store(nil)
		return nil
	}
	r.wiimotes[c].Store(&wiimoteEntry{m: m})
	return nil
}

// Installed reports whether consumer c has any manipulator installed.
func (r *Registry) Installed(c Consumer) bool {
	if checkConsumer(c) != nil {
		return false
	}
	return r.pads[c].Load() != nil || r.wiimotes[c].Load() != nil
}

// ApplyPad runs every installed pad manipulator over status in consumer
// order.
func (r *Registry) ApplyPad(status *gcpad.PadStatus, slot int) {
	for i := range r.pads {
		if e := r.pads[i].Load(); e != nil {
			e.m.ManipulatePad(status, slot)
		}
	}
}

// ApplyWiimote runs every installed Wiimote manipulator over data in
// consumer order.
func (r *Registry) ApplyWiimote(data []byte, rptf wiimote.Features, slot int, ext wiimote.Extension, key wiimote.Key) {
	for i := range r.wiimotes {
		if e := r.wiimotes[i].Load(); e != nil {
			e.m.ManipulateWiimote(data, rptf, slot, ext, key)
		}
	}
}
