package override

import (
	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/internal/assert"
)

// FaultFunc receives faults found while manipulating a report. It is called
// on the emulation thread and must not block.
type FaultFunc func(error)

// PadManipulator merges a Store's GameCube overrides into polled reports.
type PadManipulator struct {
	store  *Store
	mirror *Mirror
	fault  FaultFunc
}

// NewPadManipulator returns a manipulator reading store and writing mirror.
// fault may be nil.
func NewPadManipulator(store *Store, mirror *Mirror, fault FaultFunc) *PadManipulator {
	return &PadManipulator{store: store, mirror: mirror, fault: fault}
}

// ManipulatePad merges the overrides of slot into status in place and
// records the result in the mirror. It never fails; a bad slot or nil
// report leaves everything untouched.
func (m *PadManipulator) ManipulatePad(status *gcpad.PadStatus, slot int) {
	if !assert.Check(slot >= 0 && slot < NumSlots, "pad manipulator", "slot out of range") {
		report(m.fault, assert.Fault{Where: "pad manipulator", What: "slot out of range"})
		return
	}
	if !assert.Check(status != nil, "pad manipulator", "nil report") {
		report(m.fault, assert.Fault{Where: "pad manipulator", What: "nil report"})
		return
	}
	o := &m.store.pads[slot]
	for a := range gcpad.NumAxes {
		v := status.Get(a)
		mergeAxis(&v, o.Axis(a), a.Rest())
		status.Set(a, v)
	}
	status.Button = MergeButtons(status.Button, o.Buttons())

	m.mirror.setPad(slot, *status)
}

// WiimoteManipulator merges a Store's Wiimote and extension overrides into
// raw input reports.
type WiimoteManipulator struct {
	store  *Store
	mirror *Mirror
	fault  FaultFunc
}

// NewWiimoteManipulator returns a manipulator reading store and writing
// mirror. fault may be nil.
func NewWiimoteManipulator(store *Store, mirror *Mirror, fault FaultFunc) *WiimoteManipulator {
	return &WiimoteManipulator{store: store, mirror: mirror, fault: fault}
}

// ManipulateWiimote merges the overrides of slot into the raw report data,
// whose layout is given by rptf. A Nunchuk extension region arrives
// encrypted with key and is left encrypted with key. A report whose
// features do not fit the buffer is left untouched and reported as a fault.
func (m *WiimoteManipulator) ManipulateWiimote(data []byte, rptf wiimote.Features, slot int, ext wiimote.Extension, key wiimote.Key) {
	if !assert.Check(slot >= 0 && slot < NumSlots, "wiimote manipulator", "slot out of range") {
		report(m.fault, assert.Fault{Where: "wiimote manipulator", What: "slot out of range"})
		return
	}
	v, err := rptf.Views(data)
	if err != nil {
		report(m.fault, err)
		return
	}
	o := &m.store.wiimotes[slot]

	if ext != wiimote.ExtensionClassic {
		if v.Core != nil {
			wiimote.SetCoreButtons(v.Core, MergeButtons(wiimote.CoreButtons(v.Core), o.Buttons()))
		}
		// TODO: accelerometer and IR overrides need a script surface for
		// motion data before they can be merged into v.Accel and v.IR.
	}

	switch {
	case v.Ext != nil && ext == wiimote.ExtensionNunchuk:
		nc := (*wiimote.Nunchuk)((*[wiimote.ExtensionSize]byte)(v.Ext))
		key.Decrypt(nc[:], 0)
		if b := o.NunchukButtons(); b != 0 {
			nc.SetButtons(MergeNunchukButtons(nc.Buttons(), b))
		}
		x, y := nc.StickX(), nc.StickY()
		mergeAxis(&x, o.NunchukAxis(NunchukX), wiimote.NunchukStickCenter)
		mergeAxis(&y, o.NunchukAxis(NunchukY), wiimote.NunchukStickCenter)
		nc.SetStickX(x)
		nc.SetStickY(y)
		m.mirror.setNunchuk(slot, nc)
		key.Encrypt(nc[:], 0)

	case v.Ext != nil && ext == wiimote.ExtensionClassic:
		cc := (*wiimote.Classic)((*[wiimote.ExtensionSize]byte)(v.Ext))
		cc.SetButtons(MergeButtons(cc.Buttons(), o.ClassicButtons()))
		if lx := o.ClassicAxis(ClassicLeftX); lx != wiimote.ClassicLeftStickCenterX {
			cc.SetLeftX(lx)
		}
		if ly := o.ClassicAxis(ClassicLeftY); ly != wiimote.ClassicLeftStickCenterY {
			cc.SetLeftY(ly)
		}
		m.mirror.setClassic(slot, cc)
	}

	if v.Core != nil {
		m.mirror.setWiimoteButtons(slot, wiimote.CoreButtons(v.Core))
	}
}

func report(f FaultFunc, err error) {
	if f != nil {
		f(err)
	}
}
