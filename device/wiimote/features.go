// Package wiimote describes the raw Wiimote input reports the emulation core
// hands to input manipulators, the Nunchuk and Classic extension layouts
// carried inside them, and the extension cipher.
package wiimote

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when report features do not fit the report buffer.
var ErrMalformed = errors.New("malformed report features")

// AccelSize is the length of the accelerometer region.
const AccelSize = 3

// Extension identifies the attachment plugged into a Wiimote.
type Extension uint8

const (
	ExtensionNone    Extension = 0
	ExtensionNunchuk Extension = 1
	ExtensionClassic Extension = 2
)

func (e Extension) String() string {
	switch e {
	case ExtensionNone:
		return "none"
	case ExtensionNunchuk:
		return "nunchuk"
	case ExtensionClassic:
		return "classic"
	}
	return fmt.Sprintf("extension(%d)", uint8(e))
}

// ParseExtension parses the name produced by Extension.String.
func ParseExtension(s string) (Extension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ExtensionNone, nil
	case "nunchuk":
		return ExtensionNunchuk, nil
	case "classic":
		return ExtensionClassic, nil
	}
	return ExtensionNone, fmt.Errorf("unknown extension %q", s)
}

// Features gives the byte offset of each data region inside a raw input
// report, and the total report size. An offset of zero means the region is
// not part of the report; byte 0 always holds the HID header.
type Features struct {
	Core  uint8 `json:"core" yaml:"core" toml:"core"`
	Accel uint8 `json:"accel" yaml:"accel" toml:"accel"`
	IR    uint8 `json:"ir" yaml:"ir" toml:"ir"`
	Ext   uint8 `json:"ext" yaml:"ext" toml:"ext"`
	Size  uint8 `json:"size" yaml:"size" toml:"size"`
}

// ReportModes are the data reporting modes a Wiimote can be put into,
// keyed by report ID.
var ReportModes = map[byte]Features{
	0x30: {Core: 2, Size: 4},
	0x31: {Core: 2, Accel: 4, Size: 7},
	0x32: {Core: 2, Ext: 4, Size: 12},
	0x33: {Core: 2, Accel: 4, IR: 7, Size: 19},
	0x34: {Core: 2, Ext: 4, Size: 23},
	0x35: {Core: 2, Accel: 4, Ext: 7, Size: 23},
	0x36: {Core: 2, IR: 4, Ext: 14, Size: 23},
	0x37: {Core: 2, Accel: 4, IR: 7, Ext: 17, Size: 23},
	0x3d: {Ext: 2, Size: 23},
}

// Region is a span of a report. A zero Offset means the region is absent.
type Region struct {
	Offset int
	Len    int
}

// Present reports whether the region is part of the report.
func (r Region) Present() bool { return r.Offset != 0 }

func (f Features) core() Region {
	if f.Core == 0 {
		return Region{}
	}
	return Region{Offset: int(f.Core), Len: CoreSize}
}

func (f Features) accel() Region {
	if f.Accel == 0 {
		return Region{}
	}
	return Region{Offset: int(f.Accel), Len: AccelSize}
}

func (f Features) ir() Region {
	if f.IR == 0 {
		return Region{}
	}
	end := int(f.Size)
	if f.Ext > f.IR {
		end = int(f.Ext)
	}
	return Region{Offset: int(f.IR), Len: end - int(f.IR)}
}

func (f Features) ext() Region {
	if f.Ext == 0 {
		return Region{}
	}
	return Region{Offset: int(f.Ext), Len: int(f.Size) - int(f.Ext)}
}

// Views are bounds-checked sub-slices of a report buffer. Absent regions
// are nil.
type Views struct {
	Core  []byte
	Accel []byte
	IR    []byte
	Ext   []byte
}

// Views splits data into its regions. Every present region must lie inside
// both the report size and the buffer, and an extension region must be
// large enough to hold an extension report.
func (f Features) Views(data []byte) (Views, error) {
	var v Views
	if int(f.Size) > len(data) {
		return v, fmt.Errorf("%w: size %d exceeds buffer of %d bytes", ErrMalformed, f.Size, len(data))
	}
	view := func(name string, r Region, minLen int) ([]byte, error) {
		if !r.Present() {
			return nil, nil
		}
		if r.Len < minLen || r.Offset+r.Len > int(f.Size) {
			return nil, fmt.Errorf("%w: %s region at %d+%d does not fit report size %d", ErrMalformed, name, r.Offset, r.Len, f.Size)
		}
		return data[r.Offset : r.Offset+r.Len : r.Offset+r.Len], nil
	}
	var err error
	if v.Core, err = view("core", f.core(), CoreSize); err != nil {
		return Views{}, err
	}
	if v.Accel, err = view("accel", f.accel(), AccelSize); err != nil {
		return Views{}, err
	}
	if v.IR, err = view("ir", f.ir(), 1); err != nil {
		return Views{}, err
	}
	if v.Ext, err = view("ext", f.ext(), ExtensionSize); err != nil {
		return Views{}, err
	}
	return v, nil
}
