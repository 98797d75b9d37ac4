package emu

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/override"
)

// ErrFeed is returned for feed files that cannot be used.
var ErrFeed = errors.New("invalid feed")

// Feed lists the live reports the simulated controllers produce, one entry
// per frame. A port holds its last report once its frames run out.
//
// YAML example:
//
//	pads:
//	  - slot: 0
//	    frames:
//	      - {button: 0x0100, stickX: 0x80, stickY: 0x80, substickX: 0x80, substickY: 0x80}
//	wiimotes:
//	  - slot: 0
//	    mode: 0x35
//	    extension: nunchuk
//	    key: 00112233445566778899aabbccddeeff
//	    frames:
//	      - {buttons: 0x0008, ext: "8080808080 03"}
type Feed struct {
	Pads     []PadFeed     `json:"pads" yaml:"pads" toml:"pads"`
	Wiimotes []WiimoteFeed `json:"wiimotes" yaml:"wiimotes" toml:"wiimotes"`
}

// PadFeed drives one GameCube port.
type PadFeed struct {
	Slot   int               `json:"slot" yaml:"slot" toml:"slot"`
	Frames []gcpad.PadStatus `json:"frames" yaml:"frames" toml:"frames"`
}

// WiimoteFeed drives one Wiimote port. Mode is the report ID, Key the hex
// form accepted by wiimote.ParseKey.
type WiimoteFeed struct {
	Slot      int            `json:"slot" yaml:"slot" toml:"slot"`
	Mode      int            `json:"mode" yaml:"mode" toml:"mode"`
	Extension string         `json:"extension" yaml:"extension" toml:"extension"`
	Key       string         `json:"key" yaml:"key" toml:"key"`
	Frames    []WiimoteFrame `json:"frames" yaml:"frames" toml:"frames"`
}

// WiimoteFrame is one Wiimote report. Ext holds the plaintext extension
// bytes in hex; spaces are ignored and an empty Ext means the extension is
// idle.
type WiimoteFrame struct {
	Buttons uint16 `json:"buttons" yaml:"buttons" toml:"buttons"`
	Ext     string `json:"ext" yaml:"ext" toml:"ext"`
}

// LoadFeed reads a YAML (.yaml, .yml) or TOML (.toml) feed file.
func LoadFeed(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return ParseFeed(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseFeed decodes a feed in the given format ("yaml", "yml" or "toml")
// and validates it.
func ParseFeed(data []byte, format string) (*Feed, error) {
	var f Feed
	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeed, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeed, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrFeed, format)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Feed) validate() error {
	var seenPad, seenWiimote [override.NumSlots]bool
	for _, p := range f.Pads {
		if p.Slot < 0 || p.Slot >= override.NumSlots {
			return fmt.Errorf("%w: pad slot %d", ErrFeed, p.Slot)
		}
		if seenPad[p.Slot] {
			return fmt.Errorf("%w: pad slot %d listed twice", ErrFeed, p.Slot)
		}
		seenPad[p.Slot] = true
	}
	for _, w := range f.Wiimotes {
		if w.Slot < 0 || w.Slot >= override.NumSlots {
			return fmt.Errorf("%w: wiimote slot %d", ErrFeed, w.Slot)
		}
		if seenWiimote[w.Slot] {
			return fmt.Errorf("%w: wiimote slot %d listed twice", ErrFeed, w.Slot)
		}
		seenWiimote[w.Slot] = true
		if _, err := w.port(); err != nil {
			return err
		}
	}
	return nil
}

func (w *WiimoteFeed) port() (*wiimotePort, error) {
	rptf, ok := wiimote.ReportModes[byte(w.Mode)]
	if !ok || w.Mode < 0 || w.Mode > 0xff {
		return nil, fmt.Errorf("%w: wiimote %d: unknown report mode %#x", ErrFeed, w.Slot, w.Mode)
	}
	ext, err := wiimote.ParseExtension(w.Extension)
	if err != nil {
		return nil, fmt.Errorf("%w: wiimote %d: %v", ErrFeed, w.Slot, err)
	}
	key, err := wiimote.ParseKey(w.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: wiimote %d: %v", ErrFeed, w.Slot, err)
	}
	p := &wiimotePort{mode: byte(w.Mode), rptf: rptf, ext: ext, key: key}
	p.cur.ext, _ = parseExt("", ext)
	for i, fr := range w.Frames {
		e, err := parseExt(fr.Ext, ext)
		if err != nil {
			return nil, fmt.Errorf("%w: wiimote %d frame %d: %v", ErrFeed, w.Slot, i, err)
		}
		p.frames = append(p.frames, wiimoteReport{buttons: fr.Buttons, ext: e})
	}
	return p, nil
}

func parseExt(s string, ext wiimote.Extension) ([wiimote.ExtensionSize]byte, error) {
	var out [wiimote.ExtensionSize]byte
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		switch ext {
		case wiimote.ExtensionNunchuk:
			out = [wiimote.ExtensionSize]byte(wiimote.NeutralNunchuk())
		case wiimote.ExtensionClassic:
			out = [wiimote.ExtensionSize]byte(wiimote.NeutralClassic())
		}
		return out, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != wiimote.ExtensionSize {
		return out, fmt.Errorf("extension report is %d bytes, want %d", len(b), wiimote.ExtensionSize)
	}
	copy(out[:], b)
	return out, nil
}
