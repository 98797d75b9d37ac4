package emu_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/emu"
)

const yamlFeed = `
pads:
  - slot: 1
    frames:
      - {button: 0x0400, stickX: 0x10, stickY: 0x80, substickX: 0x80, substickY: 0x80}
      - {button: 0, stickX: 0x80, stickY: 0x80, substickX: 0x80, substickY: 0x80, triggerLeft: 0xff}
wiimotes:
  - slot: 0
    mode: 0x35
    extension: nunchuk
    key: 00112233445566778899aabbccddeeff
    frames:
      - {buttons: 0x0008, ext: "10 20 80 80 80 03"}
      - {buttons: 0}
`

const tomlFeed = `
[[pads]]
slot = 1

  [[pads.frames]]
  button = 0x0400
  stickX = 0x10
  stickY = 0x80
  substickX = 0x80
  substickY = 0x80

  [[pads.frames]]
  button = 0
  stickX = 0x80
  stickY = 0x80
  substickX = 0x80
  substickY = 0x80
  triggerLeft = 0xff

[[wiimotes]]
slot = 0
mode = 0x35
extension = "nunchuk"
key = "00112233445566778899aabbccddeeff"

  [[wiimotes.frames]]
  buttons = 0x0008
  ext = "10 20 80 80 80 03"

  [[wiimotes.frames]]
  buttons = 0
`

func TestParseFeedFormatsAgree(t *testing.T) {
	y, err := emu.ParseFeed([]byte(yamlFeed), "yaml")
	require.NoError(t, err)
	tm, err := emu.ParseFeed([]byte(tomlFeed), "toml")
	require.NoError(t, err)
	assert.Equal(t, y, tm)

	require.Len(t, y.Pads, 1)
	assert.Equal(t, gcpad.ButtonX, y.Pads[0].Frames[0].Button)
	assert.Equal(t, uint8(0xff), y.Pads[0].Frames[1].TriggerLeft)
	require.Len(t, y.Wiimotes, 1)
	assert.Equal(t, 0x35, y.Wiimotes[0].Mode)
}

func TestLoadFeedByExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "feed.yml")
	require.NoError(t, os.WriteFile(p, []byte(yamlFeed), 0o644))
	f, err := emu.LoadFeed(p)
	require.NoError(t, err)
	assert.Len(t, f.Wiimotes, 1)

	p = filepath.Join(dir, "feed.json")
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
	_, err = emu.LoadFeed(p)
	assert.ErrorIs(t, err, emu.ErrFeed)
}

func TestParseFeedRejects(t *testing.T) {
	tests := map[string]string{
		"pad slot":       "pads: [{slot: 4}]",
		"duplicate pad":  "pads: [{slot: 0}, {slot: 0}]",
		"report mode":    "wiimotes: [{slot: 0, mode: 0x20}]",
		"extension":      "wiimotes: [{slot: 0, mode: 0x30, extension: guitar}]",
		"key":            "wiimotes: [{slot: 0, mode: 0x30, key: abcd}]",
		"ext length":     "wiimotes: [{slot: 0, mode: 0x35, extension: nunchuk, frames: [{ext: '0102'}]}]",
		"unknown field":  "pads: [{slot: 0, turbo: true}]",
		"wiimote slot":   "wiimotes: [{slot: -1, mode: 0x30}]",
		"duplicate mote": "wiimotes: [{slot: 2, mode: 0x30}, {slot: 2, mode: 0x31}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := emu.ParseFeed([]byte(doc), "yaml")
			assert.ErrorIs(t, err, emu.ErrFeed)
		})
	}
}
