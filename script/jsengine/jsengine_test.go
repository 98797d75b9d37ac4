package jsengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ptesting "github.com/Alia5/padscript/internal/testing"
	"github.com/Alia5/padscript/override"
	_ "github.com/Alia5/padscript/script/jsengine"
)

func TestConformance(t *testing.T) {
	ptesting.EngineConformance(t, ".js", ptesting.EngineSources{
		Overrides: `
pad.press(0, "a");
pad.setAxis(0, "stickX", 255);
nunchuk.press(1, "c");
classic.setAxis(2, "lx", 5);
`,
		Observed: `
emu.frameAdvance();
print(pad.observed(1).stickX, emu.frameCount());
`,
		RuntimeError: `pad.press(9, "a");`,
		SyntaxError:  `pad.press(0, "a"`,
		PrintLoop: `
let i = 0;
while (true) {
	i++;
	print(i);
}
`,
		FrameLoop: `while (true) { emu.frameAdvance(); }`,
		AxisLoop:  `for (let i = 0; ; i++) { pad.setAxis(0, "stickX", i % 256); }`,
	})
}

func TestErrorsAreCatchable(t *testing.T) {
	h := ptesting.NewHarness(t)
	eng, err := h.Load(t, ".js", `
try {
	classic.setAxis(0, "rx", 3);
} catch (e) {
	print("caught", e.message !== undefined);
}
const w = wiimote.observed(0);
print(w.nunchuk.x, w.classic.rx, w.nunchuk.c);
`)
	require.NoError(t, err)
	require.NoError(t, eng.Run(h.Ctx))
	assert.Equal(t, []string{"caught true", "128 16 false"}, h.Lines())

	w, _ := h.Store.Wiimote(0)
	assert.Equal(t, uint8(0x10), w.ClassicAxis(override.ClassicRightX))
}
