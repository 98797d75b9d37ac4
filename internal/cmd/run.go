package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/runner"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// Run runs one script against the simulated core.
type Run struct {
	SimFlags   `embed:""`
	PrintFlags `embed:""`

	Script string `arg:"" help:"Script to run (.js, .lua or .go)" type:"existingfile"`
	Frames uint64 `help:"Stop the script after this many frames (0 = run until it ends)" default:"0" env:"PADSCRIPT_FRAMES"`

	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the run command is executed.
func (c *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, logger, rawLogger)
}

func (c *Run) run(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	sim, err := c.newSim(logger, rawLogger)
	if err != nil {
		return err
	}

	simCtx, stopSim := context.WithCancel(ctx)
	simDone := make(chan error, 1)
	go func() { simDone <- sim.Run(simCtx, c.FPS) }()
	defer func() {
		stopSim()
		<-simDone
	}()

	r := runner.New(c.Script, sim, c.options(logger))
	if err := r.Start(ctx); err != nil {
		return err
	}
	if c.Frames > 0 {
		go limitFrames(simCtx, sim, r, c.Frames, logger)
	}
	res := r.Wait()

	printObserved(out, sim, r.Mirror())
	st := r.Status()
	fmt.Fprintf(out, "%s: %s frames in %s (digest %.16s)\n",
		st.State, humanize.Comma(int64(st.Frames)), durafmt.Parse(st.Elapsed.Round(time.Millisecond)).LimitFirstN(2).Format(shortUnits), st.Digest)

	switch res.State {
	case runner.LoadError, runner.RuntimeError:
		return res.Err
	}
	return nil
}

// limitFrames stops r once the core has polled n frames.
func limitFrames(ctx context.Context, sim *emu.Sim, r *runner.Runner, n uint64, logger *slog.Logger) {
	start := sim.FrameCount()
	for {
		frame, err := sim.WaitFrame(ctx)
		if err != nil {
			return
		}
		if frame-start >= n {
			logger.Info("frame limit reached", "frames", n)
			r.Stop()
			return
		}
	}
}

func printObserved(w io.Writer, sim *emu.Sim, m *override.Mirror) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := false
	row := func(format string, args ...any) {
		if !header {
			fmt.Fprintln(tw, "PORT\tBUTTONS\tMAIN\tC/NUNCHUK\tTRIGGERS/CLASSIC")
			header = true
		}
		fmt.Fprintf(tw, format, args...)
	}
	for slot := range override.NumSlots {
		if _, ok := sim.PadOutput(slot); !ok {
			continue
		}
		st, err := m.Pad(slot)
		if err != nil {
			continue
		}
		row("pad %d\t0x%04x\t%d,%d\t%d,%d\t%d,%d\n", slot, st.Button,
			st.StickX, st.StickY, st.SubstickX, st.SubstickY, st.TriggerLeft, st.TriggerRight)
	}
	for slot := range override.NumSlots {
		if _, ok := sim.WiimoteOutput(slot); !ok {
			continue
		}
		st, err := m.Wiimote(slot)
		if err != nil {
			continue
		}
		nc, cc := st.Nunchuk, st.Classic
		row("wiimote %d\t0x%04x\t-\t%d,%d 0x%02x\t0x%04x %d,%d\n", slot, st.Buttons,
			nc.StickX(), nc.StickY(), nc.Pressed(), cc.Buttons(), cc.LeftX(), cc.LeftY())
	}
	_ = tw.Flush()
}
