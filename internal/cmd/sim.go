package cmd

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/runner"
)

// SimFlags configure the simulated emulation core.
type SimFlags struct {
	Feed string `help:"Feed file (YAML or TOML) with the live reports of each connected port" type:"existingfile" env:"PADSCRIPT_FEED"`
	FPS  int    `help:"Simulated frames per second" default:"60" env:"PADSCRIPT_FPS"`
}

// PrintFlags rate limit script print output.
type PrintFlags struct {
	PrintRate  float64 `help:"Script print lines per second (0 = unlimited)" default:"50" env:"PADSCRIPT_PRINT_RATE"`
	PrintBurst int     `help:"Script print lines allowed back to back" default:"100" env:"PADSCRIPT_PRINT_BURST"`
}

func (f SimFlags) newSim(logger *slog.Logger, rawLogger log.RawLogger) (*emu.Sim, error) {
	if f.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", f.FPS)
	}
	var feed *emu.Feed
	if f.Feed != "" {
		var err error
		if feed, err = emu.LoadFeed(f.Feed); err != nil {
			return nil, err
		}
		logger.Info("feed loaded", "file", f.Feed, "pads", len(feed.Pads), "wiimotes", len(feed.Wiimotes))
	}
	return emu.NewSim(feed, logger, rawLogger)
}

func (f PrintFlags) options(logger *slog.Logger) runner.Options {
	limit := rate.Limit(f.PrintRate)
	if f.PrintRate <= 0 {
		limit = rate.Inf
	}
	return runner.Options{Logger: logger, PrintLimit: limit, PrintBurst: f.PrintBurst}
}
