package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/remeh/sizedwaitgroup"

	"github.com/Alia5/padscript/runner"
)

// Check loads scripts without running them.
type Check struct {
	Scripts []string `arg:"" help:"Scripts to check" type:"existingfile"`
	Jobs    int      `help:"Scripts loaded in parallel (0 = number of CPUs)" default:"0" short:"j"`

	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the check command is executed.
func (c *Check) Run(logger *slog.Logger) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	digests := make([]string, len(c.Scripts))
	errs := make([]error, len(c.Scripts))
	wg := sizedwaitgroup.New(jobs)
	for i, path := range c.Scripts {
		wg.Add()
		go func() {
			defer wg.Done()
			digests[i], errs[i] = runner.Check(path, logger)
		}()
	}
	wg.Wait()

	failed := 0
	for i, path := range c.Scripts {
		if errs[i] != nil {
			failed++
			logger.Error("script does not load", "path", path, "error", errs[i])
			fmt.Fprintf(out, "FAIL  %s: %v\n", path, errs[i])
			continue
		}
		fmt.Fprintf(out, "ok    %s  %.16s\n", path, digests[i])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts failed to load", failed, len(c.Scripts))
	}
	return nil
}
