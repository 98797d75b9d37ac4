package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/internal/server/api"
	"github.com/Alia5/padscript/internal/server/api/handler"
	"github.com/Alia5/padscript/runner"
)

// Serve runs the simulated core and the API server controlling scripts.
type Serve struct {
	api.ServerConfig `embed:"" prefix:"api."`
	SimFlags         `embed:""`
	PrintFlags       `embed:""`

	Version string `kong:"-"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx, logger, rawLogger, nil)
}

// serve blocks until ctx is done or the core fails. started, if set,
// receives the API server once it listens.
func (s *Serve) serve(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, started func(*api.Server)) error {
	sim, err := s.newSim(logger, rawLogger)
	if err != nil {
		return err
	}
	sup := runner.NewSupervisor(ctx, sim, s.options(logger))

	apiSrv := api.New(s.Addr, s.ServerConfig, logger)
	RegisterRoutes(apiSrv.Router(), sup, s.Version)
	if err := apiSrv.Start(); err != nil {
		return err
	}
	if started != nil {
		started(apiSrv)
	}

	simErrCh := make(chan error, 1)
	go func() {
		simErrCh <- sim.Run(ctx, s.FPS)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		<-simErrCh
	case runErr = <-simErrCh:
	}
	apiSrv.Close()
	if r, ok := sup.Runner(); ok {
		r.Stop()
		<-r.Done()
	}
	return runErr
}

// RegisterRoutes registers every API endpoint on r.
func RegisterRoutes(r *api.Router, sup *runner.Supervisor, version string) {
	r.Register("ping", handler.Ping(version))
	r.Register("script/start", handler.ScriptStart(sup))
	r.Register("script/stop", handler.ScriptStop(sup))
	r.Register("script/status", handler.ScriptStatus(sup))
	r.Register("pad/{slot}/observed", handler.PadObserved(sup))
	r.Register("wiimote/{slot}/observed", handler.WiimoteObserved(sup))
}
