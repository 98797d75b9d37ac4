package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Alia5/padscript/emu"
	"github.com/Alia5/padscript/override"
	"github.com/Alia5/padscript/script"
)

// Check reads, parses and compiles the script at path without running any
// of it. It returns the source digest, and an error wrapping ErrLoad if the
// script would end a run in LoadError.
func Check(path string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoad, err)
	}
	digest := Digest(src)

	host, err := emu.NewSim(nil, logger, nil)
	if err != nil {
		return digest, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api := script.NewAPI(ctx, script.Config{
		Store:  override.NewStore(),
		Mirror: override.NewMirror(),
		Host:   host,
		Logger: logger,
	})
	eng, err := script.NewEngine(path, api)
	if err != nil {
		return digest, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer eng.Close()
	if err := eng.Load(filepath.Base(path), src); err != nil {
		return digest, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return digest, nil
}
