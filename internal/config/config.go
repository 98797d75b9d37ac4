// Package config defines the CLI structure and configuration for padscript.
package config

import (
	"github.com/Alia5/padscript/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PADSCRIPT_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"PADSCRIPT_LOG_FILE"`
	RawFile string `help:"Raw report log file path (default: none)" env:"PADSCRIPT_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Config string `help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"PADSCRIPT_CONFIG"`
	Log    `embed:"" prefix:"log."`

	Run   cmd.Run   `cmd:"" help:"Run a script against the simulated core"`
	Check cmd.Check `cmd:"" help:"Load scripts without running them"`
	Serve cmd.Serve `cmd:"" help:"Start the simulated core and the API server"`
}
