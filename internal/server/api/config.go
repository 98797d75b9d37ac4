package api

import "time"

// ServerConfig represents the API server configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:":3243" env:"PADSCRIPT_API_ADDR"`
	ConnectionTimeout time.Duration `help:"Idle time before an API connection is closed (0 disables)" default:"0s" env:"PADSCRIPT_API_CONNECTION_TIMEOUT"`
}
