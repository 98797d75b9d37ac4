package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/padscript/apitypes"
	"github.com/Alia5/padscript/internal/server/api"
)

// Ping returns a handler for the "ping" endpoint.
// It provides a minimal identity + version response.
func Ping(version string) api.HandlerFunc {
	return func(_ *api.Request, res *api.Response, _ *slog.Logger) error {
		if version == "" {
			version = "dev"
		}
		b, err := json.Marshal(apitypes.PingResponse{Server: "padscript", Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
