package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/internal/server/api"
)

const serverName = "padmotion"

// Ping reports the server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: serverName, Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
