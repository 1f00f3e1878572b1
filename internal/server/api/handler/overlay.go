package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/server/api"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
)

// Overlay handles overlay/{state}. State is visible (show), hidden (hide),
// toggle or get.
func Overlay(p *pipeline.Pipeline) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		visible := p.Stats().Overlay
		switch state := req.Params["state"]; state {
		case "visible", "show":
			visible = true
		case "hidden", "hide":
			visible = false
		case "toggle":
			visible = !visible
		case "get":
		default:
			return apierror.ErrBadRequest(fmt.Sprintf("unknown overlay state: %s", state))
		}
		p.SetOverlay(visible)
		b, err := json.Marshal(apitypes.OverlayResponse{Visible: visible})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
