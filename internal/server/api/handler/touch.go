package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/device/dualshock4"
	"github.com/padmotion/padmotion/internal/server/api"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
)

// Touch handles touch/{action} pointer events (down, move, up) for the
// virtual touchpad.
func Touch(t *dualshock4.Touch) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var tr apitypes.TouchRequest
		if err := json.Unmarshal([]byte(req.Payload), &tr); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		var pad dualshock4.Pad
		switch tr.Button {
		case 0:
			pad = dualshock4.PadLeft
		case 1:
			pad = dualshock4.PadRight
		default:
			return apierror.ErrBadRequest(fmt.Sprintf("invalid button: %d", tr.Button))
		}
		if tr.X < 0 || tr.X > 1 || tr.Y < 0 || tr.Y > 1 {
			return apierror.ErrBadRequest("x and y must be within 0..1")
		}

		action := req.Params["action"]
		switch action {
		case "down":
			t.PointerDown(pad, tr.X, tr.Y, tr.DoubleTap)
		case "move":
			t.PointerMove(pad, tr.X, tr.Y)
		case "up":
			t.PointerUp(pad, tr.X, tr.Y)
		default:
			return apierror.ErrBadRequest(fmt.Sprintf("unknown touch action: %s", action))
		}
		logger.Debug("touch", "action", action, "pad", tr.Button, "x", tr.X, "y", tr.Y)

		b, err := json.Marshal(apitypes.TouchResponse{Action: action, Button: tr.Button})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
