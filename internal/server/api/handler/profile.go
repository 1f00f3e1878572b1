package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/server/api"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
	"github.com/padmotion/padmotion/sensor"
)

func toAPIProfile(p pipeline.Profile) apitypes.Profile {
	return apitypes.Profile{
		GyroMultiplier:   p.GyroMultiplier,
		AccelMultiplier:  p.AccelMultiplier,
		SteeringAxis:     int(p.SteeringAxis),
		InvertHorizontal: p.InvertHorizontal,
		InvertVertical:   p.InvertVertical,
		FlickStick:       p.FlickStick,
		FlickDuration:    p.FlickDuration,
		FlickSensitivity: p.FlickSensitivity,
		FilterAccel:      p.FilterAccel,
		FilterMinCutoff:  p.FilterMinCutoff,
		FilterBeta:       p.FilterBeta,
	}
}

func fromAPIProfile(p apitypes.Profile) pipeline.Profile {
	return pipeline.Profile{
		Profile: sensor.Profile{
			GyroMultiplier:   p.GyroMultiplier,
			AccelMultiplier:  p.AccelMultiplier,
			SteeringAxis:     sensor.SteeringAxis(p.SteeringAxis),
			InvertHorizontal: p.InvertHorizontal,
			InvertVertical:   p.InvertVertical,
		},
		FlickStick:       p.FlickStick,
		FlickDuration:    p.FlickDuration,
		FlickSensitivity: p.FlickSensitivity,
		FilterAccel:      p.FilterAccel,
		FilterMinCutoff:  p.FilterMinCutoff,
		FilterBeta:       p.FilterBeta,
	}
}

func writeProfile(res *api.Response, p pipeline.Profile) error {
	b, err := json.Marshal(toAPIProfile(p))
	if err != nil {
		return err
	}
	res.JSON = string(b)
	return nil
}

// ProfileGet returns the active motion profile.
func ProfileGet(p *pipeline.Pipeline) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return writeProfile(res, p.Profile())
	}
}

// ProfileSet merges the JSON payload onto the active profile and applies it.
func ProfileSet(p *pipeline.Pipeline) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		merged := toAPIProfile(p.Profile())
		if err := json.Unmarshal([]byte(req.Payload), &merged); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		next := fromAPIProfile(merged)
		if err := p.SetProfile(next); err != nil {
			return apierror.ErrBadRequest(err.Error())
		}
		return writeProfile(res, next)
	}
}
