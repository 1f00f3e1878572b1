package handler

import (
	"github.com/padmotion/padmotion/device/dualshock4"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/scheduler"
	"github.com/padmotion/padmotion/internal/server/dsu"
)

// Runtime bundles the running components the handlers act on.
// Target and DSU are nil when disabled.
type Runtime struct {
	Ticker   *scheduler.Ticker
	Pipeline *pipeline.Pipeline
	Target   *dualshock4.Target
	DSU      *dsu.Server
}
