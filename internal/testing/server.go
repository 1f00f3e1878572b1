// Package testing holds helpers shared by handler and client tests.
package testing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/server/api"
	"github.com/padmotion/padmotion/sensor"
)

// TestInterval is the tick interval test pipelines are built with.
const TestInterval = 10 * time.Millisecond

// NewPipeline returns a pipeline reading from a fresh feed.
func NewPipeline(t *testing.T) (*pipeline.Pipeline, *controller.Publisher) {
	t.Helper()
	pub := &controller.Publisher{}
	return pipeline.New(sensor.NewFeed(), TestInterval, pub, nil, slog.Default()), pub
}

// StartAPIServer starts an API server on a loopback port with the routes
// added by register. The returned func stops it.
func StartAPIServer(t *testing.T, register func(r *api.Router, s *api.Server)) (string, func()) {
	return StartAPIServerWithConfig(t, api.ServerConfig{}, register)
}

// StartAPIServerWithConfig is StartAPIServer with a custom config. Addr is
// always replaced by an ephemeral loopback address.
func StartAPIServerWithConfig(t *testing.T, cfg api.ServerConfig, register func(r *api.Router, s *api.Server)) (string, func()) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = 2 * time.Second
	}
	srv := api.New(cfg, slog.Default())
	if register != nil {
		register(srv.Router(), srv)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start api server: %v", err)
	}
	return srv.Addr().String(), srv.Close
}
