package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padmotion/padmotion/apiclient"
	"github.com/padmotion/padmotion/internal/server/api"
	"github.com/padmotion/padmotion/internal/server/api/handler"
	handlerTest "github.com/padmotion/padmotion/internal/testing"
)

func TestOverlay(t *testing.T) {
	p, _ := handlerTest.NewPipeline(t)
	addr, done := handlerTest.StartAPIServer(t, func(r *api.Router, s *api.Server) {
		r.Register("overlay/{state}", handler.Overlay(p))
	})
	defer done()
	c := apiclient.NewTransport(addr)

	steps := []struct {
		state string
		want  string
	}{
		{"get", `{"visible":false}`},
		{"show", `{"visible":true}`},
		{"toggle", `{"visible":false}`},
		{"TOGGLE", `{"visible":true}`},
		{"hide", `{"visible":false}`},
		{"visible", `{"visible":true}`},
		{"hidden", `{"visible":false}`},
		{"blink", `{"status":400,"title":"Bad Request","detail":"unknown overlay state: blink"}`},
	}
	for _, s := range steps {
		line, err := c.Do("overlay/{state}", nil, map[string]string{"state": s.state})
		assert.NoError(t, err, s.state)
		assert.Equal(t, s.want, line, s.state)
	}
	assert.False(t, p.Stats().Overlay)
}
