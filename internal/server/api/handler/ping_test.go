package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padmotion/padmotion/apiclient"
	"github.com/padmotion/padmotion/internal/server/api"
	"github.com/padmotion/padmotion/internal/server/api/handler"
	handlerTest "github.com/padmotion/padmotion/internal/testing"
)

func TestPing(t *testing.T) {
	addr, done := handlerTest.StartAPIServer(t, func(r *api.Router, s *api.Server) {
		r.Register("ping", handler.Ping("1.2.3"))
	})
	defer done()

	c := apiclient.NewTransport(addr)
	line, err := c.Do("ping", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, `{"server":"padmotion","version":"1.2.3"}`, line)

	line, err = c.Do("nope", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, `{"status":404,"title":"Not Found","detail":"unknown path: nope"}`, line)
}
