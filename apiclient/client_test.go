package apiclient_test

import (
	"context"
	"errors"
	"testing"

	apiclient "github.com/padmotion/padmotion/apiclient"
	apitypes "github.com/padmotion/padmotion/apitypes"

	"github.com/stretchr/testify/assert"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps path patterns (before param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"padmotion","version":"dev"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.PingResponse{Server: "padmotion", Version: "dev"}, got)
			},
		},
		{
			name: "status without dsu",
			setup: func(responses map[string]string) error {
				responses["status"] = `{"scheduler":{"intervalMs":10,"ticks":5,"skipped":1},"pipeline":{"ticks":5,"inputs":0,"lastTickMs":50,"deviceAngleX":0,"deviceAngleY":0,"overlay":false}}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Status() },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.StatusResponse)
				assert.Equal(t, uint64(5), resp.Scheduler.Ticks)
				assert.Equal(t, uint64(1), resp.Scheduler.Skipped)
				assert.Nil(t, resp.DSU)
			},
		},
		{
			name: "dsu clients",
			setup: func(responses map[string]string) error {
				responses["dsu/clients"] = `{"clients":[{"addr":"127.0.0.1:5000","allPads":true,"padIds":[0],"macs":0,"lastSeen":"2024-01-02T03:04:05Z"}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.DSUClients() },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.DSUClientsResponse)
				if assert.Len(t, resp.Clients, 1) {
					assert.Equal(t, "127.0.0.1:5000", resp.Clients[0].Addr)
					assert.True(t, resp.Clients[0].AllPads)
				}
			},
		},
		{
			name: "set profile rejected",
			setup: func(responses map[string]string) error {
				responses["profile/set"] = `{"status":400,"title":"Bad Request","detail":"flickDuration must be positive"}`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return c.SetProfile(map[string]any{"flickStick": true}) },
			wantErr: "400 Bad Request: flickDuration must be positive",
		},
		{
			name:    "set profile nil patch",
			call:    func(c *apiclient.Client) (any, error) { return c.SetProfile(nil) },
			wantErr: "nil profile patch",
		},
		{
			name: "overlay",
			setup: func(responses map[string]string) error {
				responses["overlay/{state}"] = `{"visible":true}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Overlay("show") },
			assertFunc: func(t *testing.T, got any) {
				assert.True(t, got.(*apitypes.OverlayResponse).Visible)
			},
		},
		{
			name: "touch",
			setup: func(responses map[string]string) error {
				responses["touch/{action}"] = `{"action":"down","button":1}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.Touch("down", apitypes.TouchRequest{X: 0.5, Y: 0.5, Button: 1})
			},
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, &apitypes.TouchResponse{Action: "down", Button: 1}, got)
			},
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.Status() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.Profile() },
			wantErr: "empty response",
		},
		{
			name: "malformed json",
			setup: func(responses map[string]string) error {
				responses["profile/get"] = `{"gyroMultiplier":`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return c.Profile() },
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			errInject := error(nil)
			if tt.setup != nil {
				if e := tt.setup(responses); e != nil {
					errInject = e
				}
			}
			c := testClient(responses, errInject)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.StatusCtx(ctx)
	assert.Error(t, err)
}
