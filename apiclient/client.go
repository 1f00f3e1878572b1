package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/padmotion/padmotion/apitypes"
)

// Client provides a high-level interface to the padmotion API, handling
// request formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "ping", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// Status returns scheduler, pipeline, report and DSU counters.
func (c *Client) Status() (*apitypes.StatusResponse, error) {
	return c.StatusCtx(context.Background())
}

func (c *Client) StatusCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "status", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatusResponse](raw)
}

// DSUClients lists the clients subscribed to the DSU server.
func (c *Client) DSUClients() (*apitypes.DSUClientsResponse, error) {
	return c.DSUClientsCtx(context.Background())
}

func (c *Client) DSUClientsCtx(ctx context.Context) (*apitypes.DSUClientsResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "dsu/clients", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.DSUClientsResponse](raw)
}

// Profile returns the active motion profile.
func (c *Client) Profile() (*apitypes.Profile, error) {
	return c.ProfileCtx(context.Background())
}

func (c *Client) ProfileCtx(ctx context.Context) (*apitypes.Profile, error) {
	raw, err := c.transport.DoCtx(ctx, "profile/get", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.Profile](raw)
}

// SetProfile sends a profile update. patch is marshaled as JSON; fields it
// leaves out keep their current value, so a map or a partial struct works.
func (c *Client) SetProfile(patch any) (*apitypes.Profile, error) {
	return c.SetProfileCtx(context.Background(), patch)
}

func (c *Client) SetProfileCtx(ctx context.Context, patch any) (*apitypes.Profile, error) {
	if patch == nil {
		return nil, errors.New("nil profile patch")
	}
	raw, err := c.transport.DoCtx(ctx, "profile/set", patch, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.Profile](raw)
}

// Overlay sets the overlay state: show, hide, toggle or get.
func (c *Client) Overlay(state string) (*apitypes.OverlayResponse, error) {
	return c.OverlayCtx(context.Background(), state)
}

func (c *Client) OverlayCtx(ctx context.Context, state string) (*apitypes.OverlayResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "overlay/{state}", nil, map[string]string{"state": state})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.OverlayResponse](raw)
}

// Touch sends a pointer event (down, move or up) to the virtual touchpad.
func (c *Client) Touch(action string, req apitypes.TouchRequest) (*apitypes.TouchResponse, error) {
	return c.TouchCtx(context.Background(), action, req)
}

func (c *Client) TouchCtx(ctx context.Context, action string, req apitypes.TouchRequest) (*apitypes.TouchResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "touch/{action}", req, map[string]string{"action": action})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TouchResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
