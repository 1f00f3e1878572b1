package api

import "time"

// ServerConfig represents the API server configuration.
type ServerConfig struct {
	Addr              string        `help:"API server listen address" default:"localhost:3243" env:"PADMOTION_API_ADDR"`
	Disabled          bool          `help:"Do not start the API server" env:"PADMOTION_API_DISABLED"`
	RequireAuth       bool          `help:"Require the password handshake from loopback clients as well" env:"PADMOTION_API_REQUIRE_AUTH"`
	KeyFile           string        `help:"Path to the API password file (generated when missing)" env:"PADMOTION_API_KEY_FILE"`
	Password          string        `kong:"-"`
	ConnectionTimeout time.Duration `kong:"-"`
}
