package dsu

import "time"

// ServerConfig configures the DSU server.
type ServerConfig struct {
	Addr          string        `help:"DSU server listen address" default:":26760" env:"PADMOTION_DSU_ADDR"`
	Disabled      bool          `help:"Do not start the DSU server" env:"PADMOTION_DSU_DISABLED"`
	ClientTimeout time.Duration `help:"Drop clients that have not asked for pad data within this window" default:"5s" env:"PADMOTION_DSU_CLIENT_TIMEOUT"`
}
