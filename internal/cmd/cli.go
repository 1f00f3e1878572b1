package cmd

import (
	"github.com/alecthomas/kong"

	"github.com/padmotion/padmotion/internal/config"
)

// Version is set at build time.
var Version = "dev"

// CLI is the root command.
type CLI struct {
	Config string           `help:"Path to a config file (json, yaml or toml)" type:"path" env:"PADMOTION_CONFIG"`
	Log    config.LogConfig `embed:"" prefix:"log."`

	Version kong.VersionFlag `help:"Print the version and exit"`

	Server    Server        `cmd:"" help:"Run the motion pipeline with the DSU and API servers" default:"withargs"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Ports     Ports         `cmd:"" help:"List serial ports and IIO motion devices"`
}
