// Package config holds configuration shared across commands and the motion
// profile file loader.
package config

// LogConfig configures logging for every command.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" enum:"trace,debug,info,warn,error" env:"PADMOTION_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"PADMOTION_LOG_FILE"`
	RawFile string `help:"Write hex dumps of DSU packets and HID reports to this file" env:"PADMOTION_LOG_RAW_FILE"`
}
