package main

import (
	"io"
	"os"
	"strings"

	"github.com/padmotion/padmotion/internal/cmd"
	"github.com/padmotion/padmotion/internal/config"
	"github.com/padmotion/padmotion/internal/configpaths"
	"github.com/padmotion/padmotion/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:], os.Getenv)
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("padmotion"),
		kong.Description("Motion controls for gamepads over DSU"),
		kong.UsageOnError(),
		kong.Vars{"version": cmd.Version},
		// flags and env override config values
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	rawLogger, rawFile := openRawLogger(cli.Log)
	if rawFile != nil {
		closeFiles = append(closeFiles, rawFile)
	} else if cli.Log.RawFile != "" {
		logger.Error("failed to open raw log file", "file", cli.Log.RawFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// openRawLogger picks where packet dumps go. Trace level without a raw
// file dumps to stdout.
func openRawLogger(cfg config.LogConfig) (log.RawLogger, io.Closer) {
	if cfg.RawFile != "" {
		f, err := os.OpenFile(cfg.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return log.NewRaw(nil), nil
		}
		return log.NewRaw(f), f
	}
	if cfg.Level == "trace" {
		return log.NewRaw(os.Stdout), nil
	}
	return log.NewRaw(nil), nil
}

func findUserConfig(args []string, getenv func(string) string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return getenv("PADMOTION_CONFIG")
}
