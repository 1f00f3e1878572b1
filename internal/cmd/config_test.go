package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/padmotion/padmotion/internal/config"
	"github.com/padmotion/padmotion/internal/pipeline"
)

func TestConfigInitServer(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, (&ConfigInit{Command: "server", Format: "yml", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))

	assert.Equal(t, "10ms", got["interval"])
	assert.Equal(t, "input", got["sensor"])
	require.Contains(t, got, "dsu")
	assert.Equal(t, ":26760", got["dsu"].(map[string]any)["addr"])
	require.Contains(t, got, "api")
	api := got["api"].(map[string]any)
	assert.Equal(t, "localhost:3243", api["addr"])
	assert.NotContains(t, api, "password")
	assert.NotContains(t, api, "connectionTimeout")
	assert.Equal(t, 115200, got["serial"].(map[string]any)["baud_rate"])
	assert.Equal(t, "5s", got["dsu"].(map[string]any)["client_timeout"])
	assert.Contains(t, string(data), "# Pipeline tick interval")
}

func TestConfigInitServerTemplateResolves(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, (&ConfigInit{Command: "server", Format: "json", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	edited := strings.Replace(string(data), `"5s"`, `"7s"`, 1)
	edited = strings.Replace(edited, ":26760", ":26761", 1)
	require.NoError(t, os.WriteFile(dest, []byte(edited), 0o644))

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(kong.JSON, dest))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"server"})
	require.NoError(t, err)

	assert.Equal(t, ":26761", cli.Server.DSUServerConfig.Addr)
	assert.Equal(t, 7*time.Second, cli.Server.DSUServerConfig.ClientTimeout)
	assert.Equal(t, 10*time.Millisecond, cli.Server.Interval)
	assert.Empty(t, cli.Server.Profile)
}

func TestConfigInitTOMLComments(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, (&ConfigInit{Command: "server", Format: "toml", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "[dsu]")
	assert.Contains(t, s, `client_timeout = "5s"`)
	assert.Contains(t, s, "# DSU server listen address")
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"Addr":          "addr",
		"ClientTimeout": "client-timeout",
		"IIORoot":       "iio-root",
		"BaudRate":      "baud-rate",
		"RequireAuth":   "require-auth",
	}
	for in, want := range tests {
		assert.Equal(t, want, flagName(in), in)
	}
}

func TestConfigInitProfileLoadsBack(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "profile."+format)
			require.NoError(t, (&ConfigInit{Command: "profile", Format: format, Output: dest}).Run())

			p, err := config.LoadProfile(dest)
			require.NoError(t, err)
			assert.Equal(t, pipeline.DefaultProfile(), p)
		})
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))

	err := (&ConfigInit{Command: "server", Format: "json", Output: dest}).Run()
	require.Error(t, err)

	require.NoError(t, (&ConfigInit{Command: "server", Format: "json", Output: dest, Force: true}).Run())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "report")
}

func TestConfigInitRejectsUnknownFormat(t *testing.T) {
	err := (&ConfigInit{Command: "server", Format: "ini", Output: filepath.Join(t.TempDir(), "x")}).Run()
	assert.Error(t, err)
}
