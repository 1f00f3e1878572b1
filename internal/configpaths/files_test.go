package configpaths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePaths(t *testing.T) {
	tests := []struct {
		name     string
		userPath string
		wantIn   string
	}{
		{name: "json user path", userPath: "/tmp/a.json", wantIn: "json"},
		{name: "yaml user path", userPath: "/tmp/a.yml", wantIn: "yaml"},
		{name: "toml user path", userPath: "/tmp/a.toml", wantIn: "toml"},
		{name: "unknown extension goes to json", userPath: "/tmp/a.conf", wantIn: "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.userPath)
			got := map[string][]string{"json": j, "yaml": y, "toml": tm}
			require.NotEmpty(t, got[tt.wantIn])
			assert.Equal(t, tt.userPath, got[tt.wantIn][0])
		})
	}
}

func TestDefaultConfigDirXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "padmotion"), got)

	key, err := DefaultKeyFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "padmotion", "padmotion.key.txt"), key)

	p, err := DefaultNamedConfigPath("server", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "padmotion", "server.yaml"), p)
}
