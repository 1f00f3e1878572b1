package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/sensor"
)

func TestLoadProfile(t *testing.T) {
	want := pipeline.DefaultProfile()
	want.GyroMultiplier = 2
	want.SteeringAxis = sensor.SteeringRoll
	want.FlickStick = true

	tests := []struct {
		name    string
		file    string
		content string
		want    pipeline.Profile
		wantErr bool
	}{
		{
			name:    "json",
			file:    "p.json",
			content: `{"gyroMultiplier":2,"steeringAxis":1,"flickStick":true}`,
			want:    want,
		},
		{
			name:    "yaml",
			file:    "p.yaml",
			content: "gyroMultiplier: 2\nsteeringAxis: 1\nflickStick: true\n",
			want:    want,
		},
		{
			name:    "toml",
			file:    "p.toml",
			content: "gyroMultiplier = 2.0\nsteeringAxis = 1\nflickStick = true\n",
			want:    want,
		},
		{
			name:    "empty object keeps defaults",
			file:    "p.json",
			content: `{}`,
			want:    pipeline.DefaultProfile(),
		},
		{
			name:    "invalid value",
			file:    "p.json",
			content: `{"steeringAxis":3}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			file:    "p.yaml",
			content: "gyroMultiplier: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadProfile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadProfileMissing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestProfileMap(t *testing.T) {
	m, err := ProfileMap(pipeline.DefaultProfile())
	require.NoError(t, err)
	assert.Contains(t, m, "gyroMultiplier")
	assert.Contains(t, m, "flickDuration")
	assert.Equal(t, 0.1, m["flickDuration"])
}
