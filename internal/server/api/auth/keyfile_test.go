package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padmotion/padmotion/internal/server/api/auth"
)

func TestLoadOrCreateKey(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, path string)
		wantCreated bool
		wantKey     string
		wantErr     bool
	}{
		{
			name:        "missing file is generated",
			wantCreated: true,
		},
		{
			name: "existing key is trimmed",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("  hunter2\n"), 0o600))
			},
			wantKey: "hunter2",
		},
		{
			name: "empty file",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "padmotion.key.txt")
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
			if tt.setup != nil {
				tt.setup(t, path)
			}

			key, created, err := auth.LoadOrCreateKey(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			if tt.wantCreated {
				assert.Len(t, key, auth.KeyLength)
				b, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, key, string(b))

				again, created, err := auth.LoadOrCreateKey(path)
				require.NoError(t, err)
				assert.False(t, created)
				assert.Equal(t, key, again)
				return
			}
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
