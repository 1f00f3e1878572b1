package power

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padmotion/padmotion/controller"
)

func writeSupply(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for f, v := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte(v+"\n"), 0o644))
	}
}

func TestStatusLevel(t *testing.T) {
	tests := []struct {
		st   Status
		want controller.Battery
	}{
		{Status{State: "Charging", Capacity: 10}, controller.BatteryCharging},
		{Status{State: "Full", Capacity: 100}, controller.BatteryFull},
		{Status{State: "Discharging", Capacity: 80}, controller.BatteryHigh},
		{Status{State: "Discharging", Capacity: 50}, controller.BatteryMedium},
		{Status{State: "Discharging", Capacity: 20}, controller.BatteryLow},
		{Status{State: "Discharging", Capacity: 3}, controller.BatteryDying},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.st.Level(), "%+v", tt.st)
	}
}

func TestProviderReadsFirstBattery(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "AC", map[string]string{"type": "Mains", "online": "1"})
	writeSupply(t, root, "BAT1", map[string]string{"type": "Battery", "status": "Discharging", "capacity": "42"})

	p := &Provider{Root: root}
	st, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, Status{Name: "BAT1", Capacity: 42, State: "Discharging"}, st)
	assert.Equal(t, controller.BatteryMedium, p.Battery())
}

func TestProviderWithoutBattery(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "AC", map[string]string{"type": "Mains"})

	assert.Equal(t, controller.BatteryNone, (&Provider{Root: root}).Battery())
	assert.Equal(t, controller.BatteryNone, (&Provider{Root: filepath.Join(root, "missing")}).Battery())
}
