package sensor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIIO(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, v := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(v+"\n"), 0o644))
	}
}

func TestFindIIO(t *testing.T) {
	root := t.TempDir()
	writeIIO(t, filepath.Join(root, "iio:device0"), map[string]string{"name": "als"})
	writeIIO(t, filepath.Join(root, "iio:device1"), map[string]string{"name": "bmi323", "in_accel_x_raw": "0"})
	writeIIO(t, filepath.Join(root, "iio:device2"), map[string]string{"name": "bmi260", "in_anglvel_x_raw": "0"})

	dir, err := FindIIO(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "iio:device1"), dir)

	dir, err = FindIIO(root, "BMI260")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "iio:device2"), dir)

	_, err = FindIIO(root, "als")
	assert.Error(t, err)
}

func TestIIOPoll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "iio:device0")
	writeIIO(t, dir, map[string]string{
		"in_accel_x_raw":     "100",
		"in_accel_y_raw":     "0",
		"in_accel_z_raw":     "-100",
		"in_accel_scale":     "0.0980665",
		"in_anglvel_x_raw":   "1000",
		"in_anglvel_y_raw":   "0",
		"in_anglvel_z_raw":   "0",
		"in_anglvel_x_scale": "0.001",
		"in_anglvel_scale":   "0.002",
		"mount_matrix":       "0, 1, 0; 1, 0, 0; 0, 0, 1",
	})

	d, err := OpenIIO(dir, nil)
	require.NoError(t, err)
	require.NoError(t, d.Poll())

	r, _, ok := d.Read()
	require.True(t, ok)
	// mount matrix swaps X and Y
	assert.InDelta(t, 0, r.Accel.X, 1e-9)
	assert.InDelta(t, 1, r.Accel.Y, 1e-9)
	assert.InDelta(t, -1, r.Accel.Z, 1e-9)
	assert.InDelta(t, 0, r.Gyro.X, 1e-9)
	assert.InDelta(t, 180/math.Pi, r.Gyro.Y, 1e-9)
}

func TestOpenIIOWithoutChannels(t *testing.T) {
	dir := t.TempDir()
	writeIIO(t, dir, map[string]string{"name": "als"})
	_, err := OpenIIO(dir, nil)
	assert.Error(t, err)
}

func TestParseMountMatrix(t *testing.T) {
	_, err := parseMountMatrix("1, 0; 0, 1")
	assert.Error(t, err)
	_, err = parseMountMatrix("1, 0, 0; 0, x, 0; 0, 0, 1")
	assert.Error(t, err)
	m, err := parseMountMatrix("1, 0, 0; 0, -1, 0; 0, 0, 1")
	require.NoError(t, err)
	assert.Equal(t, -1.0, m.At(1, 1))
}

func TestListIIO(t *testing.T) {
	root := t.TempDir()
	writeIIO(t, filepath.Join(root, "iio:device1"), map[string]string{"name": "bmi323", "in_accel_x_raw": "0", "in_anglvel_x_raw": "0"})
	writeIIO(t, filepath.Join(root, "iio:device0"), map[string]string{"name": "als"})
	writeIIO(t, filepath.Join(root, "trigger0"), map[string]string{"in_accel_x_raw": "0"})

	devs, err := ListIIO(root)
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, IIODevice{Dir: filepath.Join(root, "iio:device1"), Name: "bmi323", Accel: true, Gyro: true}, devs[0])

	_, err = ListIIO(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
