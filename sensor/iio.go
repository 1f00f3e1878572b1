package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultIIORoot is where Linux exposes industrial I/O devices.
const DefaultIIORoot = "/sys/bus/iio/devices"

const standardGravity = 9.80665

// IIOConfig configures the Linux IIO source.
type IIOConfig struct {
	Device string        `help:"IIO device name or path; empty picks the first device with motion channels" env:"PADMOTION_IIO_DEVICE"`
	Poll   time.Duration `help:"IIO polling interval" default:"5ms" env:"PADMOTION_IIO_POLL"`
}

// IIO polls accelerometer and gyroscope channels from sysfs. Values are
// converted from m/s^2 and rad/s.
type IIO struct {
	latest

	dir        string
	accelScale r3.Vec
	gyroScale  r3.Vec
	haveAccel  bool
	haveGyro   bool
	mount      *r3.Mat
	logger     *slog.Logger
	now        func() time.Time
}

// IIODevice is an IIO device directory with motion channels.
type IIODevice struct {
	Dir   string
	Name  string
	Accel bool
	Gyro  bool
}

// ListIIO returns the devices under root exposing accelerometer or
// gyroscope channels, sorted by directory.
func ListIIO(root string) ([]IIODevice, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "iio:device") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	var out []IIODevice
	for _, d := range dirs {
		dir := filepath.Join(root, d)
		dev := IIODevice{
			Dir:   dir,
			Accel: exists(filepath.Join(dir, "in_accel_x_raw")),
			Gyro:  exists(filepath.Join(dir, "in_anglvel_x_raw")),
		}
		if !dev.Accel && !dev.Gyro {
			continue
		}
		dev.Name, _ = readTrimmed(filepath.Join(dir, "name"))
		out = append(out, dev)
	}
	return out, nil
}

// FindIIO returns the device directory under root matching name, or the
// first one with motion channels when name is empty.
func FindIIO(root, name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return name, nil
	}
	devs, err := ListIIO(root)
	if err != nil {
		return "", err
	}
	for _, d := range devs {
		if name == "" || strings.EqualFold(d.Name, name) {
			return d.Dir, nil
		}
	}
	return "", fmt.Errorf("sensor: no iio device %q with motion channels", name)
}

// OpenIIO reads channel scales and the optional mount matrix of dir.
func OpenIIO(dir string, logger *slog.Logger) (*IIO, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &IIO{dir: dir, logger: logger, now: time.Now}
	d.haveGyro = exists(d.path("anglvel", "x", "raw"))
	d.haveAccel = exists(d.path("accel", "x", "raw"))
	if !d.haveGyro && !d.haveAccel {
		return nil, errors.New("sensor: iio device has no gyro or accel channels")
	}
	if d.haveGyro {
		d.gyroScale = d.scale("anglvel")
	}
	if d.haveAccel {
		d.accelScale = d.scale("accel")
	}
	for _, name := range []string{"mount_matrix", "in_mount_matrix", "in_accel_mount_matrix"} {
		if s, err := readTrimmed(filepath.Join(dir, name)); err == nil {
			m, err := parseMountMatrix(s)
			if err != nil {
				return nil, err
			}
			d.mount = m
			break
		}
	}
	logger.Info("IIO device opened", "dir", dir, "gyro", d.haveGyro, "accel", d.haveAccel)
	return d, nil
}

func (d *IIO) path(channel, axis, attr string) string {
	return filepath.Join(d.dir, fmt.Sprintf("in_%s_%s_%s", channel, axis, attr))
}

// scale reads per axis scales, falling back to the channel wide scale.
func (d *IIO) scale(channel string) r3.Vec {
	shared, _ := readFloat(filepath.Join(d.dir, "in_"+channel+"_scale"))
	axis := func(a string) float64 {
		if v, err := readFloat(d.path(channel, a, "scale")); err == nil && v != 0 {
			return v
		}
		return shared
	}
	return r3.Vec{X: axis("x"), Y: axis("y"), Z: axis("z")}
}

// Poll reads all channels once and stores the result.
func (d *IIO) Poll() error {
	var r Reading
	if d.haveGyro {
		v, err := d.readVec("anglvel", d.gyroScale)
		if err != nil {
			return err
		}
		r.Gyro = r3.Scale(180/math.Pi, v)
	}
	if d.haveAccel {
		v, err := d.readVec("accel", d.accelScale)
		if err != nil {
			return err
		}
		r.Accel = r3.Scale(1/standardGravity, v)
	}
	if d.mount != nil {
		r.Gyro = d.mount.MulVec(r.Gyro)
		r.Accel = d.mount.MulVec(r.Accel)
	}
	d.store(r, d.now())
	return nil
}

// Run polls at interval until ctx ends.
func (d *IIO) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := d.Poll(); err != nil {
			d.logger.Debug("IIO poll failed", "dir", d.dir, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (d *IIO) readVec(channel string, scale r3.Vec) (r3.Vec, error) {
	var raw [3]float64
	for i, a := range []string{"x", "y", "z"} {
		v, err := readFloat(d.path(channel, a, "raw"))
		if err != nil {
			return r3.Vec{}, err
		}
		raw[i] = v
	}
	return r3.Vec{X: raw[0] * scale.X, Y: raw[1] * scale.Y, Z: raw[2] * scale.Z}, nil
}

// parseMountMatrix parses "a, b, c; d, e, f; g, h, i".
func parseMountMatrix(s string) (*r3.Mat, error) {
	rows := strings.Split(s, ";")
	if len(rows) != 3 {
		return nil, fmt.Errorf("sensor: mount matrix %q: want 3 rows", s)
	}
	vals := make([]float64, 0, 9)
	for _, row := range rows {
		cols := strings.Split(row, ",")
		if len(cols) != 3 {
			return nil, fmt.Errorf("sensor: mount matrix %q: want 3 columns", s)
		}
		for _, c := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
			if err != nil {
				return nil, fmt.Errorf("sensor: mount matrix %q: %w", s, err)
			}
			vals = append(vals, v)
		}
	}
	return r3.NewMat(vals), nil
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readFloat(path string) (float64, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("sensor: parse %s: %w", path, err)
	}
	return v, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
