// Package power reads the host battery state from sysfs.
package power

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/padmotion/padmotion/controller"
)

// DefaultRoot is where Linux exposes power supplies.
const DefaultRoot = "/sys/class/power_supply"

// Status is a raw battery reading.
type Status struct {
	Name     string
	Capacity int
	// State is the sysfs status string, e.g. "Charging".
	State string
}

// Level maps the reading onto the DSU battery encoding.
func (s Status) Level() controller.Battery {
	switch strings.ToLower(s.State) {
	case "charging":
		return controller.BatteryCharging
	case "full":
		return controller.BatteryFull
	}
	switch {
	case s.Capacity > 66:
		return controller.BatteryHigh
	case s.Capacity < 5:
		return controller.BatteryDying
	case s.Capacity < 33:
		return controller.BatteryLow
	default:
		return controller.BatteryMedium
	}
}

// Provider reads the first battery under Root. A host without a battery
// reports controller.BatteryNone.
type Provider struct {
	Root string
}

func New() *Provider { return &Provider{Root: DefaultRoot} }

// Battery implements dsu.BatterySource.
func (p *Provider) Battery() controller.Battery {
	st, err := p.Read()
	if err != nil {
		return controller.BatteryNone
	}
	return st.Level()
}

// Read returns the status of the first supply whose type is Battery.
func (p *Provider) Read() (Status, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return Status{}, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		dir := filepath.Join(p.Root, name)
		if t, _ := readString(filepath.Join(dir, "type")); !strings.EqualFold(t, "Battery") {
			continue
		}
		st := Status{Name: name}
		st.State, _ = readString(filepath.Join(dir, "status"))
		c, err := readString(filepath.Join(dir, "capacity"))
		if err != nil {
			return st, fmt.Errorf("power: %s capacity: %w", name, err)
		}
		if st.Capacity, err = strconv.Atoi(c); err != nil {
			return st, fmt.Errorf("power: %s capacity %q: %w", name, c, err)
		}
		return st, nil
	}
	return Status{}, os.ErrNotExist
}

func readString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
