package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/padmotion/padmotion/sensor"

	"go.bug.st/serial"
)

// Ports lists the places a motion source can be opened from.
type Ports struct {
	IIORoot string `help:"Root of the IIO sysfs tree" default:"/sys/bus/iio/devices" type:"path" env:"PADMOTION_IIO_ROOT"`

	out      io.Writer                `kong:"-"`
	listPort func() ([]string, error) `kong:"-"`
}

func (p *Ports) Run(logger *slog.Logger) error {
	out := p.out
	if out == nil {
		out = os.Stdout
	}
	list := p.listPort
	if list == nil {
		list = serial.GetPortsList
	}

	ports, err := list()
	if err != nil {
		logger.Warn("failed to enumerate serial ports", "error", err)
	}
	devs, err := sensor.ListIIO(p.IIORoot)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to enumerate IIO devices", "root", p.IIORoot, "error", err)
	}
	return writePorts(out, ports, devs)
}

func writePorts(w io.Writer, ports []string, devs []sensor.IIODevice) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL")
	if len(ports) == 0 {
		fmt.Fprintln(tw, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(tw, "  %s\n", p)
	}
	fmt.Fprintln(tw, "IIO")
	if len(devs) == 0 {
		fmt.Fprintln(tw, "  (none)")
	}
	for _, d := range devs {
		var ch []string
		if d.Accel {
			ch = append(ch, "accel")
		}
		if d.Gyro {
			ch = append(ch, "gyro")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Dir, d.Name, strings.Join(ch, ","))
	}
	return tw.Flush()
}
