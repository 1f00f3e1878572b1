package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// Placement is where the serial IMU is plugged into the device.
type Placement int

const (
	PlacementTop Placement = iota
	PlacementLeft
	PlacementRight
	PlacementBottom
)

func (p Placement) String() string {
	switch p {
	case PlacementTop:
		return "top"
	case PlacementLeft:
		return "left"
	case PlacementRight:
		return "right"
	case PlacementBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// ParsePlacement accepts the names returned by Placement.String.
func ParsePlacement(s string) (Placement, error) {
	for p := PlacementTop; p <= PlacementBottom; p++ {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("sensor: unknown placement %q", s)
}

// SerialConfig configures the serial IMU source.
type SerialConfig struct {
	Port       string `help:"Serial port of the IMU; empty picks the first port found" env:"PADMOTION_SERIAL_PORT"`
	BaudRate   int    `help:"Serial baud rate" default:"115200" env:"PADMOTION_SERIAL_BAUD"`
	Placement  string `help:"Where the IMU is plugged in (top, left, right, bottom)" default:"top" env:"PADMOTION_SERIAL_PLACEMENT"`
	UpsideDown bool   `help:"IMU is plugged in upside down" env:"PADMOTION_SERIAL_UPSIDE_DOWN"`
	Calibrate  bool   `help:"Run the IMU auto calibration once after connecting" env:"PADMOTION_SERIAL_CALIBRATE"`
}

const (
	frameHeader    = 0xA4
	frameRate      = 0x03
	frameRegister  = 0x08
	frameLen       = 23
	frameHeaderLen = 4

	accelRangeG   = 16
	gyroRangeDps  = 2000
	rawFullScale  = 32768.0
	serialBufSize = 1000
)

var (
	// cmdReadRegisters asks for 0x12 registers starting at accel X.
	cmdReadRegisters = []byte{0xA4, 0x03, 0x08, 0x12, 0xC1}
	cmdCalibrate     = []byte{0xA4, 0x06, 0x07, 0x5F, 0x10}
	cmdSaveConfig    = []byte{0xA4, 0x06, 0x05, 0x55, 0x04}
)

// Serial reads a USB serial IMU streaming 0xA4 frames.
type Serial struct {
	latest

	port      io.ReadWriteCloser
	placement Placement
	upside    bool
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	calibrate bool
	buf       []byte

	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// OpenSerial opens the configured port at 8N1 and starts reading.
func OpenSerial(cfg SerialConfig, logger *slog.Logger) (*Serial, error) {
	name := cfg.Port
	if name == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("sensor: list serial ports: %w", err)
		}
		if len(ports) == 0 {
			return nil, errors.New("sensor: no serial ports found")
		}
		name = ports[0]
		if len(ports) > 1 {
			logger.Warn("Multiple serial ports found", "using", name, "ports", ports)
		}
	}
	placement, err := ParsePlacement(cfg.Placement)
	if err != nil {
		return nil, err
	}
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = 115200
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("sensor: open %s: %w", name, err)
	}
	if err := port.SetRTS(true); err != nil {
		logger.Debug("Serial RTS not set", "port", name, "error", err)
	}
	logger.Info("Serial IMU opened", "port", name, "baud", baud, "placement", placement)

	s := NewSerial(port, placement, cfg.UpsideDown, cfg.Calibrate, logger)
	s.running.Store(true)
	go s.run()
	return s, nil
}

// NewSerial wraps an already open port. Call Run to start reading.
func NewSerial(port io.ReadWriteCloser, placement Placement, upsideDown, calibrate bool, logger *slog.Logger) *Serial {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serial{
		port:      port,
		placement: placement,
		upside:    upsideDown,
		calibrate: calibrate,
		logger:    logger,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Run reads frames until the port fails or is closed.
func (s *Serial) Run() error {
	s.running.Store(true)
	defer s.once.Do(func() { close(s.done) })
	buf := make([]byte, serialBufSize)
	for {
		n, err := s.port.Read(buf)
		if n > 0 {
			if werr := s.feed(buf[:n]); werr != nil {
				return fmt.Errorf("sensor: serial write: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("sensor: serial read: %w", err)
		}
	}
}

func (s *Serial) run() {
	if err := s.Run(); err != nil {
		s.logger.Error("Serial IMU stopped", "error", err)
	}
}

// Close closes the port and waits for a running reader to exit.
func (s *Serial) Close() error {
	err := s.port.Close()
	if s.running.Load() {
		<-s.done
	}
	return err
}

// feed consumes raw bytes, answering with setup commands where the device
// needs them.
func (s *Serial) feed(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, b...)
	for {
		i := 0
		for i+1 < len(s.buf) && (s.buf[i] != frameHeader || s.buf[i+1] != frameRate) {
			i++
		}
		s.buf = s.buf[i:]
		if len(s.buf) < frameHeaderLen {
			return nil
		}

		size := 5 + int(s.buf[3])
		if size != frameLen || s.buf[2] != frameRegister {
			// the device is not streaming the registers we want; ask for
			// them and drop what we have
			s.buf = s.buf[:0]
			_, err := s.port.Write(cmdReadRegisters)
			return err
		}
		if len(s.buf) < frameLen {
			return nil
		}

		if s.calibrate {
			if _, err := s.port.Write(cmdCalibrate); err != nil {
				return err
			}
			time.Sleep(time.Millisecond)
			if _, err := s.port.Write(cmdSaveConfig); err != nil {
				return err
			}
			s.calibrate = false
			s.logger.Info("Serial IMU calibration requested")
		}

		s.store(s.transform(decodeFrame(s.buf[:frameLen])), s.now())
		s.buf = s.buf[frameLen:]
	}
}

// decodeFrame converts a frame into g and deg/s. The device reports the
// Y and Z axes swapped.
func decodeFrame(f []byte) Reading {
	v := func(i int) float64 {
		return float64(int16(binary.BigEndian.Uint16(f[4+2*i:])))
	}
	var r Reading
	r.Accel.X = v(0) / rawFullScale * accelRangeG
	r.Accel.Z = v(1) / rawFullScale * accelRangeG
	r.Accel.Y = v(2) / rawFullScale * accelRangeG
	r.Gyro.X = v(3) / rawFullScale * gyroRangeDps
	r.Gyro.Z = v(4) / rawFullScale * gyroRangeDps
	r.Gyro.Y = v(5) / rawFullScale * gyroRangeDps
	return r
}

func (s *Serial) transform(r Reading) Reading {
	out := r
	switch s.placement {
	case PlacementTop:
		out.Accel.X = -r.Accel.X
		if s.upside {
			out.Accel.Y = -r.Accel.Y
			out.Gyro.X = -r.Gyro.X
			out.Gyro.Y = -r.Gyro.Y
		}
	case PlacementBottom:
		out.Accel.Z = -r.Accel.Z
		out.Gyro.X = -r.Gyro.X
		out.Gyro.Z = -r.Gyro.Z
	}
	return out
}
