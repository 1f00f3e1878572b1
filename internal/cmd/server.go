package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/device"
	"github.com/padmotion/padmotion/device/dualshock4"
	"github.com/padmotion/padmotion/internal/config"
	"github.com/padmotion/padmotion/internal/configpaths"
	"github.com/padmotion/padmotion/internal/log"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/power"
	"github.com/padmotion/padmotion/internal/scheduler"
	"github.com/padmotion/padmotion/internal/server/api"
	"github.com/padmotion/padmotion/internal/server/api/auth"
	"github.com/padmotion/padmotion/internal/server/api/handler"
	"github.com/padmotion/padmotion/internal/server/dsu"
	"github.com/padmotion/padmotion/sensor"
)

// ReportConfig controls the DS4 report target.
type ReportConfig struct {
	Disabled bool `help:"Do not build DS4 reports" env:"PADMOTION_REPORT_DISABLED"`
	Extended bool `help:"Build the 63 byte report without id instead of the USB report" env:"PADMOTION_REPORT_EXTENDED"`
}

type Server struct {
	Interval          time.Duration       `help:"Pipeline tick interval" default:"10ms" env:"PADMOTION_INTERVAL"`
	Sensor            string              `help:"Motion source: input (API input stream), serial or iio" enum:"input,serial,iio" default:"input" env:"PADMOTION_SENSOR"`
	Profile           string              `help:"Motion profile file (json, yaml or toml)" type:"path" env:"PADMOTION_PROFILE"`
	SerialConfig      sensor.SerialConfig `embed:"" prefix:"serial."`
	IIOConfig         sensor.IIOConfig    `embed:"" prefix:"iio."`
	ReportConfig      ReportConfig        `embed:"" prefix:"report."`
	DSUServerConfig   dsu.ServerConfig    `embed:"" prefix:"dsu."`
	ApiServerConfig   api.ServerConfig    `embed:"" prefix:"api."`
	ConnectionTimeout time.Duration       `help:"API handshake timeout" default:"30s" env:"PADMOTION_CONNECTION_TIMEOUT"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

// openSource starts the configured motion source. The returned func
// releases it.
func (s *Server) openSource(ctx context.Context, logger *slog.Logger) (sensor.Source, func(), error) {
	switch s.Sensor {
	case "serial":
		imu, err := sensor.OpenSerial(s.SerialConfig, logger)
		if err != nil {
			return nil, nil, err
		}
		return imu, func() { _ = imu.Close() }, nil
	case "iio":
		dir, err := sensor.FindIIO(sensor.DefaultIIORoot, s.IIOConfig.Device)
		if err != nil {
			return nil, nil, err
		}
		dev, err := sensor.OpenIIO(dir, logger)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := dev.Run(ctx, s.IIOConfig.Poll); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("IIO polling stopped", "error", err)
			}
		}()
		return dev, func() { cancel(); <-done }, nil
	default:
		return sensor.NewFeed(), func() {}, nil
	}
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.Interval)
	}
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout

	profile := pipeline.DefaultProfile()
	if s.Profile != "" {
		p, err := config.LoadProfile(s.Profile)
		if err != nil {
			return err
		}
		profile = p
		logger.Info("Loaded motion profile", "path", s.Profile)
	}

	src, closeSource, err := s.openSource(ctx, logger)
	if err != nil {
		return fmt.Errorf("open %s sensor: %w", s.Sensor, err)
	}
	defer closeSource()

	snapshots := &controller.Publisher{}
	pipe := pipeline.New(src, s.Interval, snapshots, dualshock4.NewTouch(), logger)
	if err := pipe.SetProfile(profile); err != nil {
		return err
	}

	ticker := scheduler.New(s.Interval, logger)
	ticker.Register(pipe)

	rt := &handler.Runtime{Ticker: ticker, Pipeline: pipe}

	if !s.ReportConfig.Disabled {
		target := dualshock4.NewTarget(device.NewLogBus("dualshock4", rawLogger), snapshots, logger)
		target.Extended = s.ReportConfig.Extended
		ticker.Register(target)
		rt.Target = target
	}

	if !s.DSUServerConfig.Disabled {
		dsuSrv := dsu.New(s.DSUServerConfig, snapshots, power.New(), logger, rawLogger)
		if err := dsuSrv.Start(ctx); err != nil {
			logger.Error("failed to start DSU server", "error", err)
			return err
		}
		defer dsuSrv.Stop()
		ticker.Register(dsuSrv)
		rt.DSU = dsuSrv
	}

	if !s.ApiServerConfig.Disabled {
		apiSrv, err := s.startAPI(rt, logger)
		if err != nil {
			logger.Error("failed to start API server", "error", err)
			return err
		}
		defer apiSrv.Close()
	}

	logger.Info("Starting padmotion", "version", Version, "interval", s.Interval, "sensor", s.Sensor)
	ticker.Start(ctx)
	<-ctx.Done()
	ticker.Stop()

	st := ticker.Stats()
	logger.Info("padmotion stopped", "ticks", st.Ticks, "skipped", st.Skipped)
	return nil
}

func (s *Server) startAPI(rt *handler.Runtime, logger *slog.Logger) (*api.Server, error) {
	keyFile := s.ApiServerConfig.KeyFile
	if keyFile == "" {
		p, err := configpaths.DefaultKeyFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve key file path: %w", err)
		}
		keyFile = p
	}
	pwd, created, err := auth.LoadOrCreateKey(keyFile)
	if err != nil {
		return nil, err
	}
	s.ApiServerConfig.Password = pwd
	if created {
		logger.Info("Generated API server password", "path", keyFile)
		logger.Info("-------------------------------------")
		logger.Info("Your padmotion API password is:")
		logger.Info(pwd)
		logger.Info("-------------------------------------")
		logger.Info("You can change this password at any time by editing the file")
	}

	apiSrv := api.New(s.ApiServerConfig, logger)
	r := apiSrv.Router()
	r.Register("ping", handler.Ping(Version))
	r.Register("status", handler.Status(rt))
	r.Register("dsu/clients", handler.DSUClients(rt.DSU))
	r.Register("profile/get", handler.ProfileGet(rt.Pipeline))
	r.Register("profile/set", handler.ProfileSet(rt.Pipeline))
	r.Register("overlay/{state}", handler.Overlay(rt.Pipeline))
	r.Register("touch/{action}", handler.Touch(rt.Pipeline.Touch()))
	r.RegisterStream("stream/input", handler.InputStream(rt.Pipeline))
	r.RegisterStream("stream/sensor", handler.SensorStream(rt.Pipeline))

	if err := apiSrv.Start(); err != nil {
		return nil, err
	}
	return apiSrv, nil
}
