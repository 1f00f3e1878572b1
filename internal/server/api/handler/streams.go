package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/internal/pipeline"
	"github.com/padmotion/padmotion/internal/server/api"
)

// InputStream reads binary controller frames until the client hangs up and
// feeds each one to the pipeline.
func InputStream(p *pipeline.Pipeline) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		defer conn.Close()

		buf := make([]byte, controller.FrameSize)
		var f controller.Frame
		var n uint64
		for {
			if _, err := io.ReadFull(conn, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
					logger.Debug("input stream closed", "frames", n)
					return nil
				}
				return err
			}
			if err := f.UnmarshalBinary(buf); err != nil {
				return err
			}
			p.SetInput(&f)
			n++
		}
	}
}

// SensorStream writes one JSON line per readout while the overlay is
// visible. It ends when the client disconnects or the server shuts down.
func SensorStream(p *pipeline.Pipeline) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		defer conn.Close()

		readouts, cancel := p.Subscribe()
		defer cancel()

		// a read returning means the client went away
		gone := make(chan struct{})
		go func() {
			_, _ = io.Copy(io.Discard, conn)
			close(gone)
		}()

		enc := json.NewEncoder(conn)
		for {
			select {
			case <-req.Ctx.Done():
				return nil
			case <-gone:
				return nil
			case r := <-readouts:
				err := enc.Encode(apitypes.SensorReadout{
					TimestampMs:  r.TimestampMs,
					CenteredGyro: [3]float64{r.CenteredGyro.X, r.CenteredGyro.Y, r.CenteredGyro.Z},
					Gravity:      [3]float64{r.Gravity.X, r.Gravity.Y, r.Gravity.Z},
					DeviceAngleX: r.DeviceAngle.X,
					DeviceAngleY: r.DeviceAngle.Y,
				})
				if err != nil {
					return err
				}
			}
		}
	}
}
