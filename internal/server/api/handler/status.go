package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/internal/server/api"
)

// Status returns a snapshot of the scheduler, pipeline, report target and
// DSU server counters.
func Status(rt *Runtime) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.StatusResponse
		if rt.Ticker != nil {
			st := rt.Ticker.Stats()
			out.Scheduler = apitypes.SchedulerStatus{
				IntervalMs: float64(rt.Ticker.Interval().Microseconds()) / 1000,
				Ticks:      st.Ticks,
				Skipped:    st.Skipped,
			}
		}
		if rt.Pipeline != nil {
			st := rt.Pipeline.Stats()
			out.Pipeline = apitypes.PipelineStatus{
				Ticks:        st.Ticks,
				Inputs:       st.Inputs,
				LastTickMs:   st.LastTickMs,
				DeviceAngleX: st.DeviceAngle.X,
				DeviceAngleY: st.DeviceAngle.Y,
				Overlay:      st.Overlay,
			}
		}
		if rt.Target != nil {
			out.Report = &apitypes.ReportStatus{
				Submitted: rt.Target.Submitted(),
				Failed:    rt.Target.Failed(),
			}
		}
		if rt.DSU != nil {
			st := rt.DSU.Stats()
			d := &apitypes.DSUStatus{
				State:      rt.DSU.State().String(),
				Clients:    st.Clients,
				Received:   st.Received,
				Dropped:    st.Dropped,
				Sent:       st.Sent,
				SendErrors: st.SendErrors,
				PoolFull:   st.PoolFull,
			}
			if a := rt.DSU.Addr(); a != nil {
				d.Addr = a.String()
			}
			out.DSU = d
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
