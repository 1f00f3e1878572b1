package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/padmotion/padmotion/apitypes"
	"github.com/padmotion/padmotion/internal/server/api"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
	"github.com/padmotion/padmotion/internal/server/dsu"
)

// DSUClients lists the clients currently subscribed to pad data.
func DSUClients(s *dsu.Server) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if s == nil {
			return apierror.ErrUnavailable("dsu server is disabled")
		}
		infos := s.Clients()
		out := apitypes.DSUClientsResponse{Clients: make([]apitypes.DSUClient, 0, len(infos))}
		for _, c := range infos {
			out.Clients = append(out.Clients, apitypes.DSUClient{
				Addr:     c.Addr,
				AllPads:  c.AllPads,
				PadIDs:   c.PadIDs,
				MACs:     c.MACs,
				LastSeen: c.LastSeen,
			})
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
