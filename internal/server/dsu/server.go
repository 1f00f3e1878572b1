// Package dsu serves controller state to cemuhook compatible clients over
// UDP.
package dsu

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/internal/log"
	"github.com/padmotion/padmotion/internal/scheduler"
)

const (
	defaultClientTimeout = 5 * time.Second
	batteryRefresh       = time.Second
	recvBufferSize       = 1024
	rawChannel           = "dsu"
	stopDrainTimeout     = time.Second
)

// State is the lifecycle state of a Server.
type State int32

const (
	StateStopped State = iota
	StateBound
	StateListening
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateBound:
		return "bound"
	case StateListening:
		return "listening"
	default:
		return "unknown"
	}
}

// BatterySource reports the host battery.
type BatterySource interface {
	Battery() controller.Battery
}

// Stats are counters since the server was created.
type Stats struct {
	Received   uint64 `json:"received"`
	Dropped    uint64 `json:"dropped"`
	Sent       uint64 `json:"sent"`
	SendErrors uint64 `json:"sendErrors"`
	PoolFull   uint64 `json:"poolFull"`
	Clients    int    `json:"clients"`
}

// Server is a DSU protocol server. Pad data is pushed from OnTick.
type Server struct {
	config    ServerConfig
	snapshots *controller.Publisher
	battery   BatterySource
	logger    *slog.Logger
	raw       log.RawLogger

	mu     sync.Mutex
	conn   *net.UDPConn
	group  *errgroup.Group
	cancel context.CancelFunc
	state  atomic.Int32
	id     uint32

	clients *clients
	pool    *sendPool

	// Only touched from OnTick, which the scheduler never runs concurrently.
	counter     uint32
	level       controller.Battery
	lastBattery time.Time
	packet      [PadDataSize]byte

	received   atomic.Uint64
	dropped    atomic.Uint64
	sent       atomic.Uint64
	sendErrors atomic.Uint64
	poolFull   atomic.Uint64
}

// New creates a stopped server. battery may be nil, in which case the pad
// always reports a full battery.
func New(config ServerConfig, snapshots *controller.Publisher, battery BatterySource, logger *slog.Logger, raw log.RawLogger) *Server {
	if config.ClientTimeout <= 0 {
		config.ClientTimeout = defaultClientTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Server{
		config:    config,
		snapshots: snapshots,
		battery:   battery,
		logger:    logger,
		raw:       raw,
		clients:   newClients(config.ClientTimeout),
		pool:      newSendPool(),
		level:     controller.BatteryFull,
	}
}

// Start binds the configured address and starts the receive loop. On error
// the server stays stopped.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Load()) != StateStopped {
		return errors.New("dsu: server already started")
	}

	lc := net.ListenConfig{Control: control}
	pc, err := lc.ListenPacket(ctx, "udp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("dsu: listen %s: %w", s.config.Addr, err)
	}
	conn := pc.(*net.UDPConn)
	if err := disableConnReset(conn); err != nil {
		s.logger.Warn("DSU connection reset mitigation failed", "error", err)
	}

	var id [4]byte
	if _, err := rand.Read(id[:]); err != nil {
		_ = conn.Close()
		return fmt.Errorf("dsu: server id: %w", err)
	}
	s.id = binary.LittleEndian.Uint32(id[:])
	s.conn = conn
	s.state.Store(int32(StateBound))

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	s.group.Go(func() error { return s.receive(conn) })
	s.group.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})

	s.state.Store(int32(StateListening))
	s.logger.Info("DSU server listening", "addr", conn.LocalAddr().String(), "id", s.id)
	return nil
}

// Stop closes the socket, waits for the receive loop and gives in-flight
// sends up to stopDrainTimeout to return their slots. Calling Stop on a
// stopped server is a no-op.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Load()) == StateStopped {
		return
	}
	s.state.Store(int32(StateStopped))
	s.cancel()
	if err := s.group.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("DSU server closed", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopDrainTimeout)
	defer cancel()
	if err := s.pool.drain(ctx); err != nil {
		s.logger.Warn("DSU sends still in flight after stop", "error", err)
	}
	s.conn = nil
	s.logger.Info("DSU server stopped")
}

// Addr returns the bound address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *Server) State() State { return State(s.state.Load()) }

// Clients lists the subscribed clients.
func (s *Server) Clients() []ClientInfo { return s.clients.list(time.Now()) }

func (s *Server) Stats() Stats {
	return Stats{
		Received:   s.received.Load(),
		Dropped:    s.dropped.Load(),
		Sent:       s.sent.Load(),
		SendErrors: s.sendErrors.Load(),
		PoolFull:   s.poolFull.Load(),
		Clients:    s.clients.len(),
	}
}

func (s *Server) receive(conn *net.UDPConn) error {
	buf := make([]byte, recvBufferSize)
	for {
		n, addr, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Debug("DSU read error", "error", err)
			if err := disableConnReset(conn); err != nil {
				s.logger.Debug("DSU connection reset mitigation failed", "error", err)
			}
			continue
		}
		s.received.Add(1)
		s.raw.Log(rawChannel, true, buf[:n])
		s.handle(conn, buf[:n], addr)
	}
}

func (s *Server) handle(conn *net.UDPConn, b []byte, addr netip.AddrPort) {
	pkt, err := ParsePacket(b)
	if err != nil {
		s.dropped.Add(1)
		s.logger.Debug("DSU packet dropped", "from", addr.String(), "error", err)
		return
	}

	switch pkt.Type {
	case MsgVersion:
		s.reply(conn, addr, MsgVersion, versionPayload())
	case MsgListPorts:
		ids, ok := parseListPorts(pkt.Payload)
		if !ok {
			s.dropped.Add(1)
			s.logger.Debug("DSU malformed port list request", "from", addr.String())
			return
		}
		battery := s.currentBattery()
		for _, id := range ids {
			s.reply(conn, addr, MsgListPorts, portInfoPayload(padMeta(id, battery)))
		}
	case MsgPadData:
		req, ok := parsePadDataRequest(pkt.Payload)
		if !ok {
			s.dropped.Add(1)
			s.logger.Debug("DSU malformed pad data request", "from", addr.String())
			return
		}
		s.clients.request(addr, req, time.Now())
	default:
		s.dropped.Add(1)
		s.logger.Debug("DSU unknown message", "from", addr.String(), "type", fmt.Sprintf("%#x", pkt.Type))
	}
}

func (s *Server) reply(conn *net.UDPConn, addr netip.AddrPort, msgType uint32, payload []byte) {
	out := Encode(MagicServer, s.id, msgType, payload)
	s.raw.Log(rawChannel, false, out)
	if _, err := conn.WriteToUDPAddrPort(out, addr); err != nil {
		s.sendErrors.Add(1)
		s.logger.Debug("DSU reply failed", "to", addr.String(), "error", err)
		return
	}
	s.sent.Add(1)
}

func (s *Server) currentBattery() controller.Battery {
	if s.battery == nil {
		return controller.BatteryFull
	}
	return s.battery.Battery()
}

// OnTick sends the latest snapshot to every live client.
func (s *Server) OnTick(t scheduler.Tick) {
	if s.State() != StateListening {
		return
	}
	if s.battery != nil && t.Now.Sub(s.lastBattery) >= batteryRefresh {
		s.level = s.battery.Battery()
		s.lastBattery = t.Now
	}

	meta := padMeta(0, s.level)
	addrs := s.clients.live(t.Now, meta)
	if len(addrs) == 0 {
		return
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	s.counter++
	buildPadData(s.packet[:], s.id, meta, s.counter, s.snapshots.Load())
	s.raw.Log(rawChannel, false, s.packet[:])

	for _, addr := range addrs {
		ok := s.pool.send(conn, s.packet[:], addr, func(err error) {
			if err != nil {
				s.sendErrors.Add(1)
				return
			}
			s.sent.Add(1)
		})
		if !ok {
			s.poolFull.Add(1)
		}
	}
}

var _ scheduler.Observer = (*Server)(nil)
