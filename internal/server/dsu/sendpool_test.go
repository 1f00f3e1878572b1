package dsu

import (
	"context"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/internal/scheduler"
)

// gatedConn blocks every write until gate is closed and records what was
// written.
type gatedConn struct {
	gate chan struct{}

	mu      sync.Mutex
	written [][]byte
}

func (c *gatedConn) WriteToUDPAddrPort(b []byte, _ netip.AddrPort) (int, error) {
	<-c.gate
	c.mu.Lock()
	c.written = append(c.written, append([]byte(nil), b...))
	c.mu.Unlock()
	return len(b), nil
}

func (p *sendPool) freeSlots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

func TestSendPoolCapacity(t *testing.T) {
	p := newSendPool()
	conn := &gatedConn{gate: make(chan struct{})}
	addr := netip.MustParseAddrPort("127.0.0.1:26761")

	var wg sync.WaitGroup
	pkt := make([]byte, PadDataSize)
	for i := 0; i < sendSlots; i++ {
		pkt[0] = byte(i)
		wg.Add(1)
		ok := p.send(conn, pkt, addr, func(err error) {
			assert.NoError(t, err)
			wg.Done()
		})
		require.True(t, ok, "send %d", i)
	}
	assert.Zero(t, p.freeSlots())

	for i := 0; i < 3; i++ {
		assert.False(t, p.send(conn, pkt, addr, nil))
	}

	close(conn.gate)
	wg.Wait()
	assert.Equal(t, sendSlots, p.freeSlots())
	require.NoError(t, p.drain(context.Background()))

	// every slot kept its own copy of the packet
	seen := map[byte]bool{}
	for _, b := range conn.written {
		seen[b[0]] = true
	}
	assert.Len(t, seen, sendSlots)
	assert.True(t, p.send(conn, pkt, addr, nil))
}

func TestSendPoolDrainWaitsForWrites(t *testing.T) {
	p := newSendPool()
	conn := &gatedConn{gate: make(chan struct{})}
	addr := netip.MustParseAddrPort("127.0.0.1:26761")

	require.True(t, p.send(conn, []byte{1}, addr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.drain(ctx), context.DeadlineExceeded)

	close(conn.gate)
	require.NoError(t, p.drain(context.Background()))
	assert.Equal(t, sendSlots, p.freeSlots())
}

func TestServerCountsPoolFull(t *testing.T) {
	s, _ := startServer(t, &controller.Publisher{})
	now := time.Now()
	s.clients.request(netip.MustParseAddrPort("127.0.0.1:40000"), PadDataRequest{}, now)
	s.clients.request(netip.MustParseAddrPort("127.0.0.1:40001"), PadDataRequest{}, now)

	var held []int
	for i := 0; i < sendSlots-1; i++ {
		slot, ok := s.pool.acquire()
		require.True(t, ok)
		held = append(held, slot)
	}

	s.OnTick(scheduler.Tick{Seq: 1, Now: now})
	require.Eventually(t, func() bool { return s.Stats().Sent == 1 }, time.Second, 5*time.Millisecond)
	st := s.Stats()
	assert.Equal(t, uint64(1), st.PoolFull)
	assert.Equal(t, 2, st.Clients)

	for _, slot := range held {
		s.pool.release(slot)
	}
	s.Stop()
	assert.Equal(t, sendSlots, s.pool.freeSlots())
}
