package dsu

import (
	"context"
	"net"
	"net/netip"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sendSlots is the number of pad data packets that may be in flight.
const sendSlots = 80

type sendConn interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
}

// sendPool owns preallocated packet buffers for asynchronous sends.
type sendPool struct {
	sem  *semaphore.Weighted
	mu   sync.Mutex
	free []int
	bufs [sendSlots][PadDataSize]byte
}

func newSendPool() *sendPool {
	p := &sendPool{sem: semaphore.NewWeighted(sendSlots), free: make([]int, sendSlots)}
	for i := range p.free {
		p.free[i] = sendSlots - 1 - i
	}
	return p
}

// acquire takes a free slot, or returns false when all slots are busy.
func (p *sendPool) acquire() (int, bool) {
	if !p.sem.TryAcquire(1) {
		return 0, false
	}
	p.mu.Lock()
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.mu.Unlock()
	return slot, true
}

func (p *sendPool) release(slot int) {
	p.mu.Lock()
	p.free = append(p.free, slot)
	p.mu.Unlock()
	p.sem.Release(1)
}

// send copies pkt into a slot and writes it to addr on its own goroutine.
// done is called with the write result after the slot is released.
func (p *sendPool) send(conn sendConn, pkt []byte, addr netip.AddrPort, done func(error)) bool {
	slot, ok := p.acquire()
	if !ok {
		return false
	}
	buf := p.bufs[slot][:copy(p.bufs[slot][:], pkt)]

	go func() {
		_, err := conn.WriteToUDPAddrPort(buf, addr)
		p.release(slot)
		if done != nil {
			done(err)
		}
	}()
	return true
}

// drain waits until every slot is free again or ctx ends.
func (p *sendPool) drain(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, sendSlots); err != nil {
		return err
	}
	p.sem.Release(sendSlots)
	return nil
}

var _ sendConn = (*net.UDPConn)(nil)
