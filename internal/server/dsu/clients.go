package dsu

import (
	"net/netip"
	"sort"
	"sync"
	"time"
)

// clientRecord tracks when a client last asked for pad data, per way of
// addressing a pad.
type clientRecord struct {
	addr    netip.AddrPort
	allPads time.Time
	padIDs  [MaxPads]time.Time
	macs    map[[6]byte]time.Time
}

// ClientInfo describes a subscribed client.
type ClientInfo struct {
	Addr     string    `json:"addr"`
	AllPads  bool      `json:"allPads"`
	PadIDs   []uint8   `json:"padIds,omitempty"`
	MACs     int       `json:"macs,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
}

type clients struct {
	mu      sync.Mutex
	timeout time.Duration
	m       map[netip.AddrPort]*clientRecord
}

func newClients(timeout time.Duration) *clients {
	return &clients{timeout: timeout, m: make(map[netip.AddrPort]*clientRecord)}
}

func (c *clients) request(addr netip.AddrPort, req PadDataRequest, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.m[addr]
	if !ok {
		rec = &clientRecord{addr: addr, macs: make(map[[6]byte]time.Time)}
		c.m[addr] = rec
	}
	switch {
	case req.AllPads():
		rec.allPads = now
	default:
		if req.ByID() && req.ID < MaxPads {
			rec.padIDs[req.ID] = now
		}
		if req.ByMAC() {
			rec.macs[req.MAC] = now
		}
	}
}

func (c *clients) within(now, t time.Time) bool {
	return !t.IsZero() && now.Sub(t) < c.timeout
}

// live prunes expired subscriptions and returns the clients that want data
// for the pad described by meta.
func (c *clients) live(now time.Time, meta PadMeta) []netip.AddrPort {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []netip.AddrPort
	for addr, rec := range c.m {
		for mac, t := range rec.macs {
			if !c.within(now, t) {
				delete(rec.macs, mac)
			}
		}
		allPads := c.within(now, rec.allPads)
		anyID := false
		for _, t := range rec.padIDs {
			anyID = anyID || c.within(now, t)
		}
		if !allPads && !anyID && len(rec.macs) == 0 {
			delete(c.m, addr)
			continue
		}

		mt, ok := rec.macs[meta.MAC]
		if allPads || c.within(now, rec.padIDs[meta.ID]) || (ok && c.within(now, mt)) {
			out = append(out, addr)
		}
	}
	return out
}

func (c *clients) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *clients) list(now time.Time) []ClientInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ClientInfo, 0, len(c.m))
	for _, rec := range c.m {
		info := ClientInfo{
			Addr:     rec.addr.String(),
			AllPads:  c.within(now, rec.allPads),
			LastSeen: rec.allPads,
		}
		for id, t := range rec.padIDs {
			if c.within(now, t) {
				info.PadIDs = append(info.PadIDs, uint8(id))
			}
			if t.After(info.LastSeen) {
				info.LastSeen = t
			}
		}
		for _, t := range rec.macs {
			if c.within(now, t) {
				info.MACs++
			}
			if t.After(info.LastSeen) {
				info.LastSeen = t
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
