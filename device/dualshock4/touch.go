package dualshock4

import (
	"math"
	"sync"

	"github.com/padmotion/padmotion/controller"
)

// Pad selects one of the two touch points.
type Pad int

const (
	PadLeft Pad = iota
	PadRight
)

type trackedTouch struct {
	active   bool
	tracking uint8
	x, y     uint16
}

func (t *trackedTouch) down(id uint8) {
	t.tracking = id & TouchIDMask
	t.active = true
}

func (t *trackedTouch) up() {
	t.tracking |= TouchInactiveMask
	t.active = false
}

// Touch tracks the two virtual touchpad fingers from either the pad buttons
// and axes of the controller state or pointer events. It is safe for
// concurrent use.
type Touch struct {
	mu      sync.Mutex
	pads    [2]trackedTouch
	seq     uint8
	packet  uint8
	click   bool
	pointer [2]bool

	prevTouch [2]bool
	prevClick bool
}

// NewTouch returns a tracker with both fingers up.
func NewTouch() *Touch {
	t := &Touch{}
	t.pads[PadLeft].tracking = touch0ID | TouchInactiveMask
	t.pads[PadRight].tracking = touch1ID | TouchInactiveMask
	return t
}

// Update advances the tracker from s and writes the touch fields of s.
func (t *Touch) Update(s *controller.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.updatePad(PadLeft, s.Pressed(controller.ButtonLeftPadTouch),
		s.Axis(controller.AxisLeftPadX), s.Axis(controller.AxisLeftPadY))
	t.updatePad(PadRight, s.Pressed(controller.ButtonRightPadTouch),
		s.Axis(controller.AxisRightPadX), s.Axis(controller.AxisRightPadY))

	click := s.Pressed(controller.ButtonLeftPadClick) || s.Pressed(controller.ButtonRightPadClick)
	if click != t.prevClick {
		t.click = click
		t.prevClick = click
	}

	for i, p := range t.pads {
		s.Touch[i] = controller.TouchPoint{
			Active:     p.active,
			TrackingID: p.tracking,
			X:          p.x,
			Y:          p.y,
		}
	}
	s.TouchPacket = t.packet
	s.TouchClick = t.click
}

func (t *Touch) updatePad(pad Pad, touching bool, ax, ay int16) {
	p := &t.pads[pad]
	if touching != t.prevTouch[pad] {
		t.prevTouch[pad] = touching
		if touching {
			t.packet++
			p.down(t.nextID())
		} else if !t.pointer[pad] {
			p.up()
		}
	}
	if touching {
		p.x = uint16((int(ax) + math.MaxInt16) * TouchpadWidth / math.MaxUint16)
		p.y = uint16((-int(ay) + math.MaxInt16) * TouchpadHeight / math.MaxUint16)
	}
}

// PointerDown starts a touch at normalized x, y in 0..1. A double tap also
// presses the touchpad button.
func (t *Touch) PointerDown(pad Pad, x, y float64, doubleTap bool) {
	if pad != PadLeft && pad != PadRight {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.pads[pad]
	p.x, p.y = scalePointer(x, y)
	p.down(t.nextID())
	t.pointer[pad] = true
	if doubleTap {
		t.click = true
	}
	t.packet++
}

// PointerMove moves an active touch.
func (t *Touch) PointerMove(pad Pad, x, y float64) {
	if pad != PadLeft && pad != PadRight {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.pads[pad]
	p.x, p.y = scalePointer(x, y)
}

// PointerUp lifts a touch and releases the touchpad button.
func (t *Touch) PointerUp(pad Pad, x, y float64) {
	if pad != PadLeft && pad != PadRight {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.pads[pad]
	p.x, p.y = scalePointer(x, y)
	p.up()
	t.pointer[pad] = false
	t.click = false
}

// nextID returns the next tracking id. Ids are 7 bit and wrap.
func (t *Touch) nextID() uint8 {
	t.seq = (t.seq + 1) & TouchIDMask
	return t.seq
}

func scalePointer(x, y float64) (uint16, uint16) {
	return scaleUnit(x, TouchpadWidth), scaleUnit(y, TouchpadHeight)
}

func scaleUnit(v float64, size int) uint16 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	n := v * float64(size)
	if n > float64(size-1) {
		return uint16(size - 1)
	}
	return uint16(n)
}
