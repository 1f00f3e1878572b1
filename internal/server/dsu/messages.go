package dsu

import (
	"encoding/binary"
	"math"

	"github.com/padmotion/padmotion/controller"
)

// MaxPads is the number of pad slots a server announces.
const MaxPads = 4

// PadDataSize is the size of a complete pad data response.
const PadDataSize = 100

type PadState uint8

const (
	PadDisconnected PadState = 0
	PadReserved     PadState = 1
	PadConnected    PadState = 2
)

type Model uint8

const (
	ModelNone Model = 0
	ModelDS3  Model = 1
	ModelDS4  Model = 2
)

type Connection uint8

const (
	ConnectionNone      Connection = 0
	ConnectionUSB       Connection = 1
	ConnectionBluetooth Connection = 2
)

// Flags of a pad data request.
const (
	flagPadID = 1 << 0
	flagMAC   = 1 << 1
)

// PadMeta describes one pad slot.
type PadMeta struct {
	ID         uint8
	State      PadState
	Model      Model
	Connection Connection
	MAC        [6]byte
	Battery    controller.Battery
}

// padMeta returns the slot description. Only slot 0 carries a device.
func padMeta(id uint8, battery controller.Battery) PadMeta {
	m := PadMeta{
		ID:         id,
		State:      PadDisconnected,
		Model:      ModelDS4,
		Connection: ConnectionUSB,
		Battery:    battery,
	}
	if id == 0 {
		m.State = PadConnected
	}
	for i := range m.MAC {
		m.MAC[i] = 0x10 + id
	}
	return m
}

// put writes the 11 byte meta block: id, state, model, connection, mac,
// battery.
func (m PadMeta) put(b []byte) {
	b[0] = m.ID
	b[1] = byte(m.State)
	b[2] = byte(m.Model)
	b[3] = byte(m.Connection)
	copy(b[4:10], m.MAC[:])
	b[10] = byte(m.Battery)
}

// PadDataRequest is the body of a pad data subscription.
type PadDataRequest struct {
	Flags uint8
	ID    uint8
	MAC   [6]byte
}

func (r PadDataRequest) AllPads() bool { return r.Flags == 0 }
func (r PadDataRequest) ByID() bool    { return r.Flags&flagPadID != 0 }
func (r PadDataRequest) ByMAC() bool   { return r.Flags&flagMAC != 0 }

func parsePadDataRequest(payload []byte) (PadDataRequest, bool) {
	var r PadDataRequest
	if len(payload) < 8 {
		return r, false
	}
	r.Flags = payload[0]
	r.ID = payload[1]
	copy(r.MAC[:], payload[2:8])
	return r, true
}

// parseListPorts returns the requested slot indices, or false when the
// request is malformed.
func parseListPorts(payload []byte) ([]uint8, bool) {
	if len(payload) < 4 {
		return nil, false
	}
	n := int32(binary.LittleEndian.Uint32(payload[0:4]))
	if n < 0 || n > MaxPads || len(payload) < 4+int(n) {
		return nil, false
	}
	ids := make([]uint8, n)
	for i := range ids {
		id := payload[4+i]
		if id >= MaxPads {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func versionPayload() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], MaxProtocolVersion)
	return b
}

func portInfoPayload(m PadMeta) []byte {
	b := make([]byte, 12)
	m.put(b)
	return b
}

// buildPadData fills b (PadDataSize bytes) with a pad data response for
// slot 0. The header crc is left for seal.
func buildPadData(b []byte, id uint32, meta PadMeta, counter uint32, s *controller.Snapshot) {
	clear(b)
	writeHeader(b, MagicServer, id)
	binary.LittleEndian.PutUint32(b[16:20], MsgPadData)

	meta.put(b[20:31])
	b[31] = 1
	binary.LittleEndian.PutUint32(b[32:36], counter)

	st := &s.State
	b[36] = bits(st,
		controller.ButtonDPadLeft, controller.ButtonDPadDown, controller.ButtonDPadRight, controller.ButtonDPadUp,
		controller.ButtonStart, controller.ButtonRightStickClick, controller.ButtonLeftStickClick, controller.ButtonBack)
	b[37] = bits(st,
		controller.ButtonB3, controller.ButtonB1, controller.ButtonB2, controller.ButtonB4,
		controller.ButtonR1, controller.ButtonL1, 0, 0)
	r2, l2 := st.Trigger(controller.AxisR2), st.Trigger(controller.AxisL2)
	if r2 == 0xFF {
		b[37] |= 0x02
	}
	if l2 == 0xFF {
		b[37] |= 0x01
	}
	b[38] = flag(st.Pressed(controller.ButtonSpecial))
	b[39] = flag(st.Pressed(controller.ButtonLeftPadClick) || st.Pressed(controller.ButtonRightPadClick))

	b[40] = controller.NormalizeStick(st.Axis(controller.AxisLeftStickX))
	b[41] = 0xFF - controller.NormalizeStick(st.Axis(controller.AxisLeftStickY))
	b[42] = controller.NormalizeStick(st.Axis(controller.AxisRightStickX))
	b[43] = 0xFF - controller.NormalizeStick(st.Axis(controller.AxisRightStickY))

	for i, btn := range []controller.Button{
		controller.ButtonDPadLeft, controller.ButtonDPadDown, controller.ButtonDPadRight, controller.ButtonDPadUp,
		controller.ButtonB1, controller.ButtonB2, controller.ButtonB3, controller.ButtonB4,
		controller.ButtonR1, controller.ButtonL1,
	} {
		b[44+i] = analog(st.Pressed(btn))
	}
	b[54] = r2
	b[55] = l2

	for i, tp := range st.Touch {
		off := 56 + i*6
		b[off] = flag(tp.Active)
		b[off+1] = tp.TrackingID
		binary.LittleEndian.PutUint16(b[off+2:], tp.X)
		binary.LittleEndian.PutUint16(b[off+4:], tp.Y)
	}

	binary.LittleEndian.PutUint64(b[68:76], s.ElapsedMicros)
	putFloat(b[76:], st.Accel.X)
	putFloat(b[80:], st.Accel.Y)
	putFloat(b[84:], st.Accel.Z)
	putFloat(b[88:], st.Gyro.X)
	putFloat(b[92:], -st.Gyro.Y)
	putFloat(b[96:], -st.Gyro.Z)

	seal(b[:PadDataSize])
}

// bits packs up to eight buttons, most significant first. A zero button
// leaves its bit clear.
func bits(st *controller.State, btns ...controller.Button) byte {
	var v byte
	for i, btn := range btns {
		if btn != 0 && st.Pressed(btn) {
			v |= 0x80 >> i
		}
	}
	return v
}

func flag(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func analog(v bool) byte {
	if v {
		return 0xFF
	}
	return 0
}

func putFloat(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}
