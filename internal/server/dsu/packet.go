package dsu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

const (
	// MaxProtocolVersion is the highest protocol version the server accepts
	// and the version it answers with.
	MaxProtocolVersion = 1001

	// HeaderSize is the size of the packet header.
	HeaderSize = 16
	// minPacketSize is a header plus a message type.
	minPacketSize = HeaderSize + 4
)

// Message types. Requests and responses share the same value.
const (
	MsgVersion   uint32 = 0x100000
	MsgListPorts uint32 = 0x100001
	MsgPadData   uint32 = 0x100002
)

var (
	MagicClient = [4]byte{'D', 'S', 'U', 'C'}
	MagicServer = [4]byte{'D', 'S', 'U', 'S'}
)

var (
	ErrShortPacket = errors.New("dsu: packet too short")
	ErrBadMagic    = errors.New("dsu: bad magic")
	ErrBadVersion  = errors.New("dsu: unsupported protocol version")
	ErrBadLength   = errors.New("dsu: bad payload length")
	ErrBadCRC      = errors.New("dsu: crc mismatch")
)

// Header is the fixed packet header. All fields are little endian on the
// wire.
type Header struct {
	Magic      [4]byte
	Version    uint16
	PayloadLen uint16
	CRC        uint32
	ID         uint32
}

// Packet is a validated packet.
type Packet struct {
	Header
	Type uint32
	// Payload is the message body after the type field.
	Payload []byte
}

// ParsePacket validates a client packet. Bytes past the declared payload
// length are ignored.
func ParsePacket(b []byte) (*Packet, error) {
	return Decode(b, MagicClient)
}

// Decode validates a packet with the given magic.
func Decode(b []byte, magic [4]byte) (*Packet, error) {
	if len(b) < minPacketSize {
		return nil, ErrShortPacket
	}
	var h Header
	copy(h.Magic[:], b[0:4])
	if h.Magic != magic {
		return nil, ErrBadMagic
	}
	h.Version = binary.LittleEndian.Uint16(b[4:6])
	if h.Version > MaxProtocolVersion {
		return nil, ErrBadVersion
	}
	h.PayloadLen = binary.LittleEndian.Uint16(b[6:8])
	total := int(h.PayloadLen) + HeaderSize
	if h.PayloadLen < 4 || total > len(b) {
		return nil, ErrBadLength
	}
	b = b[:total]

	h.CRC = binary.LittleEndian.Uint32(b[8:12])
	if checksum(b) != h.CRC {
		return nil, ErrBadCRC
	}
	h.ID = binary.LittleEndian.Uint32(b[12:16])

	return &Packet{
		Header:  h,
		Type:    binary.LittleEndian.Uint32(b[16:20]),
		Payload: b[20:],
	}, nil
}

// Verify checks the length and crc fields of a complete packet.
func Verify(b []byte) error {
	if len(b) < HeaderSize {
		return ErrShortPacket
	}
	if int(binary.LittleEndian.Uint16(b[6:8]))+HeaderSize != len(b) {
		return ErrBadLength
	}
	if checksum(b) != binary.LittleEndian.Uint32(b[8:12]) {
		return ErrBadCRC
	}
	return nil
}

// Encode builds a complete packet from a message type and payload.
func Encode(magic [4]byte, id uint32, msgType uint32, payload []byte) []byte {
	b := make([]byte, minPacketSize+len(payload))
	writeHeader(b, magic, id)
	binary.LittleEndian.PutUint32(b[16:20], msgType)
	copy(b[20:], payload)
	seal(b)
	return b
}

func writeHeader(b []byte, magic [4]byte, id uint32) {
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint16(b[4:6], MaxProtocolVersion)
	binary.LittleEndian.PutUint32(b[12:16], id)
}

// seal fills in the payload length and crc of a complete packet.
func seal(b []byte) {
	binary.LittleEndian.PutUint16(b[6:8], uint16(len(b)-HeaderSize))
	binary.LittleEndian.PutUint32(b[8:12], 0)
	binary.LittleEndian.PutUint32(b[8:12], crc32.ChecksumIEEE(b))
}

// checksum computes the crc of b as if its crc field were zero.
func checksum(b []byte) uint32 {
	var zero [4]byte
	c := crc32.Update(0, crc32.IEEETable, b[:8])
	c = crc32.Update(c, crc32.IEEETable, zero[:])
	return crc32.Update(c, crc32.IEEETable, b[12:])
}
