package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrWrongDirection is returned when a frame carries the reader's own
// direction tag, i.e. it was reflected back.
var ErrWrongDirection = errors.New("auth: frame direction mismatch")

const (
	dirClient byte = 'C'
	dirServer byte = 'S'
)

// Conn encrypts every Write as one length-prefixed ChaCha20-Poly1305 frame.
// Nonces are a direction tag followed by a per-direction counter, so the two
// sides never share a nonce under the same session key.
type Conn struct {
	net.Conn
	aead    cipher.AEAD
	self    byte
	peer    byte
	sendCtr uint64
	recvBuf bytes.Buffer
	mu      sync.Mutex
}

const maxPacketSize = 2 * 1024 * 1024 // 2 MB

func WrapConn(conn net.Conn, sessionKey []byte, client bool) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	c := &Conn{Conn: conn, aead: aead, self: dirServer, peer: dirClient}
	if client {
		c.self, c.peer = dirClient, dirServer
	}
	return c, nil
}

func (s *Conn) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	nonce[0] = s.self
	binary.BigEndian.PutUint64(nonce[4:], s.sendCtr)
	s.sendCtr++

	frame := make([]byte, 4, 4+len(nonce)+len(p)+s.aead.Overhead())
	frame = append(frame, nonce...)
	frame = s.aead.Seal(frame, nonce, p, nil)
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))

	if i, err := s.Conn.Write(frame); err != nil {
		return i, err
	}
	return len(p), nil
}

func (s *Conn) Read(p []byte) (int, error) {
	if s.recvBuf.Len() == 0 {
		var hdr [4]byte
		if i, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
			return i, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxPacketSize || length < chacha20poly1305.NonceSize {
			return 0, io.ErrUnexpectedEOF
		}

		pkt := make([]byte, length)
		if i, err := io.ReadFull(s.Conn, pkt); err != nil {
			return i, err
		}

		nonce := pkt[:chacha20poly1305.NonceSize]
		if nonce[0] != s.peer {
			return 0, ErrWrongDirection
		}
		pt, err := s.aead.Open(nil, nonce, pkt[chacha20poly1305.NonceSize:], nil)
		if err != nil {
			return 0, err
		}

		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}
