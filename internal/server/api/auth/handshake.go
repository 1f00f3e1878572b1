package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/padmotion/padmotion/apitypes"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
)

// The client opens with HandshakeMagic, a NonceSize nonce and an HMAC proof
// of the password over that nonce. The server answers "OK\0" and its own
// nonce, or a problem+json line when the proof does not match.
const (
	HandshakeMagic = "PMA1\x00"
	NonceSize      = 32

	authContext = "padmotion-Auth-v1"
	handshakeOK = "OK\x00"
)

// Session is the outcome of a completed handshake.
type Session struct {
	ClientNonce []byte
	ServerNonce []byte
	Key         []byte
}

func newSession(key, clientNonce, serverNonce []byte) *Session {
	return &Session{
		ClientNonce: clientNonce,
		ServerNonce: serverNonce,
		Key:         DeriveSessionKey(key, serverNonce, clientNonce),
	}
}

// Wrap encrypts conn with the session key. client selects which side of the
// connection the caller is.
func (s *Session) Wrap(conn net.Conn, client bool) (net.Conn, error) {
	return WrapConn(conn, s.Key, client)
}

func proof(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

func newNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	if _, err := rand.Read(n); err != nil {
		return nil, err
	}
	return n, nil
}

// IsAuthHandshake reports whether r starts with HandshakeMagic without
// consuming it.
func IsAuthHandshake(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(HandshakeMagic))
	if err != nil {
		return false, err
	}
	return string(b) == HandshakeMagic, nil
}

// ServerHandshake reads the client's opening from r and answers on w. A
// wrong proof returns an Unauthorized ApiError and writes nothing.
func ServerHandshake(r *bufio.Reader, w io.Writer, key []byte) (*Session, error) {
	if len(key) == 0 {
		return nil, errors.New("handshake: missing key")
	}
	if w == nil {
		return nil, errors.New("handshake: nil writer")
	}
	if _, err := r.Discard(len(HandshakeMagic)); err != nil {
		return nil, fmt.Errorf("discard handshake magic: %w", err)
	}

	clientNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, fmt.Errorf("read client nonce: %w", err)
	}
	got := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, got); err != nil {
		return nil, fmt.Errorf("read client proof: %w", err)
	}
	if !hmac.Equal(got, proof(key, clientNonce)) {
		return nil, apierror.ErrUnauthorized("invalid password")
	}

	serverNonce, err := newNonce()
	if err != nil {
		return nil, fmt.Errorf("generate server nonce: %w", err)
	}
	if _, err := w.Write(append([]byte(handshakeOK), serverNonce...)); err != nil {
		return nil, fmt.Errorf("write handshake response: %w", err)
	}
	return newSession(key, clientNonce, serverNonce), nil
}

// ClientHandshake sends the opening on w and reads the server's answer from
// r. A rejected password comes back as an Unauthorized ApiError, whether the
// server explained itself or just hung up.
func ClientHandshake(r io.Reader, w io.Writer, key []byte) (*Session, error) {
	if len(key) == 0 {
		return nil, errors.New("handshake: missing key")
	}
	clientNonce, err := newNonce()
	if err != nil {
		return nil, fmt.Errorf("generate client nonce: %w", err)
	}

	msg := make([]byte, 0, len(HandshakeMagic)+NonceSize+sha256.Size)
	msg = append(msg, HandshakeMagic...)
	msg = append(msg, clientNonce...)
	msg = append(msg, proof(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	resp := make([]byte, len(handshakeOK))
	if _, err := io.ReadFull(r, resp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apierror.ErrUnauthorized("invalid password")
		}
		return nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(resp) != handshakeOK {
		return nil, rejection(resp, r)
	}

	serverNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, fmt.Errorf("read server nonce: %w", err)
	}
	return newSession(key, clientNonce, serverNonce), nil
}

// rejection turns a non OK answer into an error, preferring the server's
// problem+json body.
func rejection(prefix []byte, r io.Reader) error {
	rest, _ := io.ReadAll(r)
	line := strings.TrimSpace(string(append(prefix, rest...)))

	var apiErr apitypes.ApiError
	if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
		return &apiErr
	}
	return fmt.Errorf("invalid handshake response from server: %s", line)
}
