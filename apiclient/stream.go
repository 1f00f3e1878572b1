package apiclient

import (
	"bufio"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	apitypes "github.com/padmotion/padmotion/apitypes"
)

// Stream is an open stream connection. The server answers the open request
// with one StreamOpenResponse line, after which the stream's own framing
// applies.
type Stream struct {
	conn    net.Conn
	r       *bufio.Reader
	Session string
	Name    string
	closed  atomic.Bool
}

// OpenStream connects to the stream at path.
func (c *Client) OpenStream(ctx context.Context, path string) (*Stream, error) {
	t := c.transport
	if t.mock != nil {
		return nil, errors.New("stream connections not supported with mock transport")
	}
	conn, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(strings.ToLower(path) + "\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read stream open: %w", err)
	}
	open, err := parse[apitypes.StreamOpenResponse](strings.TrimSuffix(line, "\n"))
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return &Stream{conn: conn, r: r, Session: open.Session, Name: open.Stream}, nil
}

// OpenInputStream opens the stream that accepts binary controller frames.
func (c *Client) OpenInputStream(ctx context.Context) (*Stream, error) {
	return c.OpenStream(ctx, "stream/input")
}

// OpenSensorStream opens the stream of JSON sensor readouts.
func (c *Client) OpenSensorStream(ctx context.Context) (*Stream, error) {
	return c.OpenStream(ctx, "stream/sensor")
}

// Write sends raw bytes on the stream.
func (s *Stream) Write(data []byte) (int, error) {
	if s.closed.Load() {
		return 0, errors.New("stream closed")
	}
	return s.conn.Write(data)
}

// WriteBinary marshals v and writes it, e.g. a *controller.Frame.
func (s *Stream) WriteBinary(v encoding.BinaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.Write(data)
	return err
}

// Read receives raw bytes from the stream.
func (s *Stream) Read(buf []byte) (int, error) {
	if s.closed.Load() {
		return 0, errors.New("stream closed")
	}
	return s.r.Read(buf)
}

// ReadReadout decodes the next line of a sensor stream.
func (s *Stream) ReadReadout() (*apitypes.SensorReadout, error) {
	if s.closed.Load() {
		return nil, errors.New("stream closed")
	}
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var out apitypes.SensorReadout
	if err := json.Unmarshal(line, &out); err != nil {
		return nil, fmt.Errorf("decode readout: %w", err)
	}
	return &out, nil
}

// SetDeadline sets read and write deadlines on the underlying connection.
func (s *Stream) SetDeadline(t time.Time) error { return s.conn.SetDeadline(t) }

// Close closes the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}
