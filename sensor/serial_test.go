package sensor

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type fakePort struct {
	in      *bytes.Reader
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.in == nil {
		return 0, io.EOF
	}
	return p.in.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func frame(vals ...int16) []byte {
	f := []byte{0xA4, 0x03, 0x08, 0x12}
	for _, v := range vals {
		f = binary.BigEndian.AppendUint16(f, uint16(v))
	}
	for len(f) < frameLen-1 {
		f = append(f, 0)
	}
	return append(f, 0)
}

func TestDecodeFrame(t *testing.T) {
	r := decodeFrame(frame(2048, -2048, 4096, 16384, 0, -16384))
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: -1}, r.Accel)
	assert.Equal(t, r3.Vec{X: 1000, Y: -1000, Z: 0}, r.Gyro)
}

func TestSerialPlacement(t *testing.T) {
	f := frame(2048, 2048, 2048, 16384, 16384, 16384)
	tests := []struct {
		placement Placement
		upside    bool
		accel     r3.Vec
		gyro      r3.Vec
	}{
		{PlacementTop, false, r3.Vec{X: -1, Y: 1, Z: 1}, r3.Vec{X: 1000, Y: 1000, Z: 1000}},
		{PlacementTop, true, r3.Vec{X: -1, Y: -1, Z: 1}, r3.Vec{X: -1000, Y: -1000, Z: 1000}},
		{PlacementBottom, false, r3.Vec{X: 1, Y: 1, Z: -1}, r3.Vec{X: -1000, Y: 1000, Z: -1000}},
		{PlacementLeft, false, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 1000, Y: 1000, Z: 1000}},
		{PlacementRight, true, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 1000, Y: 1000, Z: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.placement.String(), func(t *testing.T) {
			s := NewSerial(&fakePort{}, tt.placement, tt.upside, false, nil)
			require.NoError(t, s.feed(f))
			r, _, ok := s.Read()
			require.True(t, ok)
			assert.Equal(t, tt.accel, r.Accel)
			assert.Equal(t, tt.gyro, r.Gyro)
		})
	}
}

func TestSerialRequestsRegisters(t *testing.T) {
	p := &fakePort{}
	s := NewSerial(p, PlacementLeft, false, false, nil)

	require.NoError(t, s.feed([]byte{0xA4, 0x03, 0x10, 0x04, 1, 2, 3, 4, 5}))
	assert.Equal(t, cmdReadRegisters, p.written.Bytes())
	_, _, ok := s.Read()
	assert.False(t, ok)
}

func TestSerialFramesAcrossReads(t *testing.T) {
	p := &fakePort{}
	s := NewSerial(p, PlacementLeft, false, true, nil)
	at := time.Unix(5, 0)
	s.now = func() time.Time { return at }

	f := frame(2048)
	require.NoError(t, s.feed(append([]byte{0x00, 0xFF}, f[:10]...)))
	assert.Equal(t, uint64(0), s.Count())

	require.NoError(t, s.feed(append(f[10:], frame(4096)...)))
	assert.Equal(t, uint64(2), s.Count())

	r, gotAt, ok := s.Read()
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Accel.X)
	assert.Equal(t, at, gotAt)

	// calibration goes out once, before the first frame is used
	assert.Equal(t, append(append([]byte(nil), cmdCalibrate...), cmdSaveConfig...), p.written.Bytes())
}

func TestSerialRunUntilEOF(t *testing.T) {
	p := &fakePort{in: bytes.NewReader(append(frame(2048), frame(4096)...))}
	s := NewSerial(p, PlacementLeft, false, false, nil)

	require.NoError(t, s.Run())
	r, _, ok := s.Read()
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Accel.X)
	require.NoError(t, s.Close())
	assert.True(t, p.closed)
}

func TestParsePlacement(t *testing.T) {
	p, err := ParsePlacement("Bottom")
	require.NoError(t, err)
	assert.Equal(t, PlacementBottom, p)

	_, err = ParsePlacement("front")
	assert.Error(t, err)
}
