package controller

import (
	"encoding/binary"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FrameSize is the encoded size of a Frame.
const FrameSize = 4 + 2*int(AxisCount) + 4*6 + 1

// Frame is the binary input record a host pushes over the input stream:
// buttons u32, the axes as i16, accel (g) and gyro (deg/s) as float32 x3 and
// the battery byte. All fields are little endian.
type Frame struct {
	Buttons Button
	Axes    [AxisCount]int16
	Accel   [3]float32
	Gyro    [3]float32
	Battery Battery
}

func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(f.Buttons))
	off := 4
	for _, v := range f.Axes {
		binary.LittleEndian.PutUint16(b[off:off+2], uint16(v))
		off += 2
	}
	for _, v := range f.Accel {
		binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v))
		off += 4
	}
	for _, v := range f.Gyro {
		binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v))
		off += 4
	}
	b[off] = uint8(f.Battery)
	return b, nil
}

func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return io.ErrUnexpectedEOF
	}
	f.Buttons = Button(binary.LittleEndian.Uint32(data[0:4]))
	off := 4
	for i := range f.Axes {
		f.Axes[i] = int16(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
	}
	for i := range f.Accel {
		f.Accel[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	for i := range f.Gyro {
		f.Gyro[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	f.Battery = Battery(data[off])
	return nil
}

// AccelVec returns the acceleration as a vector in g.
func (f *Frame) AccelVec() r3.Vec {
	return r3.Vec{X: float64(f.Accel[0]), Y: float64(f.Accel[1]), Z: float64(f.Accel[2])}
}

// GyroVec returns the angular velocity as a vector in deg/s.
func (f *Frame) GyroVec() r3.Vec {
	return r3.Vec{X: float64(f.Gyro[0]), Y: float64(f.Gyro[1]), Z: float64(f.Gyro[2])}
}
