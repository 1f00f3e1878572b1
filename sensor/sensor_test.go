package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFeedRead(t *testing.T) {
	f := NewFeed()
	_, _, ok := f.Read()
	assert.False(t, ok)

	at := time.Unix(10, 0)
	f.now = func() time.Time { return at }
	r := Reading{Accel: r3.Vec{Y: -1}, Gyro: r3.Vec{X: 5}}
	f.Push(r)

	got, gotAt, ok := f.Read()
	assert.True(t, ok)
	assert.Equal(t, r, got)
	assert.Equal(t, at, gotAt)
	assert.Equal(t, uint64(1), f.Count())
}

func TestCentering(t *testing.T) {
	at := time.Unix(10, 0)
	f := NewFeed()
	f.now = func() time.Time { return at }
	c := NewCentering(f, 10*time.Millisecond)

	live, fixed := c.Read(at)
	assert.Equal(t, Reading{}, live)
	assert.Equal(t, Reading{}, fixed)

	r := Reading{Gyro: r3.Vec{X: 1, Y: 2, Z: 3}}
	f.Push(r)

	tests := []struct {
		after time.Duration
		fixed Reading
	}{
		{0, r},
		{60 * time.Millisecond, r},
		{61 * time.Millisecond, Reading{}},
		{time.Second, Reading{}},
	}
	for _, tt := range tests {
		live, fixed := c.Read(at.Add(tt.after))
		assert.Equal(t, r, live, "after %v", tt.after)
		assert.Equal(t, tt.fixed, fixed, "after %v", tt.after)
	}
}
