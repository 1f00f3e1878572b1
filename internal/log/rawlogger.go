package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps binary packets and reports as hex lines.
type RawLogger interface {
	// Log records data seen on channel. in=true means received by padmotion,
	// in=false means sent.
	Log(channel string, in bool, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If w is nil, the logger discards
// everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

func (r *rawLogger) Log(channel string, in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "->"
	if in {
		dir = "<-"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		channel,
		dir,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
