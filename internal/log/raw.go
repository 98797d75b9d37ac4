package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps controller reports as they leave the input manipulators.
type RawLogger interface {
	// Log writes one report. label names the port, e.g. "pad1" or "wiimote0".
	Log(frame uint64, label string, data []byte)
}

// NewRaw returns a RawLogger writing to w. A nil writer discards everything.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawLogger{w: w}
}

type nopRaw struct{}

func (nopRaw) Log(uint64, string, []byte) {}

type rawLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *rawLogger) Log(frame uint64, label string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "%s frame=%d %-8s % x\n", time.Now().Format("15:04:05.000000"), frame, label, data)
}
