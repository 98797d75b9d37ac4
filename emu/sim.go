package emu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/padscript/device/gcpad"
	"github.com/Alia5/padscript/device/wiimote"
	"github.com/Alia5/padscript/internal/log"
	"github.com/Alia5/padscript/override"
)

type padPort struct {
	frames []gcpad.PadStatus
	next   int
	live   gcpad.PadStatus
	last   gcpad.PadStatus
}

func (p *padPort) poll() gcpad.PadStatus {
	if p.next < len(p.frames) {
		p.live = p.frames[p.next]
		p.next++
	}
	return p.live
}

type wiimoteReport struct {
	buttons uint16
	ext     [wiimote.ExtensionSize]byte
}

type wiimotePort struct {
	mode   byte
	rptf   wiimote.Features
	ext    wiimote.Extension
	key    wiimote.Key
	frames []wiimoteReport
	next   int
	cur    wiimoteReport
	last   []byte
}

// build assembles the raw report the hardware layer would deliver: header,
// core buttons and the extension bytes encrypted with the port key.
func (p *wiimotePort) build() []byte {
	if p.next < len(p.frames) {
		p.cur = p.frames[p.next]
		p.next++
	}
	data := make([]byte, p.rptf.Size)
	data[0], data[1] = 0xa1, p.mode
	v, err := p.rptf.Views(data)
	if err != nil {
		return data
	}
	if v.Core != nil {
		wiimote.SetCoreButtons(v.Core, p.cur.buttons)
	}
	if v.Ext != nil && p.ext != wiimote.ExtensionNone {
		n := copy(v.Ext, p.cur.ext[:])
		if p.ext == wiimote.ExtensionNunchuk {
			p.key.Encrypt(v.Ext[:n], 0)
		}
	}
	return data
}

// plaintext returns a copy of data with a Nunchuk extension region
// decrypted, for logging and inspection.
func (p *wiimotePort) plaintext(data []byte) []byte {
	out := append([]byte(nil), data...)
	if p.ext != wiimote.ExtensionNunchuk {
		return out
	}
	v, err := p.rptf.Views(out)
	if err != nil || v.Ext == nil {
		return out
	}
	p.key.Decrypt(v.Ext[:wiimote.ExtensionSize], 0)
	return out
}

// Sim is a deterministic stand-in for an emulation core. Each frame it
// polls every connected port through its Registry, the way the real core
// polls controllers mid-frame.
type Sim struct {
	registry Registry
	logger   *slog.Logger
	raw      log.RawLogger

	mu       sync.Mutex
	paused   bool
	resumed  chan struct{}
	frame    uint64
	frameC   chan struct{}
	pads     [override.NumSlots]*padPort
	wiimotes [override.NumSlots]*wiimotePort
}

// NewSim connects the ports listed in feed. A nil feed connects nothing.
func NewSim(feed *Feed, logger *slog.Logger, raw log.RawLogger) (*Sim, error) {
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	s := &Sim{
		logger:  logger,
		raw:     raw,
		resumed: make(chan struct{}),
		frameC:  make(chan struct{}),
	}
	close(s.resumed)
	if feed == nil {
		return s, nil
	}
	if err := feed.validate(); err != nil {
		return nil, err
	}
	for _, p := range feed.Pads {
		s.pads[p.Slot] = &padPort{frames: p.Frames, live: gcpad.Neutral(), last: gcpad.Neutral()}
	}
	for _, w := range feed.Wiimotes {
		port, err := w.port()
		if err != nil {
			return nil, err
		}
		s.wiimotes[w.Slot] = port
	}
	return s, nil
}

// Registry returns the manipulator registry polled by Step.
func (s *Sim) Registry() *Registry { return &s.registry }

// Pause makes Run skip frames until Resume.
func (s *Sim) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	s.paused = true
	s.resumed = make(chan struct{})
	s.logger.Debug("core paused", "frame", s.frame)
}

// Resume lets Run produce frames again.
func (s *Sim) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	close(s.resumed)
	s.logger.Debug("core resumed", "frame", s.frame)
}

// Paused reports whether the frame pump is stopped.
func (s *Sim) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// FrameCount returns the number of frames polled so far.
func (s *Sim) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// WaitFrame blocks until the next Step completes.
func (s *Sim) WaitFrame(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	c := s.frameC
	s.mu.Unlock()
	select {
	case <-c:
		return s.FrameCount(), nil
	case <-ctx.Done():
		return 0, context.Cause(ctx)
	}
}

// Step polls every connected port once, regardless of the pause gate, and
// wakes frame waiters.
func (s *Sim) Step() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

func (s *Sim) stepIfRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.step()
	}
}

func (s *Sim) step() uint64 {
	frame := s.frame + 1

	for slot, p := range s.pads {
		if p == nil {
			continue
		}
		status := p.poll()
		s.registry.ApplyPad(&status, slot)
		p.last = status
		if b, err := status.MarshalBinary(); err == nil {
			s.raw.Log(frame, fmt.Sprintf("pad%d", slot), b)
		}
	}
	for slot, w := range s.wiimotes {
		if w == nil {
			continue
		}
		data := w.build()
		s.registry.ApplyWiimote(data, w.rptf, slot, w.ext, w.key)
		w.last = w.plaintext(data)
		s.raw.Log(frame, fmt.Sprintf("wiimote%d", slot), w.last)
	}

	s.frame = frame
	close(s.frameC)
	s.frameC = make(chan struct{})
	return frame
}

// Run steps at fps frames per second while not paused, until ctx is done.
func (s *Sim) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	t := time.NewTicker(time.Second / time.Duration(fps))
	defer t.Stop()
	s.logger.Info("simulated core running", "fps", fps)
	for {
		s.mu.Lock()
		gate := s.resumed
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil
		case <-gate:
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.stepIfRunning()
		}
	}
}

// PadOutput returns the last report delivered to the game on a pad port.
func (s *Sim) PadOutput(slot int) (gcpad.PadStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot < 0 || slot >= override.NumSlots || s.pads[slot] == nil {
		return gcpad.PadStatus{}, false
	}
	return s.pads[slot].last, true
}

// WiimoteOutput returns the last raw report delivered on a Wiimote port,
// with a Nunchuk extension region decrypted.
func (s *Sim) WiimoteOutput(slot int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot < 0 || slot >= override.NumSlots || s.wiimotes[slot] == nil || s.wiimotes[slot].last == nil {
		return nil, false
	}
	return append([]byte(nil), s.wiimotes[slot].last...), true
}

var _ Host = (*Sim)(nil)
