package emu

import "context"

// Host is the part of an emulation core a script run drives.
type Host interface {
	// Registry returns the core's manipulator registry.
	Registry() *Registry
	// Pause stops the frame pump after the current frame.
	Pause()
	// Resume restarts the frame pump. Resuming a running core is a no-op.
	Resume()
	// WaitFrame blocks until the next frame has been polled and returns its
	// number, or returns ctx's error.
	WaitFrame(ctx context.Context) (uint64, error)
	// FrameCount returns the number of frames polled so far.
	FrameCount() uint64
}
