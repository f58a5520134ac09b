package frame

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// #region fake

// FakeSource is an in-memory Source for tests and local runs without a real
// emulator attached. It records every press and returns a short synthetic
// frame whose payload embeds a per-call counter.
type FakeSource struct {
	mu       sync.Mutex
	presses  []string
	paused   bool
	volume   float32
	tick     int
	state    []byte
	unsupported bool
}

// NewFakeSource creates a fake frame source. If unsupportedMemory is true,
// ReadMemory always returns ErrUnsupported, matching emulators with no
// direct memory access.
func NewFakeSource(unsupportedMemory bool) *FakeSource {
	return &FakeSource{unsupported: unsupportedMemory}
}

// Capture returns a synthetic frame whose payload embeds a counter that
// advances on each call. The payload is shorter than the fingerprint's
// sampling stride, so heuristics.Fingerprint gives every capture the same
// value and visual-change classification sees no change between captures.
func (f *FakeSource) Capture(ctx context.Context) (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick++
	payload := fmt.Sprintf("fake-frame-%d-%s", f.tick, padding)
	return Frame{ImageBase64: payload, Timestamp: time.Now().UTC()}, nil
}

// PressAndRelease records the press; it never fails.
func (f *FakeSource) PressAndRelease(ctx context.Context, button string, holdMs int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presses = append(f.presses, button)
	return nil
}

// SetVolume records the requested level.
func (f *FakeSource) SetVolume(ctx context.Context, level float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

// Pause marks the source paused.
func (f *FakeSource) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

// Resume clears the paused flag.
func (f *FakeSource) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

// SaveState returns a deterministic snapshot of the fake's internal tick.
func (f *FakeSource) SaveState(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []byte(fmt.Sprintf("fake-state-%d", f.tick)), nil
}

// LoadState records data as the loaded snapshot; it does not change the tick
// that Capture and SaveState report.
func (f *FakeSource) LoadState(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = data
	return nil
}

// ReadMemory returns ErrUnsupported when configured to emulate a backend
// with no direct memory access, otherwise a zero-filled buffer.
func (f *FakeSource) ReadMemory(ctx context.Context, addr uint32, length int) ([]byte, error) {
	if f.unsupported {
		return nil, ErrUnsupported
	}
	return make([]byte, length), nil
}

// Presses returns every button pressed so far, for test assertions.
func (f *FakeSource) Presses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.presses))
	copy(out, f.presses)
	return out
}

// Paused reports whether Pause was called more recently than Resume.
func (f *FakeSource) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

const padding = "pad"

// #endregion fake
