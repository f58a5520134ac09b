// Package frame abstracts the emulator a Loop Coordinator drives: frame
// capture, button input, and lifecycle/state commands. The interface shape
// follows the pack's adapter-around-an-external-process idiom; the emulator
// process itself is an out-of-scope external collaborator.
package frame

import (
	"context"
	"errors"
	"time"
)

// #region errors

// ErrFrameUnavailable is transient; callers back off 2s and retry.
var ErrFrameUnavailable = errors.New("frame: unavailable")

// ErrAdapterLost is terminal; callers move the agent to the error state.
var ErrAdapterLost = errors.New("frame: adapter lost")

// ErrUnsupported is returned by ReadMemory when the backing emulator does
// not expose direct memory access.
var ErrUnsupported = errors.New("frame: unsupported operation")

// #endregion errors

// #region types

// Frame is one captured screen image.
type Frame struct {
	ImageBase64 string
	Timestamp   time.Time
}

// MinFrameBytes is the smallest a decoded capture may be before it is
// treated as a corrupt/empty capture rather than a real frame.
const MinFrameBytes = 1024

// #endregion types

// #region source

// Source abstracts the emulator's frame capture, input, and lifecycle
// surface. Implementations must serialize PressAndRelease calls relative to
// each other; Capture may run concurrently with them.
type Source interface {
	Capture(ctx context.Context) (Frame, error)
	PressAndRelease(ctx context.Context, button string, holdMs int) error
	SetVolume(ctx context.Context, level float32) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	SaveState(ctx context.Context) ([]byte, error)
	LoadState(ctx context.Context, data []byte) error
	ReadMemory(ctx context.Context, addr uint32, length int) ([]byte, error)
}

// #endregion source

// #region between-step-delay

// BetweenStepDelay is the pause enforced between successive PressAndRelease
// calls within one executed button sequence.
const BetweenStepDelay = 500 * time.Millisecond

// UnavailableBackoff is how long a caller waits before retrying a capture
// after ErrFrameUnavailable.
const UnavailableBackoff = 2 * time.Second

// #endregion between-step-delay
