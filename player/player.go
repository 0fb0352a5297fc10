// Package player defines the capability set of an external decode/render engine
// and implements it on top of mpv's JSON-IPC interface.
//
// The engine is controlled purely through named options, properties, commands
// and polled events. Callers never see media formats; they only read back the
// properties they need (dimensions, audio parameters, track lists).
package player

import (
	"errors"
	"time"
)

var (
	// ErrNotInitialized is returned by calls that require Initialize to have succeeded.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrClosed is returned once the handle has been destroyed.
	ErrClosed = errors.New("engine handle closed")
	// ErrTimeout is returned when a synchronous call receives no reply in time.
	ErrTimeout = errors.New("engine call timed out")
	// ErrPropertyUnavailable mirrors the engine refusing a property read (nothing loaded, etc).
	ErrPropertyUnavailable = errors.New("property unavailable")
)

// Handle encapsulates one instance of the decode engine.
//
// Options are set before Initialize; everything else afterwards. Property
// reads and synchronous commands are bounded by the implementation's timeout
// and are safe to call from the host's tick thread.
type Handle interface {
	// SetOption sets a startup option. Only valid before Initialize.
	SetOption(name, value string) error

	// Initialize starts the engine with the options set so far.
	Initialize() error

	// Command runs a command and waits for its reply.
	Command(args ...string) error

	// CommandAsync issues a command without waiting for it to complete.
	CommandAsync(args ...string) error

	// SetProperty writes a property. Accepted value types are string, bool, int, int64 and float64.
	SetProperty(name string, value any) error

	// GetProperty reads a property as a decoded JSON node (nil, bool, float64, string, []any, map[string]any).
	GetProperty(name string) (any, error)

	// ObserveProperty subscribes to change notifications delivered as EventPropertyChange.
	ObserveProperty(id int, name string) error

	// RequestLogMessages subscribes to engine log messages at or above level.
	RequestLogMessages(level string) error

	// WaitEvent returns the next pending event. A zero timeout polls and returns
	// an EventNone event immediately when the queue is empty.
	WaitEvent(timeout time.Duration) Event

	// SetWakeupCallback registers cb to be invoked, from an engine-owned
	// goroutine, whenever new events become available.
	SetWakeupCallback(cb func())

	// NewRenderContext creates a software render context bound to this handle.
	NewRenderContext() (RenderContext, error)

	// Destroy terminates the engine and releases all resources.
	Destroy()
}

// RenderContext produces BGRA frames into caller-supplied memory.
type RenderContext interface {
	// SetUpdateCallback registers cb to be invoked when a new frame may be ready.
	SetUpdateCallback(cb func())

	// Update reports whether a new frame is ready to be rendered.
	Update() bool

	// Render draws the current frame at w x h into buf using the given stride.
	// A non-nil error means nothing usable was written.
	Render(w, h, stride int, buf []byte) error

	// Free releases the context. It must be called before destroying the owning handle.
	Free()
}

// Factory creates a fresh, uninitialized handle.
type Factory func() (Handle, error)
