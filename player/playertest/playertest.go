// Package playertest provides a scripted in-memory engine for tests.
package playertest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mpvsource/mpvsource/player"
)

var (
	_ player.Handle        = (*Handle)(nil)
	_ player.RenderContext = (*Renderer)(nil)
)

// Handle records everything sent to it and serves property reads from a map.
// Events are scripted with Emit; OnCommand can react to commands, e.g. by
// emitting file-loaded after a loadfile.
type Handle struct {
	mu sync.Mutex

	Options     map[string]string
	Initialized bool
	Destroyed   bool
	Commands    [][]string
	Sets        []Set
	Observed    map[int]string
	LogLevel    string

	Props map[string]any

	// InitErr is returned by Initialize when set.
	InitErr error
	// RenderErr is returned by NewRenderContext when set.
	RenderErr error
	// OnCommand is invoked, without the lock held, after every command.
	OnCommand func(h *Handle, args []string)

	events []player.Event
	wakeup func()

	Renderer *Renderer
}

// Set is one recorded property write.
type Set struct {
	Name  string
	Value any
}

// New returns an empty scripted handle.
func New() *Handle {
	return &Handle{
		Options:  make(map[string]string),
		Observed: make(map[int]string),
		Props:    make(map[string]any),
		Renderer: &Renderer{},
	}
}

// Factory returns a player.Factory yielding h.
func Factory(h *Handle) player.Factory {
	return func() (player.Handle, error) { return h, nil }
}

func (h *Handle) SetOption(name, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Initialized {
		return errors.New("already initialized")
	}
	h.Options[name] = value
	return nil
}

func (h *Handle) Initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.InitErr != nil {
		return h.InitErr
	}
	h.Initialized = true
	return nil
}

func (h *Handle) Command(args ...string) error {
	h.record(args)
	return nil
}

func (h *Handle) CommandAsync(args ...string) error {
	h.record(args)
	return nil
}

func (h *Handle) record(args []string) {
	h.mu.Lock()
	h.Commands = append(h.Commands, append([]string(nil), args...))
	cb := h.OnCommand
	h.mu.Unlock()
	if cb != nil {
		cb(h, args)
	}
}

func (h *Handle) SetProperty(name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Sets = append(h.Sets, Set{Name: name, Value: value})
	h.Props[name] = value
	return nil
}

func (h *Handle) GetProperty(name string) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.Props[name]
	if !ok {
		return nil, player.ErrPropertyUnavailable
	}
	return v, nil
}

func (h *Handle) ObserveProperty(id int, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Observed[id] = name
	return nil
}

func (h *Handle) RequestLogMessages(level string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LogLevel = level
	return nil
}

func (h *Handle) WaitEvent(_ time.Duration) player.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return player.Event{ID: player.EventNone}
	}
	ev := h.events[0]
	h.events = h.events[1:]
	return ev
}

func (h *Handle) SetWakeupCallback(cb func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wakeup = cb
}

func (h *Handle) NewRenderContext() (player.RenderContext, error) {
	if h.RenderErr != nil {
		return nil, h.RenderErr
	}
	return h.Renderer, nil
}

func (h *Handle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Destroyed = true
}

// Emit queues events and fires the wakeup callback.
func (h *Handle) Emit(events ...player.Event) {
	h.mu.Lock()
	h.events = append(h.events, events...)
	cb := h.wakeup
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// SetProp sets a property value without recording it as a write.
func (h *Handle) SetProp(name string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Props[name] = value
}

// Prop returns the current property value.
func (h *Handle) Prop(name string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Props[name]
}

// CommandLines returns the recorded commands joined by spaces.
func (h *Handle) CommandLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.Commands))
	for i, c := range h.Commands {
		out[i] = strings.Join(c, " ")
	}
	return out
}

// LastCommand returns the most recent command line, or an empty string.
func (h *Handle) LastCommand() string {
	lines := h.CommandLines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// Reset clears recorded commands and property writes.
func (h *Handle) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Commands = nil
	h.Sets = nil
}

// Renderer is a scripted render context.
type Renderer struct {
	mu sync.Mutex

	Ready   bool
	Err     error
	Renders int
	LastW   int
	LastH   int
	Freed   bool
	update  func()
}

func (r *Renderer) SetUpdateCallback(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.update = cb
}

func (r *Renderer) Update() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ready := r.Ready
	r.Ready = false
	return ready
}

// Render fills buf with a recognisable pattern.
func (r *Renderer) Render(w, h, stride int, buf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Renders++
	r.LastW, r.LastH = w, h
	for i := 0; i < stride*h && i < len(buf); i++ {
		buf[i] = byte(r.Renders)
	}
	return nil
}

func (r *Renderer) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Freed = true
}

// FrameReady marks a frame as ready and fires the update callback.
func (r *Renderer) FrameReady() {
	r.mu.Lock()
	r.Ready = true
	cb := r.update
	r.mu.Unlock()
	if cb != nil {
		cb()
	}
}
