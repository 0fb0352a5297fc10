package audio

import "sync/atomic"

const nanosPerSecond = 1_000_000_000

// Anchor is the audio clock: a start timestamp plus the number of frames
// emitted since then, at the current sample rate.
//
// Every field is an independent atomic. Readers on the pacing worker may see
// a half-updated pair during a reconfiguration; the pacing loop recomputes
// its target each iteration, so such a race only shifts one chunk.
type Anchor struct {
	started  atomic.Bool
	start    atomic.Uint64
	frames   atomic.Uint64
	rate     atomic.Uint32
	channels atomic.Uint32
}

// NewAnchor returns an unstarted anchor for the given format.
func NewAnchor(rate, channels uint32) *Anchor {
	a := &Anchor{}
	a.rate.Store(rate)
	a.channels.Store(channels)
	return a
}

// Format returns the cached sample rate and channel count.
func (a *Anchor) Format() (rate, channels uint32) {
	return a.rate.Load(), a.channels.Load()
}

// SetFormat replaces the cached format without touching the timeline.
func (a *Anchor) SetFormat(rate, channels uint32) {
	if rate > 0 {
		a.rate.Store(rate)
	}
	if channels > 0 {
		a.channels.Store(channels)
	}
}

// Started reports whether a video frame has anchored the timeline.
func (a *Anchor) Started() bool {
	return a.started.Load()
}

// StartAt anchors the timeline at ts unless it is already anchored.
func (a *Anchor) StartAt(ts uint64) bool {
	if a.started.Load() {
		return false
	}
	a.start.Store(ts)
	a.frames.Store(0)
	a.started.Store(true)
	return true
}

// Reset invalidates the anchor; the next video frame starts a fresh one.
func (a *Anchor) Reset() {
	a.started.Store(false)
	a.start.Store(0)
	a.frames.Store(0)
}

// Start returns the anchor timestamp.
func (a *Anchor) Start() uint64 {
	return a.start.Load()
}

// Frames returns the frames emitted since the anchor.
func (a *Anchor) Frames() uint64 {
	return a.frames.Load()
}

// Advance records n more emitted frames.
func (a *Anchor) Advance(n uint64) {
	a.frames.Add(n)
}

// Timestamp is the presentation time of the next frame to emit.
func (a *Anchor) Timestamp() uint64 {
	return a.start.Load() + framesToNanos(a.frames.Load(), a.rate.Load())
}

// Reconfigure switches to a new format. A started anchor is projected forward
// to the timestamp of the next frame and the frame count restarts at zero, so
// timestamps never run backward across the switch. It reports whether the
// format actually changed.
func (a *Anchor) Reconfigure(rate, channels uint32) bool {
	oldRate, oldChannels := a.Format()
	if rate == 0 {
		rate = oldRate
	}
	if channels == 0 {
		channels = oldChannels
	}
	if rate == oldRate && channels == oldChannels {
		return false
	}

	if a.started.Load() {
		a.start.Store(a.Timestamp())
		a.frames.Store(0)
	}
	a.rate.Store(rate)
	a.channels.Store(channels)
	return true
}

// framesToNanos converts a frame count without overflowing for long sessions.
func framesToNanos(frames uint64, rate uint32) uint64 {
	if rate == 0 {
		return 0
	}
	r := uint64(rate)
	return frames/r*nanosPerSecond + frames%r*nanosPerSecond/r
}

// nanosToFrames is the inverse of framesToNanos, rounding down.
func nanosToFrames(nanos uint64, rate uint32) uint64 {
	r := uint64(rate)
	return nanos/nanosPerSecond*r + nanos%nanosPerSecond*r/nanosPerSecond
}
