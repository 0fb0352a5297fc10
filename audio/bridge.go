// Package audio bridges the engine's raw PCM output into timestamped buffers
// for the host's audio sink.
//
// The engine writes interleaved 32-bit float samples into a byte channel
// (a FIFO, or a named pipe on Windows). A dedicated worker drains the channel
// into a bounded queue and releases it to the sink paced against an Anchor
// that the video path starts.
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mpvsource/mpvsource/config"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/spf13/viper"
)

// BytesPerSample is the size of one f32le sample.
const BytesPerSample = 4

// Buffer is one chunk handed to the sink.
type Buffer struct {
	Data       []byte
	Frames     uint32
	SampleRate uint32
	Channels   uint32
	Timestamp  uint64
}

// Sink accepts paced audio.
type Sink interface {
	OutputAudio(buf *Buffer)
}

// Options tune the worker.
type Options struct {
	Lead           time.Duration
	MaxBuffer      time.Duration
	OpenRetries    int
	OpenRetryDelay time.Duration
	IdleSleep      time.Duration
	ChunkSize      int
}

// OptionsFromConfig reads the worker options from the global configuration.
func OptionsFromConfig() Options {
	return Options{
		Lead:           config.Millis(key.AudioLead, 100*time.Millisecond),
		MaxBuffer:      config.Millis(key.AudioMaxBuffer, 2*time.Second),
		OpenRetries:    viper.GetInt(key.AudioOpenRetries),
		OpenRetryDelay: config.Millis(key.AudioOpenRetryDelay, 100*time.Millisecond),
		IdleSleep:      config.Millis(key.AudioIdleSleep, 5*time.Millisecond),
		ChunkSize:      viper.GetInt(key.AudioChunkSize),
	}
}

func (o Options) withDefaults() Options {
	if o.MaxBuffer <= 0 {
		o.MaxBuffer = 2 * time.Second
	}
	if o.OpenRetries <= 0 {
		o.OpenRetries = 1
	}
	if o.IdleSleep <= 0 {
		o.IdleSleep = 5 * time.Millisecond
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 4096
	}
	return o
}

// Bridge is the audio worker of one session.
type Bridge struct {
	pipe   Pipe
	sink   Sink
	clock  func() uint64
	anchor *Anchor
	opts   Options

	mu    sync.Mutex // Protects queue
	queue []byte

	paused atomic.Bool
	flush  atomic.Bool

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewBridge wires a worker; clock returns monotonic nanoseconds in the sink's time base.
func NewBridge(pipe Pipe, sink Sink, clock func() uint64, anchor *Anchor, opts Options) *Bridge {
	return &Bridge{
		pipe:   pipe,
		sink:   sink,
		clock:  clock,
		anchor: anchor,
		opts:   opts.withDefaults(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker. It is a no-op after the first call.
func (b *Bridge) Start() {
	if b.started.Swap(true) {
		return
	}
	go b.run()
}

// Stop signals the worker and waits for it to exit.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	if b.started.Load() {
		<-b.done
	}
}

// SetPaused updates the pause state. Entering pause discards the queue and
// invalidates the anchor, so resuming neither bursts stale audio nor paces
// against the time spent paused.
func (b *Bridge) SetPaused(paused bool) {
	if b.paused.Swap(paused) == paused {
		return
	}
	if paused {
		b.clear()
		b.anchor.Reset()
	}
}

// Paused reports the cached pause state.
func (b *Bridge) Paused() bool {
	return b.paused.Load()
}

// RequestFlush discards queued audio at the worker's next iteration, draining
// anything already waiting in the channel too.
func (b *Bridge) RequestFlush() {
	b.flush.Store(true)
	b.clear()
}

// Reconfigure handles a live format change.
func (b *Bridge) Reconfigure(rate, channels uint32) {
	oldRate, oldChannels := b.anchor.Format()
	if !b.anchor.Reconfigure(rate, channels) {
		return
	}
	newRate, newChannels := b.anchor.Format()
	log.Infof("audio format changed from %d Hz/%d ch to %d Hz/%d ch", oldRate, oldChannels, newRate, newChannels)
	b.RequestFlush()
}

// Reset clears the timeline for a freshly loaded file, taking the engine's
// reported format when known.
func (b *Bridge) Reset(rate, channels uint32) {
	b.anchor.Reset()
	b.anchor.SetFormat(rate, channels)
	b.clear()
}

// QueueLen returns the number of queued bytes.
func (b *Bridge) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bridge) clear() {
	b.mu.Lock()
	b.queue = b.queue[:0]
	b.mu.Unlock()
}

func (b *Bridge) stopped() bool {
	select {
	case <-b.stop:
		return true
	default:
		return false
	}
}

// sleep waits for d or until Stop, reporting whether the worker should go on.
func (b *Bridge) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-b.stop:
		return false
	case <-t.C:
		return true
	}
}

func (b *Bridge) connect() error {
	var err error
	for i := 0; i < b.opts.OpenRetries; i++ {
		if err = b.pipe.Open(); err == nil {
			return nil
		}
		if !b.sleep(b.opts.OpenRetryDelay) {
			return err
		}
	}
	return err
}

func (b *Bridge) run() {
	defer close(b.done)

	if err := b.connect(); err != nil {
		if !b.stopped() {
			log.Warnf("audio disabled for this session: %v", err)
		}
		return
	}
	log.Debugf("audio channel %s connected", b.pipe.Path())

	buf := make([]byte, b.opts.ChunkSize)
	for !b.stopped() {
		if b.flush.Swap(false) {
			b.drain(buf)
		}

		// Leaving bytes in the channel blocks the engine's writer, which is
		// what paces decoding.
		n := 0
		if b.QueueLen() < b.limit()/2 {
			var err error
			if n, err = b.pipe.Read(buf); err != nil {
				log.Warnf("audio channel read failed, audio disabled: %v", err)
				return
			}
		}
		if n > 0 {
			b.push(buf[:n])
		}

		emitted := b.pace(b.clock())
		if n == 0 && !emitted && !b.sleep(b.opts.IdleSleep) {
			return
		}
	}
}

// drain discards whatever the channel holds right now.
func (b *Bridge) drain(buf []byte) {
	for !b.stopped() {
		n, err := b.pipe.Read(buf)
		if err != nil || n == 0 {
			break
		}
	}
	b.clear()
}

// limit is the queue cap in bytes for the current format.
func (b *Bridge) limit() int {
	rate, channels := b.anchor.Format()
	perSecond := int(rate) * int(channels) * BytesPerSample
	return int(int64(perSecond) * int64(b.opts.MaxBuffer) / int64(time.Second))
}

// push appends freshly read bytes. Audio read while paused or before the
// video path anchored the timeline is dropped.
func (b *Bridge) push(p []byte) {
	if b.paused.Load() || !b.anchor.Started() {
		return
	}

	limit := b.limit()
	b.mu.Lock()
	b.queue = append(b.queue, p...)
	overflow := limit > 0 && len(b.queue) > limit
	if overflow {
		b.queue = b.queue[:0]
	}
	b.mu.Unlock()

	if overflow {
		b.anchor.Reset()
		log.Debugf("audio queue exceeded %d bytes, re-syncing", limit)
	}
}

// pace emits at most one chunk that is due at now, reporting whether it did.
func (b *Bridge) pace(now uint64) bool {
	if b.paused.Load() {
		b.clear()
		return false
	}
	if !b.anchor.Started() {
		return false
	}

	rate, channels := b.anchor.Format()
	if rate == 0 || channels == 0 {
		return false
	}

	target := uint64(0)
	if deadline := now + uint64(b.opts.Lead); deadline > b.anchor.Start() {
		target = nanosToFrames(deadline-b.anchor.Start(), rate)
	}
	emitted := b.anchor.Frames()
	if emitted >= target {
		return false
	}

	frameSize := int(channels) * BytesPerSample
	due := target - emitted

	b.mu.Lock()
	available := uint64(len(b.queue) / frameSize)
	if available == 0 {
		b.mu.Unlock()
		return false
	}
	frames := min(due, available)
	size := int(frames) * frameSize
	data := make([]byte, size)
	copy(data, b.queue[:size])
	b.queue = append(b.queue[:0], b.queue[size:]...)
	b.mu.Unlock()

	out := &Buffer{
		Data:       data,
		Frames:     uint32(frames),
		SampleRate: rate,
		Channels:   channels,
		Timestamp:  b.anchor.Timestamp(),
	}
	b.anchor.Advance(frames)
	b.sink.OutputAudio(out)
	return true
}
