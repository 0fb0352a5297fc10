package host

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mpvsource/mpvsource/audio"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Stats counts what a headless host received.
type Stats struct {
	Frames      uint64
	AudioFrames uint64
	Width       int
	Height      int
	LastVideoTS uint64
	LastAudioTS uint64
	Resets      int
	Refreshes   int
}

// Headless hosts a source without any presentation: frames are counted and
// audio is optionally dumped as raw f32le.
type Headless struct {
	start      time.Time
	sampleRate uint32

	mu    sync.Mutex
	info  VideoInfo
	stats Stats
	dump  io.Writer

	resets chan VideoInfo

	frames      atomic.Uint64
	audioFrames atomic.Uint64
}

var _ Host = (*Headless)(nil)

// NewHeadless returns a host with the given output format.
func NewHeadless(sampleRate uint32, info VideoInfo) *Headless {
	if info.FPSNum == 0 || info.FPSDen == 0 {
		info = VideoInfo{FPSNum: 30, FPSDen: 1}
	}
	return &Headless{
		start:      time.Now(),
		sampleRate: sampleRate,
		info:       info,
		resets:     make(chan VideoInfo, 1),
	}
}

// NewHeadlessFromConfig uses the configured output format.
func NewHeadlessFromConfig() *Headless {
	return NewHeadless(
		uint32(viper.GetInt(key.HostSampleRate)),
		VideoInfo{FPSNum: uint32(viper.GetInt(key.HostFPSNum)), FPSDen: uint32(viper.GetInt(key.HostFPSDen))},
	)
}

// DumpAudio writes every received audio buffer to w.
func (h *Headless) DumpAudio(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dump = w
}

func (h *Headless) OutputVideo(frame *VideoFrame) {
	h.frames.Add(1)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.Width, h.stats.Height = frame.Width, frame.Height
	h.stats.LastVideoTS = frame.Timestamp
}

func (h *Headless) OutputAudio(buf *audio.Buffer) {
	h.audioFrames.Add(uint64(buf.Frames))
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.LastAudioTS = buf.Timestamp
	if h.dump != nil {
		if _, err := h.dump.Write(buf.Data); err != nil {
			log.Warnf("audio dump: %v", err)
			h.dump = nil
		}
	}
}

func (h *Headless) Now() uint64 {
	return uint64(time.Since(h.start))
}

func (h *Headless) AudioInfo() (uint32, bool) {
	return h.sampleRate, h.sampleRate > 0
}

func (h *Headless) VideoInfo() (VideoInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.info, true
}

// ResetVideo switches the tick rate of Run.
func (h *Headless) ResetVideo(info VideoInfo) error {
	h.mu.Lock()
	h.info = info
	h.stats.Resets++
	h.mu.Unlock()

	select {
	case h.resets <- info:
	default:
		// Run picks the latest value from h.info anyway.
	}
	log.Infof("headless host output rate set to %s", info)
	return nil
}

func (h *Headless) Logf(level logrus.Level, format string, args ...any) {
	log.Logf(level, format, args...)
}

func (h *Headless) UpdateSettings() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.Refreshes++
}

// Stats returns a snapshot of the counters.
func (h *Headless) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.Frames = h.frames.Load()
	s.AudioFrames = h.audioFrames.Load()
	return s
}

func (h *Headless) interval() time.Duration {
	info, _ := h.VideoInfo()
	fps := info.FPS()
	if fps <= 0 {
		fps = 30
	}
	return time.Duration(float64(time.Second) / fps)
}

// Run calls tick at the output frame rate until ctx is done.
func (h *Headless) Run(ctx context.Context, tick func()) error {
	ticker := time.NewTicker(h.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.resets:
			ticker.Reset(h.interval())
		case <-ticker.C:
			tick()
		}
	}
}
