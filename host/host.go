// Package host defines what a media source needs from the application that
// embeds it: output sinks, a clock, output format queries, logging and a
// settings store.
package host

import (
	"fmt"

	"github.com/mpvsource/mpvsource/audio"
	"github.com/sirupsen/logrus"
)

// PixelFormat of video frames handed to the sink.
type PixelFormat int

const (
	FormatBGRA PixelFormat = iota
)

// VideoFrame is one rendered picture. Data is only valid during OutputVideo.
type VideoFrame struct {
	Data      []byte
	Stride    int
	Width     int
	Height    int
	Format    PixelFormat
	Timestamp uint64
}

// VideoInfo is the host's output video format.
type VideoInfo struct {
	FPSNum uint32
	FPSDen uint32
}

// FPS returns the frame rate as a float.
func (v VideoInfo) FPS() float64 {
	if v.FPSDen == 0 {
		return 0
	}
	return float64(v.FPSNum) / float64(v.FPSDen)
}

func (v VideoInfo) String() string {
	return fmt.Sprintf("%d/%d", v.FPSNum, v.FPSDen)
}

// VideoSink accepts rendered frames.
type VideoSink interface {
	OutputVideo(frame *VideoFrame)
}

// AudioSink accepts paced audio buffers.
type AudioSink = audio.Sink

// Host is the embedding application.
type Host interface {
	VideoSink
	AudioSink

	// Now returns monotonic nanoseconds in the time base of both sinks.
	Now() uint64
	// AudioInfo returns the host's output sample rate.
	AudioInfo() (sampleRate uint32, ok bool)
	// VideoInfo returns the host's output video format.
	VideoInfo() (VideoInfo, bool)
	// ResetVideo asks the host to change its output frame rate.
	ResetVideo(info VideoInfo) error
	// Logf forwards a message into the host's log.
	Logf(level logrus.Level, format string, args ...any)
	// UpdateSettings tells the host that source settings changed and views should refresh.
	UpdateSettings()
}

// MediaState is the transport state reported to the host.
type MediaState int

const (
	StateStopped MediaState = iota
	StatePlaying
	StatePaused
)

func (s MediaState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}
