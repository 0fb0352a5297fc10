package source

import (
	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/player"
)

const bytesPerPixel = 4

// Tick runs once per host frame: drain pending engine events, then render a
// frame if one is ready.
func (s *Source) Tick() {
	if s.closed.Load() {
		return
	}
	if s.wake.Swap(false) {
		s.handleEvents()
	}

	ready := s.render.Update()
	if s.redraw.Swap(false) {
		ready = true
	}
	if ready {
		s.renderFrame()
	}
}

// dimensions reads the video size from the engine; zero when unknown.
func (s *Source) dimensions() (int, int) {
	w, err := player.GetInt(s.handle, "width")
	if err != nil {
		return 0, 0
	}
	h, err := player.GetInt(s.handle, "height")
	if err != nil {
		return 0, 0
	}
	return int(w), int(h)
}

func (s *Source) renderFrame() {
	w, h := s.dimensions()
	if w <= 0 || h <= 0 {
		return
	}
	if w != s.width || h != s.height {
		log.Infof("video size %dx%d -> %dx%d", s.width, s.height, w, h)
		s.width, s.height = w, h
	}

	stride := s.width * bytesPerPixel
	if size := stride * s.height; len(s.buf) != size {
		s.buf = make([]byte, size)
	}

	if err := s.render.Render(s.width, s.height, stride, s.buf); err != nil {
		log.Debugf("render skipped: %v", err)
		return
	}

	now := s.host.Now()
	// A frame shown while paused must not anchor audio that resumes later.
	if !s.bridge.Paused() && s.anchor.StartAt(now) {
		log.Infof("A/V sync started at %d", now)
	}
	s.host.OutputVideo(&host.VideoFrame{
		Data:      s.buf,
		Stride:    stride,
		Width:     s.width,
		Height:    s.height,
		Format:    host.FormatBGRA,
		Timestamp: now,
	})
}
