package source

import (
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/player"
	"github.com/sirupsen/logrus"
)

// handleEvents drains the engine queue without blocking.
func (s *Source) handleEvents() {
	tracksChanged := false
	for {
		ev := s.handle.WaitEvent(0)
		if ev.ID == player.EventNone {
			break
		}

		switch ev.ID {
		case player.EventLogMessage:
			s.forwardLog(ev.Log)
		case player.EventVideoReconfig:
			s.redraw.Store(true)
		case player.EventAudioReconfig:
			s.onAudioReconfig()
		case player.EventFileLoaded:
			tracksChanged = true
			s.onFileLoaded()
		case player.EventEndFile:
			s.onEndFile(ev)
		case player.EventPropertyChange:
			if ev.ObserveID == observePause {
				s.onPause(ev.Data)
			}
		case player.EventShutdown:
			log.Warnf("engine shut down")
		}
	}

	if tracksChanged {
		s.publishTracks()
	}
}

// engineLevel maps engine log levels onto the host log.
func engineLevel(level string) logrus.Level {
	switch level {
	case "fatal", "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

func (s *Source) forwardLog(msg *player.LogMessage) {
	if msg == nil {
		return
	}
	s.host.Logf(engineLevel(msg.Level), "[mpv] %s: %s", msg.Prefix, msg.Text)
}

// outputFormat returns the format the engine writes into the audio channel.
func (s *Source) outputFormat() (rate, channels uint32) {
	for _, prefix := range []string{"audio-out-params", "audio-params"} {
		r, err := player.GetInt(s.handle, prefix+"/samplerate")
		if err != nil || r <= 0 {
			continue
		}
		c, err := player.GetInt(s.handle, prefix+"/channel-count")
		if err != nil || c <= 0 {
			c = 0
		}
		return uint32(r), uint32(c)
	}
	return 0, 0
}

func (s *Source) onAudioReconfig() {
	rate, channels := s.outputFormat()
	if rate == 0 {
		return
	}
	s.bridge.Reconfigure(rate, channels)
}

func (s *Source) onFileLoaded() {
	s.loading.Store(false)
	rate, channels := s.outputFormat()
	s.bridge.Reset(rate, channels)
	log.Infof("file loaded")

	item, ok := s.playlist.CurrentItem().Get()
	if !ok {
		return
	}

	if item.Duration() <= 0 {
		if d, err := player.GetFloat(s.handle, "duration"); err == nil && d > 0 {
			item.Metadata.Duration = d
			// A fade-out needs the duration.
			s.set("af", filterChain(item))
		}
	}

	if s.pendingSub != "" {
		s.command("sub-add", s.pendingSub, "select")
		s.pendingSub = ""
	}

	if item.LastSeekPos > 0 {
		s.Seek(item.LastSeekPos)
		item.LastSeekPos = 0
	}

	// Without video no frame will ever anchor the audio.
	if s.audioOnly() && !s.bridge.Paused() {
		s.anchor.StartAt(s.host.Now())
	}
}

func (s *Source) audioOnly() bool {
	vid, err := s.handle.GetProperty("vid")
	return err == nil && (vid == false || vid == "no")
}

func (s *Source) onEndFile(ev player.Event) {
	log.Infof("end of file: %s", ev.Reason)
	if ev.Reason != player.EndReasonEOF {
		if ev.Reason == player.EndReasonError {
			// The failed file never reaches file-loaded.
			s.loading.Store(false)
			log.Warnf("playback error: %s", ev.Error)
		}
		return
	}

	if item, ok := s.playlist.CurrentItem().Get(); ok {
		item.LastSeekPos = 0
	}
	s.Next()
}

func (s *Source) onPause(data any) {
	paused := data == true || data == "yes"
	s.bridge.SetPaused(paused)
	if paused {
		return
	}
	// Re-anchor at the moment playback resumes.
	if s.audioOnly() {
		s.anchor.StartAt(s.host.Now())
		return
	}
	s.redraw.Store(true)
}
