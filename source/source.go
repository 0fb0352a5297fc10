// Package source is the media source a host embeds: one long-lived engine
// session driven by the host's tick, an audio worker pacing the engine's PCM
// output, and a playlist with transport controls.
//
// Every method except the audio worker runs on the host's tick thread; the
// playlist is therefore not locked.
package source

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/mpvsource/mpvsource/audio"
	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/player"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/probe"
	"github.com/spf13/viper"
)

const (
	defaultSampleRate = 48000
	outputChannels    = 2

	observePause = 1
)

// Options select the collaborators of a source.
type Options struct {
	Factory player.Factory
	// Prober fills metadata for added and restored items. Nil skips probing.
	Prober *probe.Prober
	// NewPipe creates the audio byte channel. Nil disables audio.
	NewPipe        func() (audio.Pipe, error)
	Audio          audio.Options
	Hwdec          string
	EngineLogLevel string
}

// DefaultOptions uses the mpv driver and the global configuration.
func DefaultOptions() Options {
	return Options{
		Factory:        player.NewHandle,
		Prober:         probe.NewFromConfig(player.NewHandle),
		NewPipe:        func() (audio.Pipe, error) { return audio.NewPipe() },
		Audio:          audio.OptionsFromConfig(),
		Hwdec:          viper.GetString(key.EngineHwdec),
		EngineLogLevel: viper.GetString(key.EngineLogLevel),
	}
}

// Source is one media source instance.
type Source struct {
	host     host.Host
	settings *host.Settings
	opts     Options

	handle player.Handle
	render player.RenderContext
	pipe   audio.Pipe
	anchor *audio.Anchor
	bridge *audio.Bridge

	playlist   *playlist.Playlist
	autoFPS    bool
	pendingSub string

	width  int
	height int
	buf    []byte

	wake    atomic.Bool // engine events pending
	redraw  atomic.Bool // render context asked for a frame
	loading atomic.Bool
	closed  atomic.Bool
}

// New creates the engine session. Only a failure to create or start the
// engine is an error; a missing audio channel leaves the source silent.
func New(h host.Host, settings *host.Settings, opts Options) (*Source, error) {
	if settings == nil {
		settings = host.NewSettings()
	}
	settings.SetDefault(KeyAutoFPS, viper.GetBool(key.PlaylistAutoFPS))

	s := &Source{
		host:     h,
		settings: settings,
		opts:     opts,
		playlist: playlist.New(),
	}

	rate := uint32(defaultSampleRate)
	if r, ok := h.AudioInfo(); ok && r > 0 {
		rate = r
	}

	// The channel must exist before the engine opens it for writing.
	if opts.NewPipe != nil {
		pipe, err := opts.NewPipe()
		if err != nil {
			log.Warnf("audio channel: %v", err)
		} else {
			s.pipe = pipe
		}
	}

	handle, err := opts.Factory()
	if err != nil {
		s.closePipe()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	s.handle = handle

	if err := s.configure(rate); err != nil {
		s.handle.Destroy()
		s.closePipe()
		return nil, err
	}

	render, err := handle.NewRenderContext()
	if err != nil {
		s.handle.Destroy()
		s.closePipe()
		return nil, fmt.Errorf("create render context: %w", err)
	}
	s.render = render

	handle.SetWakeupCallback(func() { s.wake.Store(true) })
	render.SetUpdateCallback(func() { s.redraw.Store(true) })

	if err := handle.ObserveProperty(observePause, "pause"); err != nil {
		log.Warnf("observe pause: %v", err)
	}
	if s.opts.EngineLogLevel != "" {
		if err := handle.RequestLogMessages(s.opts.EngineLogLevel); err != nil {
			log.Warnf("engine log messages: %v", err)
		}
	}

	s.anchor = audio.NewAnchor(rate, outputChannels)
	s.bridge = audio.NewBridge(s.pipe, h, h.Now, s.anchor, opts.Audio)

	s.autoFPS = settings.GetBool(KeyAutoFPS)
	s.loadPlaylist(context.Background())

	if s.pipe != nil {
		s.bridge.Start()
	}
	log.Infof("source created, %d playlist items", s.playlist.Len())
	return s, nil
}

// configure sets the startup options and initializes the engine.
func (s *Source) configure(rate uint32) error {
	options := [][2]string{
		{"vo", "libmpv"},
		{"idle", "yes"},
		{"keep-open", "no"},
	}
	if s.opts.Hwdec != "" {
		options = append(options, [2]string{"hwdec", s.opts.Hwdec})
	}
	if s.pipe != nil {
		options = append(options,
			[2]string{"ao", "pcm"},
			[2]string{"ao-pcm-file", s.pipe.Path()},
			[2]string{"ao-pcm-waveheader", "no"},
			[2]string{"audio-format", "float"},
			[2]string{"audio-samplerate", strconv.FormatUint(uint64(rate), 10)},
			[2]string{"audio-channels", "stereo"},
		)
	} else {
		options = append(options, [2]string{"ao", "null"})
	}

	for _, opt := range options {
		if err := s.handle.SetOption(opt[0], opt[1]); err != nil {
			return fmt.Errorf("engine option %s: %w", opt[0], err)
		}
	}
	if err := s.handle.Initialize(); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	return nil
}

func (s *Source) closePipe() {
	if s.pipe == nil {
		return
	}
	if err := s.pipe.Close(); err != nil {
		log.Warnf("close audio channel: %v", err)
	}
}

// Destroy joins the audio worker, then releases the channel and the engine.
func (s *Source) Destroy() {
	if s.closed.Swap(true) {
		return
	}
	s.bridge.Stop()
	s.closePipe()
	s.render.Free()
	s.handle.Destroy()
	log.Infof("source destroyed")
}

// Width returns the current video width.
func (s *Source) Width() int {
	return s.width
}

// Height returns the current video height.
func (s *Source) Height() int {
	return s.height
}

// Playlist exposes the items for read-only views.
func (s *Source) Playlist() *playlist.Playlist {
	return s.playlist
}
