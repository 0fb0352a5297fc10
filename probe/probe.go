// Package probe extracts duration, frame rate and track metadata from media
// files by loading each into a throwaway, output-less engine instance.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mpvsource/mpvsource/config"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/player"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/where"
	"github.com/spf13/viper"
)

var (
	// ErrTimeout is returned when a file does not finish loading in time.
	ErrTimeout = errors.New("probe timed out")
	// ErrLoadFailed is returned when the engine refuses the file.
	ErrLoadFailed = errors.New("engine could not load file")
)

// pollInterval bounds each wait so cancellation is noticed promptly.
const pollInterval = 100 * time.Millisecond

// Prober runs probes one file at a time.
type Prober struct {
	factory player.Factory
	timeout time.Duration
	cache   *Cache
}

// New returns a prober creating its engine instances with factory.
func New(factory player.Factory, timeout time.Duration) *Prober {
	return &Prober{factory: factory, timeout: timeout}
}

// NewFromConfig returns a prober using the configured timeout and, when
// enabled, the on-disk metadata cache.
func NewFromConfig(factory player.Factory) *Prober {
	p := New(factory, config.Millis(key.ProbeTimeout, 5*time.Second))
	if viper.GetBool(key.ProbeCache) {
		p.cache = NewCache(where.ProbeCache())
	}
	return p
}

// WithCache makes the prober consult and fill c.
func (p *Prober) WithCache(c *Cache) *Prober {
	p.cache = c
	return p
}

// Probe returns the metadata of one file.
func (p *Prober) Probe(ctx context.Context, path string) (playlist.Metadata, error) {
	if p.cache != nil {
		if meta, ok := p.cache.Get(path).Get(); ok {
			log.Debugf("probe %s: cache hit", path)
			return meta, nil
		}
	}

	meta, err := p.probe(ctx, path)
	if err != nil {
		return playlist.Metadata{}, err
	}

	if p.cache != nil {
		if err := p.cache.Set(path, meta); err != nil {
			log.Warnf("probe cache: %v", err)
		}
	}
	return meta, nil
}

func (p *Prober) probe(ctx context.Context, path string) (meta playlist.Metadata, err error) {
	h, err := p.factory()
	if err != nil {
		return meta, fmt.Errorf("create probe engine: %w", err)
	}
	defer h.Destroy()

	for _, opt := range [][2]string{{"vo", "null"}, {"ao", "null"}, {"idle", "yes"}} {
		if err := h.SetOption(opt[0], opt[1]); err != nil {
			return meta, fmt.Errorf("probe option %s: %w", opt[0], err)
		}
	}
	if err := h.Initialize(); err != nil {
		return meta, fmt.Errorf("initialize probe engine: %w", err)
	}
	if err := h.Command("loadfile", path); err != nil {
		return meta, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	if err := p.awaitLoad(ctx, h); err != nil {
		return meta, err
	}
	return read(h), nil
}

// awaitLoad waits for the file-loaded confirmation within the probe timeout.
func (p *Prober) awaitLoad(ctx context.Context, h player.Handle) error {
	deadline := time.Now().Add(p.timeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}

		ev := h.WaitEvent(min(remaining, pollInterval))
		switch ev.ID {
		case player.EventFileLoaded:
			return nil
		case player.EventEndFile:
			if ev.Error != "" {
				return fmt.Errorf("%w: %s", ErrLoadFailed, ev.Error)
			}
			return ErrLoadFailed
		case player.EventShutdown:
			return fmt.Errorf("%w: engine shut down", ErrLoadFailed)
		}
	}
}

// read collects whatever metadata the loaded file exposes; missing values stay zero.
func read(h player.Handle) playlist.Metadata {
	var meta playlist.Metadata
	meta.Duration, _ = player.GetFloat(h, "duration")
	if fps, err := player.GetFloat(h, "container-fps"); err == nil {
		meta.FPS = fps
	} else if fps, err := player.GetFloat(h, "estimated-vf-fps"); err == nil {
		meta.FPS = fps
	}
	if ch, err := player.GetInt(h, "audio-params/channel-count"); err == nil {
		meta.Channels = int(ch)
	}
	if tracks, err := h.GetProperty("track-list"); err == nil {
		meta.AudioTracks = playlist.ParseTrackList(tracks, playlist.Audio)
		meta.SubTracks = playlist.ParseTrackList(tracks, playlist.Subtitle)
	}
	return meta
}

// Items probes each path in order and builds playlist items. A file that
// fails keeps default metadata; the batch always yields one item per path.
func (p *Prober) Items(ctx context.Context, paths ...string) []playlist.Item {
	items := make([]playlist.Item, 0, len(paths))
	for _, path := range paths {
		item := playlist.NewItem(path)
		meta, err := p.Probe(ctx, path)
		if err != nil {
			log.Warnf("probe %s: %v", path, err)
		} else {
			item.Metadata = meta
		}
		items = append(items, item)
	}
	return items
}

// Refresh re-probes items in place, keeping their overrides. Items that
// fail keep whatever metadata they had.
func (p *Prober) Refresh(ctx context.Context, items []playlist.Item) {
	for i := range items {
		meta, err := p.Probe(ctx, items[i].Path)
		if err != nil {
			log.Warnf("probe %s: %v", items[i].Path, err)
			continue
		}
		if meta.Duration == 0 {
			meta.Duration = items[i].Metadata.Duration
		}
		items[i].Metadata = meta
	}
}
