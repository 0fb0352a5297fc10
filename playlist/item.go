package playlist

import (
	"github.com/mpvsource/mpvsource/util"
)

// Metadata is what probing a file yields.
type Metadata struct {
	Duration    float64 `json:"duration"`
	FPS         float64 `json:"fps"`
	Channels    int     `json:"channels"`
	AudioTracks []Track `json:"audio_tracks"`
	SubTracks   []Track `json:"sub_tracks"`
}

// Item is one playable entry with its per-item overrides.
type Item struct {
	Path string `json:"path" jsonschema:"required,description=Media file path or URL"`
	Name string `json:"name" jsonschema:"description=Display name derived from the path"`

	Metadata Metadata `json:"-"`

	// AudioTrack and SubTrack are engine track ids; -1 disables the track.
	AudioTrack int     `json:"audio_track" jsonschema:"default=-1"`
	SubTrack   int     `json:"sub_track" jsonschema:"default=-1"`
	Volume     float64 `json:"volume" jsonschema:"minimum=0,maximum=100,default=100"`
	Loop       bool    `json:"loop"`
	ExtSubPath string  `json:"ext_sub_path,omitempty" jsonschema:"description=External subtitle file loaded and selected at play"`

	FadeInEnabled  bool    `json:"fade_in_enabled"`
	FadeIn         float64 `json:"fade_in" jsonschema:"minimum=0,description=Fade-in duration in seconds"`
	FadeOutEnabled bool    `json:"fade_out_enabled"`
	FadeOut        float64 `json:"fade_out" jsonschema:"minimum=0,description=Fade-out duration in seconds"`

	// LastSeekPos is where playback resumes once the file has loaded; zero means the start.
	LastSeekPos float64 `json:"-"`
}

// NewItem returns an item for path with default overrides.
func NewItem(path string) Item {
	return Item{
		Path:       path,
		Name:       util.BaseName(path),
		AudioTrack: -1,
		SubTrack:   -1,
		Volume:     100,
	}
}

// Duration returns the probed duration in seconds.
func (i *Item) Duration() float64 {
	return i.Metadata.Duration
}
