package source

import (
	"context"

	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/playlist"
)

// Settings keys the host writes and the source reads (plus the two track
// lists the source publishes back).
const (
	KeyAutoFPS        = "auto_obs_fps"
	KeyTrackListAudio = "track_list_audio"
	KeyTrackListSub   = "track_list_sub"
	KeyLoadSubtitle   = "load_subtitle"
	KeyAudioTrack     = "audio_track"
	KeySubtitleTrack  = "subtitle_track"
	KeyLoop           = "loop"
	KeyVolume         = "volume"
	KeySubDelay       = "sub_delay"
	KeySubScale       = "sub_scale"
	KeySubPos         = "sub_pos"
)

// Update applies changed host settings to the session and the current item.
func (s *Source) Update(settings *host.Settings) {
	if settings == nil {
		return
	}
	s.settings = settings
	s.autoFPS = settings.GetBool(KeyAutoFPS)

	for key, property := range map[string]string{
		KeySubDelay: "sub-delay",
		KeySubScale: "sub-scale",
		KeySubPos:   "sub-pos",
	} {
		if settings.Has(key) {
			s.set(property, formatFloat(settings.GetDouble(key)))
		}
	}

	item, ok := s.playlist.CurrentItem().Get()
	if !ok {
		return
	}

	changed := false
	if settings.Has(KeyAudioTrack) {
		item.AudioTrack = settings.GetInt(KeyAudioTrack)
		changed = true
	}
	if settings.Has(KeySubtitleTrack) {
		item.SubTrack = settings.GetInt(KeySubtitleTrack)
		changed = true
	}
	if settings.Has(KeyLoop) {
		item.Loop = settings.GetBool(KeyLoop)
		changed = true
	}
	if settings.Has(KeyVolume) {
		item.Volume = settings.GetDouble(KeyVolume)
		changed = true
	}
	if changed {
		s.applyOverrides(item)
	}

	// One-shot: remembered on the item, then cleared from the settings.
	if path := settings.GetString(KeyLoadSubtitle); path != "" {
		log.Infof("loading subtitle %s", path)
		item.ExtSubPath = path
		s.command("sub-add", path, "select")
		settings.Set(KeyLoadSubtitle, "")
	}
}

// Save writes the playlist and source options into the settings.
func (s *Source) Save(settings *host.Settings) {
	if settings == nil {
		settings = s.settings
	}
	settings.Set(KeyAutoFPS, s.autoFPS)
	playlist.Save(settings, s.playlist)
}

// loadPlaylist restores the persisted playlist, probing what it lacks.
func (s *Source) loadPlaylist(ctx context.Context) {
	items := playlist.Load(s.settings)
	if len(items) == 0 {
		return
	}
	if s.opts.Prober != nil {
		s.opts.Prober.Refresh(ctx, items)
	}
	s.playlist.Replace(items)
}

// seedItemSettings mirrors the item's overrides into the settings, so a later
// update carries this item's values instead of the previous item's.
func (s *Source) seedItemSettings(item *playlist.Item) {
	s.settings.Set(KeyAudioTrack, item.AudioTrack)
	s.settings.Set(KeySubtitleTrack, item.SubTrack)
	s.settings.Set(KeyLoop, item.Loop)
	s.settings.Set(KeyVolume, item.Volume)
}

// publishTracks writes the loaded file's track lists into the settings and
// records the engine's selection on the current item.
func (s *Source) publishTracks() {
	audioTracks := s.Tracks(playlist.Audio)
	subTracks := s.Tracks(playlist.Subtitle)

	s.settings.Set(KeyTrackListAudio, playlist.TrackSummary(audioTracks))
	s.settings.Set(KeyTrackListSub, playlist.TrackSummary(subTracks))

	if item, ok := s.playlist.CurrentItem().Get(); ok {
		item.Metadata.AudioTracks = audioTracks
		item.Metadata.SubTracks = subTracks
	}
	s.host.UpdateSettings()
}
