package source

import (
	"context"
	"strconv"

	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/player"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/util"
)

// set writes a property without waiting, so the tick thread never blocks.
func (s *Source) set(name, value string) {
	if err := s.handle.CommandAsync("set", name, value); err != nil {
		log.Debugf("set %s=%s: %v", name, value, err)
	}
}

func (s *Source) command(args ...string) {
	if err := s.handle.CommandAsync(args...); err != nil {
		log.Debugf("%v: %v", args, err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func loopMode(loop bool) string {
	if loop {
		return "inf"
	}
	return "no"
}

func filterChain(item *playlist.Item) string {
	return playlist.FilterChain(item)
}

// applyOverrides pushes an item's persisted overrides into the live engine.
func (s *Source) applyOverrides(item *playlist.Item) {
	s.set("aid", player.TrackSelector(item.AudioTrack))
	s.set("sid", player.TrackSelector(item.SubTrack))
	s.set("loop-file", loopMode(item.Loop))
	s.set("volume", formatFloat(util.Clamp(item.Volume, 0, 100)))
	s.set("af", filterChain(item))
}

// PlayIndex loads and starts the item at index.
func (s *Source) PlayIndex(index int) error {
	item, err := s.playlist.Get(index)
	if err != nil {
		return err
	}
	log.Infof("play %d: %s", index, item.Path)

	s.bridge.RequestFlush()
	s.loading.Store(true)
	_ = s.playlist.Select(index)

	s.command("loadfile", item.Path, "replace")
	s.matchFrameRate(item)
	s.set("pause", "no")
	s.applyOverrides(item)
	s.seedItemSettings(item)
	// Attached once the file has loaded; sub-add targets the loaded file.
	s.pendingSub = item.ExtSubPath
	return nil
}

// matchFrameRate asks the host to follow the item's frame rate.
func (s *Source) matchFrameRate(item *playlist.Item) {
	if !s.autoFPS || item.Metadata.FPS <= 0 {
		return
	}
	rate := playlist.Rational(item.Metadata.FPS)
	current, ok := s.host.VideoInfo()
	if !ok || (current.FPSNum == rate.Num && current.FPSDen == rate.Den) {
		return
	}

	log.Infof("matching output frame rate to %.3f (%d/%d)", item.Metadata.FPS, rate.Num, rate.Den)
	if err := s.host.ResetVideo(host.VideoInfo{FPSNum: rate.Num, FPSDen: rate.Den}); err != nil {
		log.Warnf("reset output frame rate: %v", err)
	}
}

// Next performs the end-of-item transition: repeat a looping item, advance,
// or go idle at the end of the playlist.
func (s *Source) Next() {
	next, ok := s.playlist.Next().Get()
	if !ok {
		log.Infof("end of playlist")
		_ = s.playlist.Select(-1)
		return
	}
	_ = s.PlayIndex(next)
}

// Play resumes playback.
func (s *Source) Play() {
	s.set("pause", "no")
}

// Pause pauses playback.
func (s *Source) Pause() {
	s.set("pause", "yes")
}

// PlayPause pauses or resumes.
func (s *Source) PlayPause(pause bool) {
	if pause {
		s.Pause()
	} else {
		s.Play()
	}
}

// Stop stops the engine; the selection is kept.
func (s *Source) Stop() {
	s.command("stop")
	s.loading.Store(false)
	s.bridge.RequestFlush()
}

// Seek jumps to an absolute position in seconds.
func (s *Source) Seek(seconds float64) {
	s.set("time-pos", formatFloat(seconds))
}

// SetTime seeks to a position in milliseconds.
func (s *Source) SetTime(ms int64) {
	s.Seek(float64(ms) / 1000)
}

// TimePos returns the playback position in seconds.
func (s *Source) TimePos() float64 {
	v, _ := player.GetFloat(s.handle, "time-pos")
	return v
}

// DurationSeconds returns the loaded file's duration in seconds.
func (s *Source) DurationSeconds() float64 {
	v, _ := player.GetFloat(s.handle, "duration")
	return v
}

// Time returns the playback position in milliseconds.
func (s *Source) Time() int64 {
	return int64(s.TimePos() * 1000)
}

// Duration returns the duration in milliseconds.
func (s *Source) Duration() int64 {
	return int64(s.DurationSeconds() * 1000)
}

// Volume returns the live volume.
func (s *Source) Volume() float64 {
	v, err := player.GetFloat(s.handle, "volume")
	if err != nil {
		return 100
	}
	return v
}

// SetVolume sets the live volume, clamped to 0-100.
func (s *Source) SetVolume(volume float64) {
	s.set("volume", formatFloat(util.Clamp(volume, 0, 100)))
}

// State derives the transport state from the engine's pause and idle flags.
func (s *Source) State() host.MediaState {
	idle, err := player.GetFlag(s.handle, "idle-active")
	if err != nil || idle {
		return host.StateStopped
	}
	paused, err := player.GetFlag(s.handle, "pause")
	if err != nil {
		return host.StateStopped
	}
	if paused {
		return host.StatePaused
	}
	return host.StatePlaying
}

// Loading reports whether a load is awaiting confirmation.
func (s *Source) Loading() bool {
	return s.loading.Load()
}

// Add probes paths and appends one item per path, in order.
func (s *Source) Add(ctx context.Context, paths ...string) {
	if s.opts.Prober != nil {
		s.playlist.Add(s.opts.Prober.Items(ctx, paths...)...)
		return
	}
	for _, path := range paths {
		s.playlist.Add(playlist.NewItem(path))
	}
}

// Remove deletes an item; removing the playing item stops playback.
func (s *Source) Remove(index int) error {
	wasCurrent, err := s.playlist.Remove(index)
	if err != nil {
		return err
	}
	if wasCurrent {
		s.Stop()
	}
	return nil
}

// Move relocates an item.
func (s *Source) Move(from, to int) error {
	return s.playlist.Move(from, to)
}

// Count returns the number of items.
func (s *Source) Count() int {
	return s.playlist.Len()
}

// CurrentIndex returns the selected index or -1.
func (s *Source) CurrentIndex() int {
	return s.playlist.Current()
}

// Item returns a copy of the item at index.
func (s *Source) Item(index int) (playlist.Item, error) {
	item, err := s.playlist.Get(index)
	if err != nil {
		return playlist.Item{}, err
	}
	return *item, nil
}

// UpdateItem edits an item. Edits to the loaded item are pushed into the
// engine at once; others take effect at the item's next play.
func (s *Source) UpdateItem(index int, edit func(item *playlist.Item)) error {
	item, err := s.playlist.Get(index)
	if err != nil {
		return err
	}
	edit(item)
	if index == s.playlist.Current() {
		s.applyOverrides(item)
	}
	return nil
}

// Reload replays the current item from the current position.
func (s *Source) Reload() error {
	item, ok := s.playlist.CurrentItem().Get()
	if !ok {
		return nil
	}
	if pos, err := player.GetFloat(s.handle, "time-pos"); err == nil && pos > 0 {
		item.LastSeekPos = pos
	}
	return s.PlayIndex(s.playlist.Current())
}

// Tracks lists the live tracks of one kind.
func (s *Source) Tracks(kind playlist.Kind) []playlist.Track {
	node, err := s.handle.GetProperty("track-list")
	if err != nil {
		return nil
	}
	return playlist.ParseTrackList(node, kind)
}

// SetAutoFPS enables matching the host frame rate at each play.
func (s *Source) SetAutoFPS(enabled bool) {
	s.autoFPS = enabled
}

// AutoFPS reports whether frame rate matching is enabled.
func (s *Source) AutoFPS() bool {
	return s.autoFPS
}
