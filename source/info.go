package source

import (
	"github.com/mpvsource/mpvsource/constant"
	"github.com/mpvsource/mpvsource/host"
)

// Descriptor is the callback table a host registers the source type with.
type Descriptor struct {
	ID   string
	Name string

	Create    func(h host.Host, settings *host.Settings) (*Source, error)
	Destroy   func(s *Source)
	Width     func(s *Source) int
	Height    func(s *Source) int
	Update    func(s *Source, settings *host.Settings)
	Tick      func(s *Source)
	Save      func(s *Source, settings *host.Settings)
	PlayPause func(s *Source, pause bool)
	Stop      func(s *Source)
	Time      func(s *Source) int64
	SetTime   func(s *Source, ms int64)
	Duration  func(s *Source) int64
	State     func(s *Source) host.MediaState
}

// Info describes the mpv media source.
var Info = Descriptor{
	ID:   constant.SourceID,
	Name: constant.SourceName,

	Create: func(h host.Host, settings *host.Settings) (*Source, error) {
		return New(h, settings, DefaultOptions())
	},
	Destroy:   (*Source).Destroy,
	Width:     (*Source).Width,
	Height:    (*Source).Height,
	Update:    (*Source).Update,
	Tick:      (*Source).Tick,
	Save:      (*Source).Save,
	PlayPause: (*Source).PlayPause,
	Stop:      (*Source).Stop,
	Time:      (*Source).Time,
	SetTime:   (*Source).SetTime,
	Duration:  (*Source).Duration,
	State:     (*Source).State,
}
