package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/player"
	"github.com/mpvsource/mpvsource/player/playertest"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestFormatSeconds(t *testing.T) {
	Convey("formatSeconds", t, func() {
		So(formatSeconds(0), ShouldEqual, "?")
		So(formatSeconds(65.4), ShouldEqual, "1:05")
		So(formatSeconds(3725), ShouldEqual, "1:02:05")
	})
}

func TestParseValue(t *testing.T) {
	Convey("parseValue follows the default's type", t, func() {
		v, err := parseValue(key.AudioLead, "250")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 250)

		v, err = parseValue(key.ProbeCache, "false")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, false)

		v, err = parseValue(key.EngineHwdec, "no")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "no")

		_, err = parseValue(key.AudioLead, "soon")
		So(err, ShouldNotBeNil)
	})

	Convey("Unknown keys suggest the closest one", t, func() {
		So(errUnknownKey("audio.lead").Error(), ShouldContainSubstring, key.AudioLead)
	})
}

func TestResolveIndex(t *testing.T) {
	Convey("Given a playlist", t, func() {
		p := playlist.New()
		p.Add(
			playlist.NewItem("/media/Opening Theme.flac"),
			playlist.NewItem("/media/Episode 01.mkv"),
			playlist.NewItem("/media/Episode 02.mkv"),
		)

		Convey("Numbers are indexes", func() {
			i, err := resolveIndex(p, "2")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 2)

			_, err = resolveIndex(p, "7")
			So(err, ShouldNotBeNil)
		})

		Convey("Text is matched against names", func() {
			i, err := resolveIndex(p, "opening")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 0)

			_, err = resolveIndex(p, "credits")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("describe lists the probed tracks", t, func() {
		viper.Set(key.IconsVariant, "plain")
		item := playlist.NewItem("/media/a.mkv")
		item.Metadata = playlist.Metadata{
			Duration:    90,
			FPS:         23.976,
			Channels:    2,
			AudioTracks: []playlist.Track{{ID: 1, Name: "jpn", Channels: 2}, {ID: 2, Name: "eng"}},
		}

		out := describe(item, 80)
		So(out, ShouldContainSubstring, "1:30")
		So(out, ShouldContainSubstring, "24000/1001")
		So(out, ShouldContainSubstring, "2 channels")
		So(out, ShouldContainSubstring, "1: jpn (2ch), 2: eng")
	})
}

func TestSettingValue(t *testing.T) {
	Convey("settingValue keeps scalar types", t, func() {
		So(settingValue("true"), ShouldEqual, true)
		So(settingValue("1"), ShouldEqual, 1)
		So(settingValue("0.5"), ShouldEqual, 0.5)
		So(settingValue("/media/a.srt"), ShouldEqual, "/media/a.srt")
	})
}

func TestPlayAll(t *testing.T) {
	Convey("Given a source with no saved playlist", t, func() {
		engine := playertest.New()
		h := host.NewHeadless(48000, host.VideoInfo{FPSNum: 30, FPSDen: 1})
		s, err := source.New(h, nil, source.Options{Factory: playertest.Factory(engine)})
		So(err, ShouldBeNil)
		defer s.Destroy()

		Convey("An empty playlist is refused before anything loads", func() {
			err := playAll(context.Background(), h, s, nil, 0, true)
			So(errors.Is(err, errPlaylistEmpty), ShouldBeTrue)
			So(engine.CommandLines(), ShouldBeEmpty)
		})

		Convey("A start index past the end is an error", func() {
			err := playAll(context.Background(), h, s, []string{"/media/a.mkv"}, 3, true)
			So(err, ShouldNotBeNil)
			So(s.Count(), ShouldEqual, 1)
			So(s.Loading(), ShouldBeFalse)
		})

		Convey("A file that fails to load finishes the run", func() {
			s.Add(context.Background(), "/media/broken.bin")
			So(s.PlayIndex(0), ShouldBeNil)
			So(done(s), ShouldBeFalse)

			engine.SetProp("idle-active", true)
			engine.Emit(player.Event{ID: player.EventEndFile, Reason: player.EndReasonError, Error: "unrecognized file format"})
			s.Tick()
			So(s.CurrentIndex(), ShouldEqual, 0)
			So(done(s), ShouldBeTrue)
		})
	})
}
