package playlist

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func trackList() []any {
	return []any{
		map[string]any{"id": 1.0, "type": "video", "selected": true},
		map[string]any{"id": 1.0, "type": "audio", "lang": "jpn", "title": "Main: Stereo", "selected": true, "demux-channel-count": 2.0},
		map[string]any{"id": 2.0, "type": "audio", "lang": "eng", "selected": false, "demux-channel-count": 6.0},
		map[string]any{"id": 3.0, "type": "audio"},
		map[string]any{"id": 1.0, "type": "sub", "lang": "eng", "selected": true},
		map[string]any{"id": 2.0, "type": "sub", "title": "Signs | Songs"},
		map[string]any{"type": "sub"},
		"garbage",
	}
}

func TestParseTrackList(t *testing.T) {
	Convey("Given an engine track list", t, func() {
		Convey("Audio tracks are picked with names and channels", func() {
			tracks := ParseTrackList(trackList(), Audio)
			So(tracks, ShouldResemble, []Track{
				{ID: 1, Name: "Main: Stereo", Selected: true, Channels: 2},
				{ID: 2, Name: "eng", Channels: 6},
				{ID: 3, Name: "3"},
			})
		})

		Convey("Subtitle tracks skip entries without an id", func() {
			tracks := ParseTrackList(trackList(), Subtitle)
			So(tracks, ShouldHaveLength, 2)
			So(tracks[0], ShouldResemble, Track{ID: 1, Name: "eng", Selected: true})
		})

		Convey("Anything but a list yields nothing", func() {
			So(ParseTrackList(nil, Audio), ShouldBeEmpty)
			So(ParseTrackList("x", Audio), ShouldBeEmpty)
		})
	})
}

func TestTrackSummary(t *testing.T) {
	Convey("Given parsed tracks", t, func() {
		Convey("Audio names carry the channel count", func() {
			summary := TrackSummary(ParseTrackList(trackList(), Audio))
			So(summary, ShouldEqual, "1:Main  Stereo (2ch):1|2:eng (6ch):0|3:3:0")
		})

		Convey("Separators in names are neutralised", func() {
			summary := TrackSummary(ParseTrackList(trackList(), Subtitle))
			So(summary, ShouldEqual, "1:eng:1|2:Signs / Songs:0")

			decoded := ParseTrackSummary(summary)
			So(decoded, ShouldResemble, []Track{
				{ID: 1, Name: "eng", Selected: true},
				{ID: 2, Name: "Signs / Songs"},
			})
		})

		Convey("No tracks is an empty string", func() {
			So(TrackSummary(nil), ShouldEqual, "")
			So(ParseTrackSummary(""), ShouldBeEmpty)
			So(ParseTrackSummary("x:y|4:ok:1"), ShouldResemble, []Track{{ID: 4, Name: "ok", Selected: true}})
		})
	})
}
