package player

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEncodeCommand(t *testing.T) {
	Convey("Given a command", t, func() {
		Convey("It is newline terminated JSON with a request id", func() {
			payload, err := encodeCommand(7, false, []interface{}{"loadfile", "/a.mkv", "replace"})
			So(err, ShouldBeNil)
			So(payload[len(payload)-1], ShouldEqual, byte('\n'))

			var decoded map[string]any
			So(json.Unmarshal(payload, &decoded), ShouldBeNil)
			So(decoded["request_id"], ShouldEqual, 7.0)
			So(decoded["command"], ShouldResemble, []any{"loadfile", "/a.mkv", "replace"})
			So(decoded, ShouldNotContainKey, "async")
		})

		Convey("Async commands carry the async flag", func() {
			payload, err := encodeCommand(1, true, []interface{}{"stop"})
			So(err, ShouldBeNil)
			So(string(payload), ShouldContainSubstring, `"async":true`)
		})
	})
}

func TestDecodeMessage(t *testing.T) {
	Convey("Given lines written by the engine", t, func() {
		Convey("A successful reply has no error", func() {
			msg, err := decodeMessage([]byte(`{"data":42.5,"request_id":3,"error":"success"}`))
			So(err, ShouldBeNil)
			So(msg.isEvent(), ShouldBeFalse)
			So(*msg.RequestID, ShouldEqual, int64(3))
			So(msg.Data, ShouldEqual, 42.5)
			So(msg.err(), ShouldBeNil)
		})

		Convey("An unavailable property maps to the sentinel", func() {
			msg, _ := decodeMessage([]byte(`{"request_id":4,"error":"property unavailable"}`))
			So(msg.err(), ShouldEqual, ErrPropertyUnavailable)
		})

		Convey("Other failures are reported verbatim", func() {
			msg, _ := decodeMessage([]byte(`{"request_id":5,"error":"invalid parameter"}`))
			So(msg.err().Error(), ShouldEqual, "mpv error: invalid parameter")
		})

		Convey("Garbage is rejected", func() {
			_, err := decodeMessage([]byte(`{not json`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMessageEvent(t *testing.T) {
	Convey("Given event messages", t, func() {
		parse := func(line string) (Event, bool) {
			msg, err := decodeMessage([]byte(line))
			So(err, ShouldBeNil)
			So(msg.isEvent(), ShouldBeTrue)
			return msg.event()
		}

		Convey("end-file carries its reason", func() {
			ev, ok := parse(`{"event":"end-file","reason":"eof","playlist_entry_id":1}`)
			So(ok, ShouldBeTrue)
			So(ev.ID, ShouldEqual, EventEndFile)
			So(ev.Reason, ShouldEqual, EndReasonEOF)

			ev, _ = parse(`{"event":"end-file","reason":"error","file_error":"no such file"}`)
			So(ev.Reason, ShouldEqual, EndReasonError)
			So(ev.Error, ShouldEqual, "no such file")
		})

		Convey("property-change carries the observer id and value", func() {
			ev, ok := parse(`{"event":"property-change","id":1,"name":"pause","data":true}`)
			So(ok, ShouldBeTrue)
			So(ev.ID, ShouldEqual, EventPropertyChange)
			So(ev.ObserveID, ShouldEqual, 1)
			So(ev.Property, ShouldEqual, "pause")
			So(ev.Data, ShouldEqual, true)
		})

		Convey("log-message is trimmed", func() {
			ev, ok := parse(`{"event":"log-message","prefix":"ffmpeg","level":"warn","text":"late frame\n"}`)
			So(ok, ShouldBeTrue)
			So(ev.Log, ShouldResemble, &LogMessage{Prefix: "ffmpeg", Level: "warn", Text: "late frame"})
		})

		Convey("Simple events map by name", func() {
			for name, id := range map[string]EventID{
				"file-loaded":      EventFileLoaded,
				"audio-reconfig":   EventAudioReconfig,
				"video-reconfig":   EventVideoReconfig,
				"shutdown":         EventShutdown,
				"start-file":       EventStartFile,
				"playback-restart": EventPlaybackRestart,
			} {
				ev, ok := parse(`{"event":"` + name + `"}`)
				So(ok, ShouldBeTrue)
				So(ev.ID, ShouldEqual, id)
				So(ev.ID.String(), ShouldEqual, name)
			}
		})

		Convey("Unknown events are dropped", func() {
			_, ok := parse(`{"event":"seek"}`)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseEndReason(t *testing.T) {
	Convey("Unknown reasons are not mistaken for a natural end", t, func() {
		So(ParseEndReason("eof"), ShouldEqual, EndReasonEOF)
		So(ParseEndReason("quit"), ShouldEqual, EndReasonQuit)
		So(ParseEndReason("whatever"), ShouldEqual, EndReasonUnknown)
		So(EndReasonStop.String(), ShouldEqual, "stop")
	})
}
