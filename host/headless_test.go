package host

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mpvsource/mpvsource/audio"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHeadless(t *testing.T) {
	Convey("Given a headless host", t, func() {
		h := NewHeadless(48000, VideoInfo{FPSNum: 100, FPSDen: 1})

		Convey("It reports its output format", func() {
			rate, ok := h.AudioInfo()
			So(ok, ShouldBeTrue)
			So(rate, ShouldEqual, uint32(48000))
			info, _ := h.VideoInfo()
			So(info.String(), ShouldEqual, "100/1")
		})

		Convey("It counts what it receives", func() {
			var dump bytes.Buffer
			h.DumpAudio(&dump)
			h.OutputVideo(&VideoFrame{Width: 640, Height: 360, Timestamp: 5})
			h.OutputAudio(&audio.Buffer{Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, Frames: 1, Timestamp: 7})
			h.UpdateSettings()

			s := h.Stats()
			So(s.Frames, ShouldEqual, uint64(1))
			So(s.AudioFrames, ShouldEqual, uint64(1))
			So(s.Width, ShouldEqual, 640)
			So(s.LastAudioTS, ShouldEqual, uint64(7))
			So(s.Refreshes, ShouldEqual, 1)
			So(dump.Len(), ShouldEqual, 8)
		})

		Convey("Its clock is monotonic", func() {
			a := h.Now()
			time.Sleep(time.Millisecond)
			So(h.Now(), ShouldBeGreaterThan, a)
		})

		Convey("Run ticks until cancelled and follows rate resets", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			var ticks atomic.Int32
			So(h.ResetVideo(VideoInfo{FPSNum: 200, FPSDen: 1}), ShouldBeNil)
			So(h.Run(ctx, func() { ticks.Add(1) }), ShouldBeNil)
			So(ticks.Load(), ShouldBeGreaterThan, 5)
			So(h.Stats().Resets, ShouldEqual, 1)
		})
	})

	Convey("A zero frame rate falls back to 30 fps", t, func() {
		h := NewHeadless(0, VideoInfo{})
		info, _ := h.VideoInfo()
		So(info.FPS(), ShouldEqual, 30.0)
		_, ok := h.AudioInfo()
		So(ok, ShouldBeFalse)
	})
}
