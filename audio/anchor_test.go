package audio

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAnchor(t *testing.T) {
	Convey("Given an anchor at 48 kHz stereo", t, func() {
		a := NewAnchor(48000, 2)

		Convey("It starts once and stays put", func() {
			So(a.Started(), ShouldBeFalse)
			So(a.StartAt(1000), ShouldBeTrue)
			So(a.StartAt(5000), ShouldBeFalse)
			So(a.Start(), ShouldEqual, uint64(1000))
		})

		Convey("Timestamps follow the emitted frames", func() {
			a.StartAt(1_000_000_000)
			a.Advance(48000)
			So(a.Timestamp(), ShouldEqual, uint64(2_000_000_000))
			a.Advance(24000)
			So(a.Timestamp(), ShouldEqual, uint64(2_500_000_000))
		})

		Convey("Reset invalidates the timeline", func() {
			a.StartAt(10)
			a.Advance(10)
			a.Reset()
			So(a.Started(), ShouldBeFalse)
			So(a.Frames(), ShouldEqual, uint64(0))
		})

		Convey("Reconfiguring projects the anchor forward", func() {
			a.StartAt(1_000_000_000)
			a.Advance(48000)
			before := a.Timestamp()

			So(a.Reconfigure(44100, 2), ShouldBeTrue)
			So(a.Frames(), ShouldEqual, uint64(0))
			So(a.Start(), ShouldEqual, before)
			So(a.Timestamp(), ShouldEqual, before)

			rate, ch := a.Format()
			So(rate, ShouldEqual, uint32(44100))
			So(ch, ShouldEqual, uint32(2))
		})

		Convey("An unchanged format is not a reconfiguration", func() {
			a.StartAt(1)
			a.Advance(7)
			So(a.Reconfigure(48000, 2), ShouldBeFalse)
			So(a.Reconfigure(0, 0), ShouldBeFalse)
			So(a.Frames(), ShouldEqual, uint64(7))
		})

		Convey("Timestamps never run backward across format changes", func() {
			a.StartAt(123_456_789)
			formats := [][2]uint32{{44100, 2}, {96000, 6}, {8000, 1}, {48000, 2}, {22050, 1}, {0, 2}}
			last := a.Timestamp()
			for i, f := range formats {
				for j := 0; j < 5; j++ {
					a.Advance(uint64(1000 + 7*i + j))
					ts := a.Timestamp()
					So(ts, ShouldBeGreaterThanOrEqualTo, last)
					last = ts
				}
				a.Reconfigure(f[0], f[1])
				So(a.Timestamp(), ShouldBeGreaterThanOrEqualTo, last)
				last = a.Timestamp()
			}
		})
	})
}

func TestFrameConversion(t *testing.T) {
	Convey("Frame and nanosecond conversions agree", t, func() {
		So(framesToNanos(44100, 44100), ShouldEqual, uint64(1_000_000_000))
		So(framesToNanos(1, 48000), ShouldEqual, uint64(20833))
		So(framesToNanos(10, 0), ShouldEqual, uint64(0))
		So(nanosToFrames(1_500_000_000, 48000), ShouldEqual, uint64(72000))

		Convey("without overflowing for week-long sessions", func() {
			week := uint64(7 * 24 * 3600)
			So(framesToNanos(week*192000, 192000), ShouldEqual, week*1_000_000_000)
		})
	})
}
