package probe

import (
	"context"
	"testing"
	"time"

	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/playlist"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCache(t *testing.T) {
	Convey("Given a media file and a cache", t, func() {
		fs := filesystem.API()
		So(fs.WriteFile("/media/cached.mkv", []byte("v1"), 0o644), ShouldBeNil)
		cache := NewCache("/cache/probe-" + time.Now().Format("150405.000000000") + ".json")
		meta := playlist.Metadata{Duration: 12, FPS: 25}

		Convey("Unknown files miss", func() {
			So(cache.Get("/media/cached.mkv").IsAbsent(), ShouldBeTrue)
		})

		Convey("Stored metadata is served while the file is unchanged", func() {
			So(cache.Set("/media/cached.mkv", meta), ShouldBeNil)
			got, ok := cache.Get("/media/cached.mkv").Get()
			So(ok, ShouldBeTrue)
			So(got.Duration, ShouldEqual, 12.0)

			Convey("and dropped once it changes", func() {
				So(fs.WriteFile("/media/cached.mkv", []byte("version two"), 0o644), ShouldBeNil)
				So(cache.Get("/media/cached.mkv").IsAbsent(), ShouldBeTrue)
			})

			Convey("or when deleted", func() {
				So(cache.Delete("/media/cached.mkv"), ShouldBeNil)
				So(cache.Get("/media/cached.mkv").IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("Remote paths are never cached", func() {
			So(cache.Set("https://example.com/live.m3u8", meta), ShouldBeNil)
			So(cache.Get("https://example.com/live.m3u8").IsAbsent(), ShouldBeTrue)
		})

		Convey("The prober answers from the cache", func() {
			factory, created := engines(loaded)
			p := New(factory, time.Second).WithCache(cache)
			first, err := p.Probe(context.Background(), "/media/cached.mkv")
			So(err, ShouldBeNil)
			second, err := p.Probe(context.Background(), "/media/cached.mkv")
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
			So(*created, ShouldHaveLength, 1)
		})
	})
}
