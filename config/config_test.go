package config

import (
	"testing"
	"time"

	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name, field := range Default {
				So(viper.Get(name), ShouldEqual, field.Value)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("audio.max_buffer_ms")
			So(result, ShouldEqual, "audio_max_buffer_ms")
		})

		Convey("Env names carry the application prefix", func() {
			f := Default[key.AudioLead]
			So(f.Env(), ShouldEqual, "MPVSOURCE_AUDIO_LEAD_MS")
		})
	})
}

func TestMillis(t *testing.T) {
	Convey("Millis", t, func() {
		_ = Setup()

		Convey("Should convert registered millisecond keys", func() {
			So(Millis(key.AudioLead, time.Second), ShouldEqual, 100*time.Millisecond)
		})

		Convey("Should fall back when the key is unset or zero", func() {
			viper.Set("audio.unused_ms", 0)
			So(Millis("audio.unused_ms", 7*time.Millisecond), ShouldEqual, 7*time.Millisecond)
		})
	})
}
