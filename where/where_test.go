package where

import (
	"path/filepath"
	"testing"

	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Directories are created on demand", func() {
			for _, path := range []string{Config(), Cache(), Logs(), Temp()} {
				So(path, ShouldNotBeEmpty)
				So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			}
		})

		Convey("Files live inside their directories", func() {
			So(filepath.Dir(Settings()), ShouldEqual, Config())
			So(filepath.Dir(ProbeCache()), ShouldEqual, Cache())
		})

		Convey("The config directory can be overridden", func() {
			t.Setenv(EnvConfigPath, "/custom/config")
			So(Config(), ShouldEqual, "/custom/config")
		})
	})
}
