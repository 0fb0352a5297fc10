package util

import (
	"testing"

	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "item", "items"), ShouldEqual, "1 item")
		So(Quantify(2, "item", "items"), ShouldEqual, "2 items")
	})
}

func TestBaseName(t *testing.T) {
	Convey("BaseName", t, func() {
		So(BaseName("/media/show/ep01.mkv"), ShouldEqual, "ep01.mkv")
		So(BaseName(`C:\media\ep02.mkv`), ShouldEqual, "ep02.mkv")
		So(BaseName("ep03.mkv"), ShouldEqual, "ep03.mkv")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(150.0, 0, 100), ShouldEqual, 100.0)
		So(Clamp(-1, 0, 100), ShouldEqual, 0)
		So(Clamp(42, 0, 100), ShouldEqual, 42)
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete removes files and directories", t, func() {
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tmp/util/dir", 0o755))
		lo.Must0(fs.WriteFile("/tmp/util/dir/file", []byte("x"), 0o644))

		So(Delete("/tmp/util/dir/file"), ShouldBeNil)
		So(lo.Must(fs.Exists("/tmp/util/dir/file")), ShouldBeFalse)
		So(Delete("/tmp/util/dir"), ShouldBeNil)
		So(lo.Must(fs.Exists("/tmp/util/dir")), ShouldBeFalse)
		So(Delete("/tmp/util/missing"), ShouldNotBeNil)
	})
}
