//go:build !windows

package audio

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFIFO(t *testing.T) {
	Convey("Given a FIFO", t, func() {
		pipe, err := NewPipe()
		So(err, ShouldBeNil)
		defer pipe.Close()

		info, err := os.Stat(pipe.Path())
		So(err, ShouldBeNil)
		So(info.Mode()&os.ModeNamedPipe, ShouldNotEqual, 0)

		Convey("Reading before Open fails", func() {
			_, err := pipe.Read(make([]byte, 8))
			So(err, ShouldNotBeNil)
		})

		Convey("Opening does not wait for a writer", func() {
			So(pipe.Open(), ShouldBeNil)
			n, err := pipe.Read(make([]byte, 8))
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			Convey("and written bytes come through", func() {
				w, err := os.OpenFile(pipe.Path(), os.O_WRONLY, 0)
				So(err, ShouldBeNil)
				_, err = w.Write([]byte{1, 2, 3, 4})
				So(err, ShouldBeNil)

				buf := make([]byte, 8)
				n, err := pipe.Read(buf)
				So(err, ShouldBeNil)
				So(buf[:n], ShouldResemble, []byte{1, 2, 3, 4})

				So(w.Close(), ShouldBeNil)
				n, err = pipe.Read(buf)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("Closing removes the endpoint", func() {
			So(pipe.Open(), ShouldBeNil)
			So(pipe.Close(), ShouldBeNil)
			_, err := os.Stat(pipe.Path())
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}
