package player

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeFrame(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestSwapRedBlue(t *testing.T) {
	Convey("Given an RGBA row with padding", t, func() {
		pix := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 9}
		swapRedBlue(pix, 2, 1, 10)

		Convey("Red and blue trade places and padding is untouched", func() {
			So(pix, ShouldResemble, []byte{3, 2, 1, 4, 7, 6, 5, 8, 9, 9})
		})
	})
}

func TestImageRenderer(t *testing.T) {
	Convey("Given a frame directory", t, func() {
		dir := t.TempDir()
		r, err := NewImageRenderer(dir)
		So(err, ShouldBeNil)
		defer r.Free()
		// Frames offered by hand live outside the watched directory.
		frames := t.TempDir()

		Convey("Nothing is ready before the first frame", func() {
			So(r.Update(), ShouldBeFalse)
			buf := make([]byte, 4*4*4)
			So(r.Render(4, 4, 16, buf), ShouldNotBeNil)
		})

		Convey("A written frame is decoded as BGRA", func() {
			writeFrame(t, filepath.Join(frames, "00000001.png"), 4, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255})
			r.offer(filepath.Join(frames, "00000001.png"), true)
			So(r.Update(), ShouldBeTrue)

			buf := make([]byte, 4*4*4)
			So(r.Render(4, 4, 16, buf), ShouldBeNil)
			So(buf[:4], ShouldResemble, []byte{50, 100, 200, 255})
			So(r.Update(), ShouldBeFalse)

			Convey("and scaled to a different geometry with a wide stride", func() {
				out := make([]byte, 24*2)
				So(r.Render(2, 2, 24, out), ShouldBeNil)
				So(out[:4], ShouldResemble, []byte{50, 100, 200, 255})
				So(out[8:24], ShouldResemble, make([]byte, 16))
			})
		})

		Convey("Older frames are pruned after a render", func() {
			first := filepath.Join(frames, "00000001.png")
			second := filepath.Join(frames, "00000002.png")
			writeFrame(t, first, 2, 2, color.RGBA{A: 255})
			writeFrame(t, second, 2, 2, color.RGBA{R: 255, A: 255})
			r.offer(first, true)
			r.offer(second, true)

			buf := make([]byte, 2*2*4)
			So(r.Render(2, 2, 8, buf), ShouldBeNil)
			So(buf[2], ShouldEqual, byte(255))

			_, err := os.Stat(first)
			So(os.IsNotExist(err), ShouldBeTrue)

			Convey("and the previously rendered frame goes once a newer one renders", func() {
				third := filepath.Join(frames, "00000003.png")
				writeFrame(t, third, 2, 2, color.RGBA{A: 255})
				r.offer(third, true)
				So(r.Render(2, 2, 8, buf), ShouldBeNil)

				_, err := os.Stat(second)
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = os.Stat(third)
				So(err, ShouldBeNil)
			})
		})

		Convey("Numbering that restarts after a new video output is still picked up", func() {
			late := filepath.Join(frames, "00000900.png")
			writeFrame(t, late, 2, 2, color.RGBA{R: 255, A: 255})
			r.offer(late, true)
			buf := make([]byte, 2*2*4)
			So(r.Render(2, 2, 8, buf), ShouldBeNil)

			restart := filepath.Join(frames, "00000001.png")
			writeFrame(t, restart, 2, 2, color.RGBA{B: 255, A: 255})
			r.offer(restart, true)
			So(r.Update(), ShouldBeTrue)

			So(r.Render(2, 2, 8, buf), ShouldBeNil)
			So(buf[:4], ShouldResemble, []byte{255, 0, 0, 255})
			So(r.Update(), ShouldBeFalse)

			Convey("and a frame recreated under the shown name counts as new", func() {
				r.offer(restart, false)
				So(r.Update(), ShouldBeFalse)
				r.offer(restart, true)
				So(r.Update(), ShouldBeTrue)
			})
		})

		Convey("The watcher reports new files", func() {
			fired := make(chan struct{}, 8)
			r.SetUpdateCallback(func() { fired <- struct{}{} })
			writeFrame(t, filepath.Join(dir, "00000003.png"), 2, 2, color.RGBA{A: 255})

			select {
			case <-fired:
			case <-time.After(5 * time.Second):
			}
			So(r.Update(), ShouldBeTrue)
		})

		Convey("Bad geometry is refused", func() {
			So(r.Render(0, 4, 16, make([]byte, 64)), ShouldNotBeNil)
			So(r.Render(4, 4, 8, make([]byte, 64)), ShouldNotBeNil)
			So(r.Render(4, 4, 16, make([]byte, 10)), ShouldNotBeNil)
		})
	})
}
