package player

import (
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/log"
	"github.com/samber/lo"
	"golang.org/x/image/draw"
)

const frameExt = ".png"

var _ RenderContext = (*ImageRenderer)(nil)

// ImageRenderer is a software render context fed by numbered image files that
// the engine writes into a directory. The engine restarts its numbering each
// time it recreates the video output, so frames are ordered by arrival.
type ImageRenderer struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu       sync.Mutex
	latest   string
	rendered string
	skipped  []string
	update   func()
}

// NewImageRenderer starts watching dir for new frames.
func NewImageRenderer(dir string) (*ImageRenderer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("frame watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	r := &ImageRenderer{
		dir:     dir,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go r.watch()
	return r, nil
}

func (r *ImageRenderer) watch() {
	defer close(r.done)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(ev.Name, frameExt) {
				continue
			}
			r.offer(ev.Name, ev.Has(fsnotify.Create))
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Debugf("frame watcher: %v", err)
		}
	}
}

// offer records path as the newest frame. A repeated event for the current
// frame is ignored unless created marks the file as written anew.
func (r *ImageRenderer) offer(path string, created bool) {
	r.mu.Lock()
	if path == r.latest {
		if !created || r.rendered != path {
			r.mu.Unlock()
			return
		}
		r.rendered = ""
	} else {
		if r.latest != "" && r.latest != r.rendered {
			r.skipped = append(r.skipped, r.latest)
		}
		r.latest = path
		r.skipped = lo.Without(r.skipped, path)
	}
	cb := r.update
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// SetUpdateCallback registers the frame-ready callback.
func (r *ImageRenderer) SetUpdateCallback(cb func()) {
	r.mu.Lock()
	r.update = cb
	r.mu.Unlock()
}

// Update reports whether a frame newer than the last rendered one exists.
func (r *ImageRenderer) Update() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest != "" && r.latest != r.rendered
}

// Render decodes the newest frame and writes it as BGRA into buf, scaling to w x h.
// A frame still being written fails to decode; the caller retries on its next tick.
func (r *ImageRenderer) Render(w, h, stride int, buf []byte) error {
	if w <= 0 || h <= 0 || stride < w*4 {
		return fmt.Errorf("render: invalid geometry %dx%d stride %d", w, h, stride)
	}
	if len(buf) < stride*h {
		return fmt.Errorf("render: buffer holds %d bytes, need %d", len(buf), stride*h)
	}

	r.mu.Lock()
	path := r.latest
	if path == "" {
		path = r.rendered
	}
	r.mu.Unlock()
	if path == "" {
		return fmt.Errorf("render: no frame available")
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	img, err := png.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}

	dst := &image.RGBA{Pix: buf[:stride*h], Stride: stride, Rect: image.Rect(0, 0, w, h)}
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	}
	swapRedBlue(dst.Pix, w, h, stride)

	r.mu.Lock()
	stale := r.skipped
	r.skipped = nil
	if r.rendered != "" && r.rendered != path {
		stale = append(stale, r.rendered)
	}
	r.rendered = path
	r.mu.Unlock()
	r.prune(path, stale)

	return nil
}

// prune removes frames that will never be rendered again, sparing keep.
func (r *ImageRenderer) prune(keep string, stale []string) {
	for _, p := range stale {
		if p == keep {
			continue
		}
		_ = filesystem.API().Remove(p)
	}
}

// Free stops the watcher.
func (r *ImageRenderer) Free() {
	_ = r.watcher.Close()
	<-r.done
}

// swapRedBlue converts RGBA rows to BGRA in place.
func swapRedBlue(pix []byte, w, h, stride int) {
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+2] = row[x+2], row[x]
		}
	}
}
