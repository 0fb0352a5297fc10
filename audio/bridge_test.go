package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingSink struct {
	mu      sync.Mutex
	buffers []*Buffer
}

func (s *recordingSink) OutputAudio(buf *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers = append(s.buffers, buf)
}

func (s *recordingSink) snapshot() []*Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Buffer(nil), s.buffers...)
}

// scriptedPipe hands out queued chunks and then reports no data.
type scriptedPipe struct {
	mu        sync.Mutex
	openFails int
	opens     int
	chunks    [][]byte
	readErr   error
	closed    bool
}

func (p *scriptedPipe) Path() string { return "scripted" }

func (p *scriptedPipe) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	if p.opens <= p.openFails {
		return ErrPipeUnavailable
	}
	return nil
}

func (p *scriptedPipe) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.chunks) == 0 {
		return 0, p.readErr
	}
	n := copy(buf, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *scriptedPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *scriptedPipe) feed(chunks ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, chunks...)
}

func testOptions() Options {
	return Options{
		Lead:           100 * time.Millisecond,
		MaxBuffer:      2 * time.Second,
		OpenRetries:    3,
		OpenRetryDelay: time.Millisecond,
		IdleSleep:      time.Millisecond,
		ChunkSize:      4096,
	}
}

func frames(n, channels int) []byte {
	return make([]byte, n*channels*BytesPerSample)
}

func TestBridgeQueue(t *testing.T) {
	Convey("Given a bridge at 48 kHz stereo", t, func() {
		anchor := NewAnchor(48000, 2)
		sink := &recordingSink{}
		b := NewBridge(&scriptedPipe{}, sink, func() uint64 { return 0 }, anchor, testOptions())
		limit := 48000 * 2 * BytesPerSample * 2

		Convey("Audio read before the first video frame is discarded", func() {
			b.push(frames(100, 2))
			So(b.QueueLen(), ShouldEqual, 0)
		})

		Convey("When anchored", func() {
			anchor.StartAt(1)

			Convey("the queue never grows past two seconds of audio", func() {
				chunk := frames(512, 2)
				overflowed := false
				for i := 0; i < 400; i++ {
					b.push(chunk)
					So(b.QueueLen(), ShouldBeLessThanOrEqualTo, limit)
					if b.QueueLen() == 0 {
						overflowed = true
						break
					}
				}
				So(overflowed, ShouldBeTrue)
				So(anchor.Started(), ShouldBeFalse)

				Convey("and the next anchor starts a fresh timeline", func() {
					b.push(chunk)
					So(b.QueueLen(), ShouldEqual, 0)

					anchor.StartAt(9_000_000_000)
					b.push(chunk)
					So(b.pace(9_000_000_000), ShouldBeTrue)
					So(sink.snapshot()[0].Timestamp, ShouldEqual, uint64(9_000_000_000))
				})
			})

			Convey("pausing discards the queue and drops new audio", func() {
				b.push(frames(100, 2))
				So(b.QueueLen(), ShouldBeGreaterThan, 0)

				b.SetPaused(true)
				So(b.QueueLen(), ShouldEqual, 0)
				So(anchor.Started(), ShouldBeFalse)

				anchor.StartAt(1)
				b.push(frames(100, 2))
				So(b.QueueLen(), ShouldEqual, 0)
				So(b.pace(1_000_000_000), ShouldBeFalse)
				So(sink.snapshot(), ShouldBeEmpty)
			})

			Convey("flushing empties the queue", func() {
				b.push(frames(100, 2))
				b.RequestFlush()
				So(b.QueueLen(), ShouldEqual, 0)
			})

			Convey("a format change flushes and keeps the timeline", func() {
				anchor.Advance(4800)
				before := anchor.Timestamp()
				b.push(frames(100, 2))
				b.Reconfigure(44100, 2)
				So(b.QueueLen(), ShouldEqual, 0)
				So(anchor.Timestamp(), ShouldEqual, before)
			})
		})
	})
}

func TestBridgePacing(t *testing.T) {
	Convey("Given a mono 1 kHz timeline anchored at one second", t, func() {
		anchor := NewAnchor(1000, 1)
		sink := &recordingSink{}
		b := NewBridge(&scriptedPipe{}, sink, func() uint64 { return 0 }, anchor, testOptions())
		anchor.StartAt(1_000_000_000)
		b.push(frames(1000, 1))

		Convey("Only the lead is released at the anchor instant", func() {
			So(b.pace(1_000_000_000), ShouldBeTrue)
			out := sink.snapshot()
			So(out, ShouldHaveLength, 1)
			So(out[0].Frames, ShouldEqual, uint32(100))
			So(out[0].Timestamp, ShouldEqual, uint64(1_000_000_000))
			So(out[0].Data, ShouldHaveLength, 400)

			Convey("nothing more is due until time passes", func() {
				So(b.pace(1_000_000_000), ShouldBeFalse)
			})

			Convey("later chunks continue the timeline", func() {
				So(b.pace(1_500_000_000), ShouldBeTrue)
				out := sink.snapshot()
				So(out[1].Frames, ShouldEqual, uint32(500))
				So(out[1].Timestamp, ShouldEqual, uint64(1_100_000_000))
			})

			Convey("emission is capped by what is queued", func() {
				So(b.pace(10_000_000_000), ShouldBeTrue)
				So(sink.snapshot()[1].Frames, ShouldEqual, uint32(900))
				So(b.pace(20_000_000_000), ShouldBeFalse)
			})
		})

		Convey("An anchor in the future releases nothing", func() {
			So(b.pace(500_000_000), ShouldBeFalse)
		})

		Convey("Partial frames stay queued", func() {
			b.RequestFlush()
			b.push([]byte{1, 2})
			So(b.pace(2_000_000_000), ShouldBeFalse)
			So(b.QueueLen(), ShouldEqual, 2)
		})
	})
}

func TestBridgeWorker(t *testing.T) {
	Convey("Given a running worker", t, func() {
		anchor := NewAnchor(1000, 1)
		sink := &recordingSink{}
		pipe := &scriptedPipe{openFails: 1}
		var now uint64 = 1_000_000_000
		var clockMu sync.Mutex
		clock := func() uint64 {
			clockMu.Lock()
			defer clockMu.Unlock()
			now += 10_000_000
			return now
		}
		anchor.StartAt(1_000_000_000)

		b := NewBridge(pipe, sink, clock, anchor, testOptions())
		pipe.feed(frames(200, 1), frames(200, 1))
		b.Start()

		Convey("It retries the open and paces what it reads", func() {
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) && anchor.Frames() < 400 {
				time.Sleep(time.Millisecond)
			}
			b.Stop()

			So(anchor.Frames(), ShouldEqual, uint64(400))
			var last uint64
			for _, buf := range sink.snapshot() {
				So(buf.Timestamp, ShouldBeGreaterThanOrEqualTo, last)
				last = buf.Timestamp
			}
			pipe.mu.Lock()
			So(pipe.opens, ShouldEqual, 2)
			pipe.mu.Unlock()
		})

		Convey("Stop is idempotent", func() {
			b.Stop()
			b.Stop()
		})
	})

	Convey("A channel that never opens leaves audio absent", t, func() {
		pipe := &scriptedPipe{openFails: 100}
		b := NewBridge(pipe, &recordingSink{}, func() uint64 { return 0 }, NewAnchor(48000, 2), testOptions())
		b.Start()
		select {
		case <-b.done:
		case <-time.After(5 * time.Second):
		}
		So(pipe.opens, ShouldEqual, 3)
		b.Stop()
	})

	Convey("A read failure stops the worker", t, func() {
		pipe := &scriptedPipe{readErr: errors.New("broken")}
		b := NewBridge(pipe, &recordingSink{}, func() uint64 { return 0 }, NewAnchor(48000, 2), testOptions())
		b.Start()
		select {
		case <-b.done:
		case <-time.After(5 * time.Second):
		}
		b.Stop()
		So(b.QueueLen(), ShouldEqual, 0)
	})

	Convey("Stopping an unstarted bridge returns at once", t, func() {
		b := NewBridge(&scriptedPipe{}, &recordingSink{}, func() uint64 { return 0 }, NewAnchor(48000, 2), testOptions())
		b.Stop()
	})
}
