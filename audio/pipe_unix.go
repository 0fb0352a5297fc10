//go:build !windows

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mpvsource/mpvsource/where"
	"golang.org/x/sys/unix"
)

const readWait = time.Millisecond

// FIFO is a named pipe special file.
type FIFO struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewPipe creates the FIFO special file in the session temp directory.
func NewPipe() (*FIFO, error) {
	path := filepath.Join(where.Temp(), pipeName())
	_ = os.Remove(path)
	if err := unix.Mkfifo(path, 0o600); err != nil {
		return nil, fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return &FIFO{path: path}, nil
}

func (f *FIFO) Path() string {
	return f.path
}

// Open opens the reader end without waiting for a writer.
func (f *FIFO) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file != nil {
		return nil
	}
	file, err := os.OpenFile(f.path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipeUnavailable, err)
	}
	f.file = file
	return nil
}

func (f *FIFO) Read(p []byte) (int, error) {
	f.mu.Lock()
	file := f.file
	f.mu.Unlock()
	if file == nil {
		return 0, os.ErrClosed
	}

	_ = file.SetReadDeadline(time.Now().Add(readWait))
	n, err := file.Read(p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, syscall.EAGAIN):
		// No writer yet, writer between reopenings, or simply no data.
		return n, nil
	default:
		return n, err
	}
}

func (f *FIFO) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.file != nil {
		err = f.file.Close()
		f.file = nil
	}
	if rmErr := os.Remove(f.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
