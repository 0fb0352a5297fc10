//go:build windows

package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/windows"
)

const (
	pipeBufferSize = 64 * 1024

	errPipeListening = syscall.Errno(536) // ERROR_PIPE_LISTENING
)

// NamedPipe is the server end of a Windows named pipe in non-waiting mode.
type NamedPipe struct {
	path string

	mu        sync.Mutex
	handle    windows.Handle
	connected bool
}

// NewPipe creates the named pipe; the engine connects to it as a client.
func NewPipe() (*NamedPipe, error) {
	path := `\\.\pipe\` + pipeName()
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateNamedPipe(
		name,
		windows.PIPE_ACCESS_INBOUND,
		windows.PIPE_TYPE_BYTE|windows.PIPE_READMODE_BYTE|windows.PIPE_NOWAIT,
		1,
		pipeBufferSize,
		pipeBufferSize,
		0,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create pipe %s: %w", path, err)
	}
	return &NamedPipe{path: path, handle: h}, nil
}

func (p *NamedPipe) Path() string {
	return p.path
}

// Open checks whether the engine has connected.
func (p *NamedPipe) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == windows.InvalidHandle {
		return os.ErrClosed
	}
	if p.connected {
		return nil
	}
	err := windows.ConnectNamedPipe(p.handle, nil)
	switch {
	case err == nil, errors.Is(err, windows.ERROR_PIPE_CONNECTED), errors.Is(err, windows.ERROR_NO_DATA):
		p.connected = true
		return nil
	case errors.Is(err, errPipeListening):
		return ErrPipeUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrPipeUnavailable, err)
	}
}

func (p *NamedPipe) Read(buf []byte) (int, error) {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == windows.InvalidHandle {
		return 0, os.ErrClosed
	}

	var n uint32
	err := windows.ReadFile(h, buf, &n, nil)
	switch {
	case err == nil:
		return int(n), nil
	case errors.Is(err, windows.ERROR_NO_DATA), errors.Is(err, errPipeListening):
		return 0, nil
	case errors.Is(err, windows.ERROR_BROKEN_PIPE):
		// The engine closed its end; wait for it to reconnect.
		p.mu.Lock()
		_ = windows.DisconnectNamedPipe(h)
		p.connected = false
		_ = windows.ConnectNamedPipe(h, nil)
		p.mu.Unlock()
		return 0, nil
	default:
		return int(n), err
	}
}

func (p *NamedPipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == windows.InvalidHandle {
		return nil
	}
	_ = windows.DisconnectNamedPipe(p.handle)
	err := windows.CloseHandle(p.handle)
	p.handle = windows.InvalidHandle
	return err
}
