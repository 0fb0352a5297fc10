package player

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mpvsource/mpvsource/config"
	"github.com/mpvsource/mpvsource/constant"
	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/util"
	"github.com/mpvsource/mpvsource/where"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

var _ Handle = (*MPV)(nil)

// MPV implements Handle by running mpv as a child process and talking to it over
// a persistent JSON-IPC connection.
//
// The software render API is not reachable over IPC, so `vo=libmpv` is served by
// mpv's image output writing PNG frames into a per-handle directory, which
// ImageRenderer picks up.
type MPV struct {
	binary  string
	timeout time.Duration
	name    string
	args    []string

	frameDir   string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits

	conn    io.ReadWriteCloser
	writeMu sync.Mutex // Protects socket writes
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]chan ipcMessage

	queueMu sync.Mutex
	queue   []Event
	notify  chan struct{}
	wakeup  atomic.Pointer[func()]

	initialized atomic.Bool
	closed      atomic.Bool
}

// NewMPV creates an uninitialized mpv handle using the configured executable.
func NewMPV() *MPV {
	binary := viper.GetString(key.EngineBinary)
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{
		binary:  binary,
		timeout: config.Millis(key.EngineIPCTimeout, time.Second),
		name:    fmt.Sprintf("%s-%s", constant.App, uuid.NewString()),
		exited:  make(chan struct{}),
		pending: make(map[int64]chan ipcMessage),
		notify:  make(chan struct{}, 1),
	}
}

// NewHandle is a Factory producing mpv handles.
func NewHandle() (Handle, error) {
	m := NewMPV()
	if _, err := exec.LookPath(m.binary); err != nil {
		return nil, fmt.Errorf("locate engine: %w", err)
	}
	return m, nil
}

// SetOption records a startup option, translated to a command-line flag.
func (m *MPV) SetOption(name, value string) error {
	if m.initialized.Load() {
		return fmt.Errorf("option %s: engine already initialized", name)
	}

	if name == "vo" && value == "libmpv" {
		m.frameDir = filepath.Join(where.Temp(), m.name+"-frames")
		m.args = append(m.args,
			"--vo=image",
			"--vo-image-format=png",
			"--vo-image-png-compression=0",
			fmt.Sprintf("--vo-image-outdir=%s", m.frameDir),
		)
		return nil
	}

	m.args = append(m.args, fmt.Sprintf("--%s=%s", name, value))
	return nil
}

// Initialize spawns mpv and connects to its IPC server.
func (m *MPV) Initialize() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.initialized.Load() {
		return nil
	}

	m.socketPath = ipcEndpoint(where.Temp(), m.name)
	if m.frameDir != "" {
		if err := filesystem.API().MkdirAll(m.frameDir, os.ModePerm); err != nil {
			return fmt.Errorf("create frame directory: %w", err)
		}
	}

	// Do NOT read the user's mpv.conf: the session decides every output option.
	args := []string{
		"--no-config",
		"--no-terminal",
		"--idle=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
	}
	args = append(args, m.args...)

	m.cmd = exec.Command(m.binary, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Background goroutine to reap the process and prevent zombies
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	conn, err := m.waitForSocket()
	if err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.conn = conn
	m.initialized.Store(true)
	go m.readLoop()

	return nil
}

// waitForSocket polls until the mpv IPC endpoint is accepting connections.
func (m *MPV) waitForSocket() (io.ReadWriteCloser, error) {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return nil, fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := dialIPC(m.socketPath)
		if err == nil {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// readLoop continuously reads newline-delimited JSON from the persistent connection,
// routing replies to their waiters and events to the queue.
func (m *MPV) readLoop() {
	defer func() {
		m.failPending()
		if !m.closed.Load() {
			m.push(Event{ID: EventShutdown})
		}
	}()

	reader := bufio.NewReader(m.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 1 {
			m.dispatch(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !m.closed.Load() {
				log.Warnf("mpv ipc read error: %v", err)
			}
			return
		}
	}
}

func (m *MPV) dispatch(line []byte) {
	msg, err := decodeMessage(line)
	if err != nil {
		return // Skip unparseable lines
	}

	if msg.isEvent() {
		if ev, ok := msg.event(); ok {
			m.push(ev)
		}
		return
	}

	if msg.RequestID == nil {
		return
	}

	m.pendingMu.Lock()
	reply, ok := m.pending[*msg.RequestID]
	delete(m.pending, *msg.RequestID)
	m.pendingMu.Unlock()

	if ok {
		reply <- msg
	} else if err := msg.err(); err != nil {
		// Replies to async commands have no waiter.
		log.Debugf("mpv async command %d: %v", *msg.RequestID, err)
	}
}

func (m *MPV) failPending() {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	for id, reply := range m.pending {
		close(reply)
		delete(m.pending, id)
	}
}

func (m *MPV) push(ev Event) {
	m.queueMu.Lock()
	m.queue = append(m.queue, ev)
	m.queueMu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}

	if cb := m.wakeup.Load(); cb != nil {
		(*cb)()
	}
}

func (m *MPV) pop() (Event, bool) {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	if len(m.queue) == 0 {
		return Event{}, false
	}
	ev := m.queue[0]
	m.queue = m.queue[1:]
	return ev, true
}

// send writes one command. When wait is set it blocks, bounded by the IPC timeout, for the reply.
func (m *MPV) send(wait bool, args ...interface{}) (interface{}, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if !m.initialized.Load() {
		return nil, ErrNotInitialized
	}

	id := m.nextID.Add(1)
	payload, err := encodeCommand(id, !wait, args)
	if err != nil {
		return nil, err
	}

	var reply chan ipcMessage
	if wait {
		reply = make(chan ipcMessage, 1)
		m.pendingMu.Lock()
		m.pending[id] = reply
		m.pendingMu.Unlock()
	}

	if err := m.write(payload); err != nil {
		m.forget(id)
		return nil, err
	}

	if !wait {
		return nil, nil
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-reply:
		if !ok {
			return nil, ErrClosed
		}
		if err := msg.err(); err != nil {
			return nil, err
		}
		return msg.Data, nil
	case <-timer.C:
		m.forget(id)
		return nil, fmt.Errorf("%v: %w", args[0], ErrTimeout)
	}
}

func (m *MPV) write(payload []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if d, ok := m.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		_ = d.SetWriteDeadline(time.Now().Add(m.timeout))
	}
	if _, err := m.conn.Write(payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (m *MPV) forget(id int64) {
	m.pendingMu.Lock()
	delete(m.pending, id)
	m.pendingMu.Unlock()
}

func toArgs(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

// Command runs an engine command and waits for the reply.
func (m *MPV) Command(args ...string) error {
	_, err := m.send(true, toArgs(args)...)
	return err
}

// CommandAsync queues an engine command without waiting.
func (m *MPV) CommandAsync(args ...string) error {
	_, err := m.send(false, toArgs(args)...)
	return err
}

// SetProperty writes a property.
func (m *MPV) SetProperty(name string, value any) error {
	_, err := m.send(true, "set_property", name, value)
	return err
}

// GetProperty reads a property.
func (m *MPV) GetProperty(name string) (any, error) {
	return m.send(true, "get_property", name)
}

// ObserveProperty subscribes to property change events.
func (m *MPV) ObserveProperty(id int, name string) error {
	_, err := m.send(true, "observe_property", id, name)
	return err
}

// RequestLogMessages subscribes to engine log output.
func (m *MPV) RequestLogMessages(level string) error {
	_, err := m.send(true, "request_log_messages", level)
	return err
}

// SetWakeupCallback registers the event availability callback.
func (m *MPV) SetWakeupCallback(cb func()) {
	if cb == nil {
		m.wakeup.Store(nil)
		return
	}
	m.wakeup.Store(&cb)
}

// WaitEvent pops the next queued event, waiting up to timeout.
func (m *MPV) WaitEvent(timeout time.Duration) Event {
	deadline := time.Now().Add(timeout)
	for {
		if ev, ok := m.pop(); ok {
			return ev
		}
		remaining := time.Until(deadline)
		if timeout <= 0 || remaining <= 0 {
			return Event{ID: EventNone}
		}

		timer := time.NewTimer(remaining)
		select {
		case <-m.notify:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// NewRenderContext returns the image-backed software renderer.
func (m *MPV) NewRenderContext() (RenderContext, error) {
	if m.frameDir == "" {
		return nil, errors.New("render context requires the vo=libmpv option")
	}
	if !m.initialized.Load() {
		return nil, ErrNotInitialized
	}
	return NewImageRenderer(m.frameDir)
}

// Destroy shuts down the mpv process and cleans up resources.
func (m *MPV) Destroy() {
	if m.closed.Swap(true) {
		return
	}

	if m.initialized.Load() {
		// Try graceful quit; the closed flag is already set so bypass send.
		if payload, err := encodeCommand(m.nextID.Add(1), true, []interface{}{"quit"}); err == nil {
			_ = m.write(payload)
		}

		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = killProcess(m.cmd)
		}
		_ = m.conn.Close()
	}

	if endpointOwned && m.socketPath != "" {
		_ = filesystem.API().Remove(m.socketPath)
	}
	if m.frameDir != "" {
		_ = util.Delete(m.frameDir)
	}
}
