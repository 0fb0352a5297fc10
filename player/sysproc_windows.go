//go:build windows

package player

import (
	"io"
	"os"
	"os/exec"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	// CREATE_NO_WINDOW keeps the engine from flashing a console.
	return &syscall.SysProcAttr{CreationFlags: 0x08000000}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// ipcEndpoint returns the named pipe mpv listens on; dir is unused on Windows.
func ipcEndpoint(_, name string) string {
	return `\\.\pipe\` + name
}

func dialIPC(endpoint string) (io.ReadWriteCloser, error) {
	return os.OpenFile(endpoint, os.O_RDWR, 0)
}

const endpointOwned = false
