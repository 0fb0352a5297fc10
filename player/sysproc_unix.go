//go:build !windows

package player

import (
	"io"
	"net"
	"os/exec"
	"path/filepath"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Kill the entire process group
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}

// ipcEndpoint returns the unix socket path mpv listens on.
func ipcEndpoint(dir, name string) string {
	return filepath.Join(dir, name+".sock")
}

func dialIPC(endpoint string) (io.ReadWriteCloser, error) {
	return net.Dial("unix", endpoint)
}

// endpointOwned reports whether the endpoint is a filesystem entry to remove on teardown.
const endpointOwned = true
