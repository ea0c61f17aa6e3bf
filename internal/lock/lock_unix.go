//go:build !windows

package lock

import (
	"os"
	"syscall"
)

// isProcessRunning はPIDのプロセスが実行中かどうかを確認する
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
