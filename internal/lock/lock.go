// Package lock は同一リポジトリに対するオーケストレーターの多重起動を防ぐ
package lock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/douhashi/oyakata/internal/logger"
)

// ErrAlreadyLocked は別プロセスがロックを保持している場合に返される
var ErrAlreadyLocked = errors.New("another instance is already running")

// ProcessInfo はPIDファイルに保存する情報
type ProcessInfo struct {
	PID         int
	StartTime   time.Time
	ProjectPath string
}

// Lock はPIDファイルベースのプロセスロック
type Lock struct {
	path        string
	projectPath string
	logger      logger.Logger
	acquired    bool
}

// New は新しいLockを作成する
func New(path, projectPath string, log logger.Logger) *Lock {
	return &Lock{path: path, projectPath: projectPath, logger: log}
}

// Acquire はロックを取得する。
// 生きているプロセスのPIDファイルが存在する場合はErrAlreadyLockedを返す。
// 死んだプロセスの残したPIDファイルは回収して取得を続行する。
func (l *Lock) Acquire() error {
	if info, err := readPIDFile(l.path); err == nil {
		if isProcessRunning(info.PID) {
			return fmt.Errorf("%w (pid %d, started %s)",
				ErrAlreadyLocked, info.PID, info.StartTime.Format(time.RFC3339))
		}
		l.logger.Warn("reclaiming stale lock file", "path", l.path, "stale_pid", info.PID)
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		// 読めないPIDファイルも残骸として回収する
		l.logger.Warn("removing unreadable lock file", "path", l.path, "error", err)
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("failed to remove unreadable lock file: %w", err)
		}
	}

	info := &ProcessInfo{
		PID:         os.Getpid(),
		StartTime:   time.Now(),
		ProjectPath: l.projectPath,
	}
	if err := writePIDFile(l.path, info); err != nil {
		return err
	}

	l.acquired = true
	l.logger.Debug("lock acquired", "path", l.path, "pid", info.PID)
	return nil
}

// Read はPIDファイルを読み込んでロック保持者の情報を返す。
// ファイルが存在しない場合はos.IsNotExistが真になるエラーを返す。
func Read(path string) (*ProcessInfo, error) {
	return readPIDFile(path)
}

// Alive はロック保持者のプロセスが生存しているかを返す
func (info *ProcessInfo) Alive() bool {
	return isProcessRunning(info.PID)
}

// Release は取得済みのロックを解放する。未取得の場合は何もしない。
func (l *Lock) Release() error {
	if !l.acquired {
		return nil
	}
	l.acquired = false

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	l.logger.Debug("lock released", "path", l.path)
	return nil
}

// writePIDFile はPIDファイルを作成する
func writePIDFile(path string, info *ProcessInfo) error {
	content := fmt.Sprintf("%d\n%s\n%s",
		info.PID,
		info.StartTime.Format(time.RFC3339),
		info.ProjectPath)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// readPIDFile はPIDファイルを読み込む
func readPIDFile(path string) (*ProcessInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("invalid PID file format")
	}

	pid, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("invalid PID: %w", err)
	}

	startTime, err := time.Parse(time.RFC3339, lines[1])
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}

	return &ProcessInfo{
		PID:         pid,
		StartTime:   startTime,
		ProjectPath: lines[2],
	}, nil
}
