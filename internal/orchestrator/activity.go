package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogType はアクティビティログの種別
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
	LogClaude  LogType = "claude"
)

// LogEntry はアクティビティログの1エントリ
type LogEntry struct {
	ID        string
	Timestamp time.Time
	Type      LogType
	Message   string
	IssueID   string
}

// アクティビティログが保持するエントリ数の上限
const maxLogEntries = 100

// ActivityLog は直近のエントリのみを保持するリングバッファ
type ActivityLog struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewActivityLog は新しいActivityLogを作成する
func NewActivityLog() *ActivityLog {
	return &ActivityLog{
		entries: make([]LogEntry, maxLogEntries),
	}
}

// Append はログエントリを追加する。上限を超えると最も古いエントリが上書きされる。
func (l *ActivityLog) Append(logType LogType, message, issueID string) LogEntry {
	entry := LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Type:      logType,
		Message:   message,
		IssueID:   issueID,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = entry
	l.next++
	if l.next == len(l.entries) {
		l.next = 0
		l.full = true
	}
	return entry
}

// Entries は保持中のエントリを古い順に返す
func (l *ActivityLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		out := make([]LogEntry, l.next)
		copy(out, l.entries[:l.next])
		return out
	}

	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// Len は保持中のエントリ数を返す
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full {
		return len(l.entries)
	}
	return l.next
}
