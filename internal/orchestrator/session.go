package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/yaml"
	"github.com/google/uuid"
)

// sessionRecord はセッションファイルに保存するスキーマ
type sessionRecord struct {
	SessionID      string    `yaml:"sessionId"`
	Status         string    `yaml:"status"`
	Queue          []string  `yaml:"queue"`
	Completed      []string  `yaml:"completed"`
	HumanReview    []string  `yaml:"humanReview"`
	CurrentIssueID string    `yaml:"currentIssueId,omitempty"`
	CurrentPhase   string    `yaml:"currentPhase,omitempty"`
	RetryCount     int       `yaml:"retryCount"`
	StartedAt      time.Time `yaml:"startedAt,omitempty"`
	LastActivityAt time.Time `yaml:"lastActivityAt,omitempty"`
	SavedAt        time.Time `yaml:"savedAt"`
	Settings       Settings  `yaml:"settings"`
}

// SessionStore はオーケストレーターの状態をYAMLファイルへ永続化する
type SessionStore struct {
	path   string
	logger logger.Logger
}

// NewSessionStore は新しいSessionStoreを作成する
func NewSessionStore(path string, log logger.Logger) *SessionStore {
	return &SessionStore{path: path, logger: log}
}

// Path はセッションファイルのパスを返す
func (s *SessionStore) Path() string {
	return s.path
}

// Exists はセッションファイルが存在するかを返す
func (s *SessionStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save は状態をセッションファイルへ保存する。
// セッションIDは保存のたびに新しく採番される。
func (s *SessionStore) Save(state *State) error {
	record := sessionRecord{
		SessionID:      uuid.NewString(),
		Status:         string(state.Status),
		Queue:          state.Queue,
		Completed:      state.Completed,
		HumanReview:    state.HumanReview,
		CurrentIssueID: state.CurrentIssueID,
		CurrentPhase:   string(state.CurrentPhase),
		RetryCount:     state.RetryCount,
		StartedAt:      state.StartedAt,
		LastActivityAt: state.LastActivityAt,
		SavedAt:        time.Now(),
		Settings:       state.Settings,
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := yaml.AtomicWrite(s.path, record); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Debug("session saved",
		"session_id", record.SessionID,
		"status", record.Status,
		"queue_size", len(record.Queue),
	)
	return nil
}

// Load はセッションファイルから状態を復元する。
// 戻り値の2番目は実行途中のセッションを復元したかどうか。
// ファイルが存在しない場合は(nil, false, nil)を返す。
//
// 復元ポリシー: 保存時のstatusがrunningまたはpausedの場合、statusはpausedとして
// 復元する。再起動後に死んだストリーミングセッションを黙って引き継がないためで、
// 再開は呼び出し側の明示的な操作に委ねる。保存時がidleの場合は
// queue/completed/humanReview/settingsのみを復元する。
func (s *SessionStore) Load() (*State, bool, error) {
	if !s.Exists() {
		return nil, false, nil
	}

	var record sessionRecord
	if err := yaml.Read(s.path, &record); err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	state := NewState(record.Settings)
	state.Queue = append([]string{}, record.Queue...)
	state.Completed = append([]string{}, record.Completed...)
	state.HumanReview = append([]string{}, record.HumanReview...)
	state.StartedAt = record.StartedAt
	state.LastActivityAt = record.LastActivityAt

	savedStatus := Status(record.Status)
	if savedStatus != StatusRunning && savedStatus != StatusPaused {
		s.logger.Debug("session restored", "status", string(state.Status), "queue_size", len(state.Queue))
		return state, false, nil
	}

	state.Status = StatusPaused
	state.CurrentIssueID = record.CurrentIssueID
	state.CurrentPhase = Phase(record.CurrentPhase)
	state.RetryCount = record.RetryCount

	s.logger.Info("active session restored as paused",
		"current_issue_id", state.CurrentIssueID,
		"current_phase", string(state.CurrentPhase),
		"queue_size", len(state.Queue),
	)
	return state, true, nil
}

// Clear はセッションファイルを削除する
func (s *SessionStore) Clear() error {
	if err := yaml.Remove(s.path); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Debug("session cleared", "path", s.path)
	return nil
}
