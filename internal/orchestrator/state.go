package orchestrator

import (
	"time"

	"github.com/douhashi/oyakata/internal/config"
)

// Status は実行全体の状態
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Phase はキューアイテム1件ごとの処理フェーズ
type Phase string

const (
	PhaseWorking    Phase = "working"
	PhaseTesting    Phase = "testing"
	PhaseFixing     Phase = "fixing"
	PhaseCommitting Phase = "committing"
	PhaseReviewing  Phase = "reviewing"
)

// completedリストが保持する履歴の上限
const maxCompletedHistory = 10

// Settings は実行時に参照されるオーケストレーターの設定。
// セッションと一緒に永続化され、再開時に復元される。
type Settings struct {
	AutoCommit         bool   `yaml:"autoCommit"`
	RunLint            bool   `yaml:"runLint"`
	RunTests           bool   `yaml:"runTests"`
	RunBuild           bool   `yaml:"runBuild"`
	MaxRetries         int    `yaml:"maxRetries"`
	PriorityThreshold  string `yaml:"priorityThreshold"`
	RequireHumanReview bool   `yaml:"requireHumanReview"`
	RefactorRequeue    string `yaml:"refactorRequeue"`
}

// SettingsFromConfig は設定ファイルの値からSettingsを構築する
func SettingsFromConfig(cfg config.OrchestratorConfig) Settings {
	return Settings{
		AutoCommit:         cfg.AutoCommit,
		RunLint:            cfg.RunLint,
		RunTests:           cfg.RunTests,
		RunBuild:           cfg.RunBuild,
		MaxRetries:         cfg.MaxRetries,
		PriorityThreshold:  cfg.PriorityThreshold,
		RequireHumanReview: cfg.RequireHumanReview,
		RefactorRequeue:    cfg.RefactorRequeue,
	}
}

// State はオーケストレーターの全状態。
// 所有者はOrchestratorのみで、外部からはSnapshot経由で参照する。
type State struct {
	Status         Status
	CurrentIssueID string
	CurrentPhase   Phase
	Queue          []string
	Completed      []string
	HumanReview    []string
	RetryCount     int
	Progress       int
	Settings       Settings
	StartedAt      time.Time
	LastActivityAt time.Time
}

// NewState は初期状態のStateを作成する
func NewState(settings Settings) *State {
	return &State{
		Status:      StatusIdle,
		Queue:       []string{},
		Completed:   []string{},
		HumanReview: []string{},
		Settings:    settings,
	}
}

func (s *State) clone() *State {
	c := *s
	c.Queue = append([]string{}, s.Queue...)
	c.Completed = append([]string{}, s.Completed...)
	c.HumanReview = append([]string{}, s.HumanReview...)
	return &c
}

func (s *State) inQueue(id string) bool {
	for _, q := range s.Queue {
		if q == id {
			return true
		}
	}
	return false
}

func (s *State) inHumanReview(id string) bool {
	for _, r := range s.HumanReview {
		if r == id {
			return true
		}
	}
	return false
}

func (s *State) inCompleted(id string) bool {
	for _, c := range s.Completed {
		if c == id {
			return true
		}
	}
	return false
}

// removeFromQueue はキューからidを取り除く。存在しない場合は何もしない。
func (s *State) removeFromQueue(id string) bool {
	for i, q := range s.Queue {
		if q == id {
			s.Queue = append(s.Queue[:i], s.Queue[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) removeFromHumanReview(id string) bool {
	for i, r := range s.HumanReview {
		if r == id {
			s.HumanReview = append(s.HumanReview[:i], s.HumanReview[i+1:]...)
			return true
		}
	}
	return false
}

// appendCompleted は完了履歴へidを追加する。上限を超えた古い履歴は切り捨てる。
func (s *State) appendCompleted(id string) {
	s.Completed = append(s.Completed, id)
	if len(s.Completed) > maxCompletedHistory {
		s.Completed = s.Completed[len(s.Completed)-maxCompletedHistory:]
	}
}

// clearCurrentItem は処理中アイテムに関するフィールドをリセットする
func (s *State) clearCurrentItem() {
	s.CurrentIssueID = ""
	s.CurrentPhase = ""
	s.RetryCount = 0
}

// Snapshot は外部へ公開する状態のコピー
type Snapshot struct {
	Status         Status
	CurrentIssueID string
	CurrentPhase   Phase
	CurrentAction  string
	Queue          []string
	Completed      []string
	HumanReview    []string
	RetryCount     int
	Progress       int
	Settings       Settings
	StartedAt      time.Time
	LastActivityAt time.Time
}
