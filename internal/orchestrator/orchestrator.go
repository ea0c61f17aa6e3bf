// Package orchestrator はIssueキューを外部コーディングエージェントで
// 自律的に処理するビルドオーケストレーターを実装する。
// キュー先頭のIssueごとに 実装 → 検証 → 修正 → (レビュー|コミット) → クローズ
// のサイクルを回し、状態をセッションファイルへ永続化して再起動に耐える。
package orchestrator

import (
	"sync"
	"time"

	"github.com/douhashi/oyakata/internal/claude"
	"github.com/douhashi/oyakata/internal/git"
	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/silo"
	"github.com/douhashi/oyakata/internal/verify"
)

// エージェント実行1回あたりのタイムアウトの既定値
const defaultWorkTimeout = 10 * time.Minute

// Deps はOrchestratorの依存一式
type Deps struct {
	ProjectPath    string
	Issues         github.IssueService
	Agent          claude.AgentClient
	Verifier       verify.Runner
	Committer      git.Committer
	Silo           silo.Store
	Sessions       *SessionStore
	Logger         logger.Logger
	Settings       Settings
	WorkTimeout    time.Duration
	PermissionMode string
	SafeMode       bool
}

// StreamingSession は実行中のエージェント呼び出し1回分の状態
type StreamingSession struct {
	SessionID     string
	StartTime     time.Time
	CurrentAction string
	CurrentTool   string
}

// Orchestrator は自律ビルドオーケストレーターの状態所有者。
// 状態の変更はすべてOrchestratorのメソッドを経由する。
type Orchestrator struct {
	projectPath string

	issues    github.IssueService
	agent     claude.AgentClient
	verifier  verify.Runner
	committer git.Committer
	silo      silo.Store
	sessions  *SessionStore
	logger    logger.Logger

	workTimeout    time.Duration
	permissionMode string
	safeMode       bool

	mu        sync.Mutex
	state     *State
	streaming *StreamingSession

	activity *ActivityLog
	cache    *IssueCache

	notifyCh chan struct{}
}

// New は新しいOrchestratorを作成する
func New(deps Deps) *Orchestrator {
	timeout := deps.WorkTimeout
	if timeout <= 0 {
		timeout = defaultWorkTimeout
	}

	return &Orchestrator{
		projectPath:    deps.ProjectPath,
		issues:         deps.Issues,
		agent:          deps.Agent,
		verifier:       deps.Verifier,
		committer:      deps.Committer,
		silo:           deps.Silo,
		sessions:       deps.Sessions,
		logger:         deps.Logger,
		workTimeout:    timeout,
		permissionMode: deps.PermissionMode,
		safeMode:       deps.SafeMode,
		state:          NewState(deps.Settings),
		activity:       NewActivityLog(),
		cache:          NewIssueCache(deps.Issues, deps.Logger),
	}
}

// Activity はアクティビティログを返す
func (o *Orchestrator) Activity() *ActivityLog {
	return o.activity
}

// Snapshot は現在の状態のコピーを返す
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Status:         o.state.Status,
		CurrentIssueID: o.state.CurrentIssueID,
		CurrentPhase:   o.state.CurrentPhase,
		Queue:          append([]string{}, o.state.Queue...),
		Completed:      append([]string{}, o.state.Completed...),
		HumanReview:    append([]string{}, o.state.HumanReview...),
		RetryCount:     o.state.RetryCount,
		Progress:       o.state.Progress,
		Settings:       o.state.Settings,
		StartedAt:      o.state.StartedAt,
		LastActivityAt: o.state.LastActivityAt,
	}
	if o.streaming != nil {
		snap.CurrentAction = o.streaming.CurrentAction
	}
	return snap
}

// Notifications は状態変化の通知チャネルを返す。
// 通知は合流され、受信側は通知のたびにSnapshotで最新状態を読む。
func (o *Orchestrator) Notifications() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.notifyCh == nil {
		o.notifyCh = make(chan struct{}, 1)
	}
	return o.notifyCh
}

// UpdateSettings は設定を差し替え、即座に永続化する
func (o *Orchestrator) UpdateSettings(settings Settings) {
	o.mu.Lock()
	o.state.Settings = settings
	o.mu.Unlock()
	o.persist()
}

// LoadSession は永続化されたセッションを読み込んで状態を差し替える。
// 戻り値は実行途中のセッションを復元したかどうか。
func (o *Orchestrator) LoadSession() (bool, error) {
	state, active, err := o.sessions.Load()
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}

	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
	o.notify()
	return active, nil
}

// SaveSession は現在の状態を永続化する
func (o *Orchestrator) SaveSession() error {
	o.mu.Lock()
	o.state.LastActivityAt = time.Now()
	snapshot := o.state.clone()
	o.mu.Unlock()

	if err := o.sessions.Save(snapshot); err != nil {
		return err
	}
	o.notify()
	return nil
}

// ClearSession は永続化されたセッションを削除する
func (o *Orchestrator) ClearSession() error {
	return o.sessions.Clear()
}

// persist は状態を保存する。失敗してもループは継続し、ログにのみ残す。
func (o *Orchestrator) persist() {
	if err := o.SaveSession(); err != nil {
		o.logger.Error("failed to persist session", "error", err)
	}
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	ch := o.notifyCh
	o.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) settings() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Settings
}
