package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/douhashi/oyakata/internal/logger"
)

// StartOptions はエージェントセッション起動時のオプション
type StartOptions struct {
	WorkDir        string
	SessionID      string
	PermissionMode string
	SafeMode       bool
}

// AgentClient は外部コーディングエージェントプロセスを管理するインターフェース
type AgentClient interface {
	// Start は指定されたセッションIDに紐づくエージェントプロセスを起動する
	Start(ctx context.Context, opts StartOptions) error
	// Send はセッションにプロンプトを送信する
	Send(ctx context.Context, sessionID, text string) error
	// Events はセッションのイベントストリームを返す。
	// プロセスの標準出力が閉じるとチャネルも閉じる。
	Events(sessionID string) <-chan StreamEvent
	// Terminate はセッションのプロセスを終了する。冪等に呼び出せる。
	Terminate(ctx context.Context, sessionID string) error
}

// ProcessClient はAgentClientのサブプロセスベースの実装
type ProcessClient struct {
	command string
	logger  logger.Logger

	mu       sync.Mutex
	sessions map[string]*agentSession
}

var _ AgentClient = (*ProcessClient)(nil)

// NewProcessClient は新しいProcessClientを作成する
func NewProcessClient(command string, log logger.Logger) *ProcessClient {
	if command == "" {
		command = "claude"
	}
	return &ProcessClient{
		command:  command,
		logger:   log,
		sessions: make(map[string]*agentSession),
	}
}

// agentSession は起動済みエージェントプロセス1つ分の状態
type agentSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan StreamEvent

	done     chan struct{}
	stopOnce sync.Once

	writeMu sync.Mutex
}

func (s *agentSession) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.stdin != nil {
			_ = s.stdin.Close()
		}
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}

// CheckAgentExists はエージェントコマンドが存在するかチェックする
func (c *ProcessClient) CheckAgentExists() error {
	if _, err := exec.LookPath(c.command); err != nil {
		return fmt.Errorf("agent command not found: %s: %w", c.command, err)
	}
	return nil
}

// Start はエージェントプロセスを起動し、標準出力の読み取りを開始する
func (c *ProcessClient) Start(ctx context.Context, opts StartOptions) error {
	if opts.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	c.mu.Lock()
	if _, exists := c.sessions[opts.SessionID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("session already started: %s", opts.SessionID)
	}
	c.mu.Unlock()

	if err := c.CheckAgentExists(); err != nil {
		return err
	}

	args := BuildArgs(opts)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = opts.WorkDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start agent process: %w", err)
	}

	sess := &agentSession{
		cmd:    cmd,
		stdin:  stdin,
		events: make(chan StreamEvent, 64),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	c.sessions[opts.SessionID] = sess
	c.mu.Unlock()

	go c.drainStderr(opts.SessionID, stderr)
	go c.readEvents(opts.SessionID, sess, stdout)

	c.logger.Info("agent session started",
		"session_id", opts.SessionID,
		"pid", cmd.Process.Pid,
		"workdir", opts.WorkDir,
		"permission_mode", opts.PermissionMode,
	)
	return nil
}

// Send はセッションの標準入力にユーザーメッセージを書き込む
func (c *ProcessClient) Send(ctx context.Context, sessionID, text string) error {
	sess := c.lookup(sessionID)
	if sess == nil {
		return fmt.Errorf("unknown session: %s", sessionID)
	}

	payload, err := json.Marshal(newUserMessage(text))
	if err != nil {
		return fmt.Errorf("failed to encode prompt: %w", err)
	}
	payload = append(payload, '\n')

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if _, err := sess.stdin.Write(payload); err != nil {
		return fmt.Errorf("failed to deliver prompt: %w", err)
	}

	c.logger.Debug("prompt sent", "session_id", sessionID, "bytes", len(payload))
	return nil
}

// Events はセッションのイベントチャネルを返す。
// 未知のセッションに対しては閉じたチャネルを返す。
func (c *ProcessClient) Events(sessionID string) <-chan StreamEvent {
	sess := c.lookup(sessionID)
	if sess == nil {
		closed := make(chan StreamEvent)
		close(closed)
		return closed
	}
	return sess.events
}

// Terminate はセッションのプロセスを停止し、管理対象から取り除く
func (c *ProcessClient) Terminate(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	sess, ok := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	c.mu.Unlock()

	if !ok {
		return nil
	}

	sess.stop()
	c.logger.Debug("agent session terminated", "session_id", sessionID)
	return nil
}

func (c *ProcessClient) lookup(sessionID string) *agentSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[sessionID]
}

// readEvents は標準出力を1行ずつ読み取り、解析したイベントをチャネルへ送る。
// 標準出力が閉じた時点でイベントチャネルを閉じ、プロセスを回収する。
func (c *ProcessClient) readEvents(sessionID string, sess *agentSession, stdout io.Reader) {
	defer func() {
		_ = sess.cmd.Wait()
		close(sess.events)
		c.logger.Debug("agent event stream closed", "session_id", sessionID)
	}()

	reader := bufio.NewReaderSize(stdout, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		for _, ev := range ParseStreamLine(line) {
			select {
			case sess.events <- ev:
			case <-sess.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// drainStderr は標準エラー出力をログに流す
func (c *ProcessClient) drainStderr(sessionID string, stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 {
			c.logger.Debug("agent stderr", "session_id", sessionID, "line", string(line))
		}
	}
}

// userMessage は--input-format stream-jsonで送信するユーザーメッセージ
type userMessage struct {
	Type    string             `json:"type"`
	Message userMessagePayload `json:"message"`
}

type userMessagePayload struct {
	Role    string            `json:"role"`
	Content []userMessageText `json:"content"`
}

type userMessageText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newUserMessage(text string) userMessage {
	return userMessage{
		Type: "user",
		Message: userMessagePayload{
			Role:    "user",
			Content: []userMessageText{{Type: "text", Text: text}},
		},
	}
}
