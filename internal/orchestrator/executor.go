package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/douhashi/oyakata/internal/claude"
	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/silo"
	"github.com/google/uuid"
)

// 解決結果を待っている間に表示する汎用ラベル
const actionProcessing = "processing"

// executeStreamingWork はエージェントへのストリーミング実行1回分を担う。
// プロンプトを構築してセッションを起動し、イベントストリームと
// タイムアウトを競わせて成功・失敗を解決する。
// 解決は一度だけ行われ、どの経路でもセッションは必ず破棄される。
func (o *Orchestrator) executeStreamingWork(ctx context.Context, issueID string, fixMode bool, errorText string) bool {
	issue, err := o.cache.Get(ctx, issueID)
	if err != nil {
		o.logger.Error("failed to load issue for work", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Could not load issue #%s: %v", issueID, err), issueID)
		return false
	}

	prompt := o.buildPrompt(issue, fixMode, errorText)
	sessionID := uuid.NewString()

	o.setStreamingSession(&StreamingSession{
		SessionID:     sessionID,
		StartTime:     time.Now(),
		CurrentAction: "starting agent session",
	})
	defer o.setStreamingSession(nil)

	if err := o.agent.Start(ctx, claude.StartOptions{
		WorkDir:        o.projectPath,
		SessionID:      sessionID,
		PermissionMode: o.permissionMode,
		SafeMode:       o.safeMode,
	}); err != nil {
		o.logger.Error("failed to start agent session", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Agent could not be started: %v", err), issueID)
		return false
	}
	// セッションの終了はどの解決経路でも一度だけ行う
	defer func() {
		if err := o.agent.Terminate(context.WithoutCancel(ctx), sessionID); err != nil {
			o.logger.Warn("failed to terminate agent session", "session_id", sessionID, "error", err)
		}
	}()

	if err := o.agent.Send(ctx, sessionID, prompt); err != nil {
		o.logger.Error("failed to deliver prompt", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Prompt could not be delivered: %v", err), issueID)
		return false
	}

	success := o.awaitResolution(ctx, issueID, sessionID)
	o.updateProgressNote(issue, fixMode, success)
	return success
}

// awaitResolution はイベントストリームとタイムアウトをselectで競わせ、
// 最初に確定した結果のみを採用する。
func (o *Orchestrator) awaitResolution(ctx context.Context, issueID, sessionID string) bool {
	events := o.agent.Events(sessionID)
	timer := time.NewTimer(o.workTimeout)
	defer timer.Stop()

	resolved := false
	success := false
	for !resolved {
		select {
		case ev, ok := <-events:
			if !ok {
				// resultイベントなしでストリームが終了した
				resolved = true
				o.logger.Warn("agent stream ended without result", "issue_id", issueID, "session_id", sessionID)
				o.activity.Append(LogError, "Agent session ended unexpectedly", issueID)
				continue
			}
			if done, ok := o.handleStreamEvent(ev, issueID); done {
				resolved = true
				success = ok
			}
		case <-timer.C:
			resolved = true
			o.logger.Error("agent work timed out", "issue_id", issueID, "session_id", sessionID, "timeout", o.workTimeout)
			o.activity.Append(LogError, fmt.Sprintf("Work timed out after %s", o.workTimeout), issueID)
		case <-ctx.Done():
			resolved = true
			o.logger.Warn("agent work cancelled", "issue_id", issueID, "session_id", sessionID)
		}
	}
	return success
}

// handleStreamEvent は1イベントを処理する。
// resultイベントを受け取った場合のみ(true, 成否)を返す。
func (o *Orchestrator) handleStreamEvent(ev claude.StreamEvent, issueID string) (bool, bool) {
	switch ev.ChunkType {
	case claude.ChunkTypeToolStart, claude.ChunkTypeToolUse:
		o.updateCurrentAction(ev.ToolName, actionLabel(ev))
	case claude.ChunkTypeToolResult:
		o.updateCurrentAction("", actionProcessing)
	case claude.ChunkTypeText:
		if ev.Content != "" {
			o.activity.Append(LogClaude, truncateMessage(ev.Content, 500), issueID)
		}
	case claude.ChunkTypeResult:
		if ev.IsError {
			o.logger.Error("agent reported an error result", "issue_id", issueID, "result", truncateMessage(ev.Content, 500))
			o.activity.Append(LogError, fmt.Sprintf("Agent failed: %s", truncateMessage(ev.Content, 500)), issueID)
			return true, false
		}
		if ev.Content != "" {
			o.activity.Append(LogClaude, truncateMessage(ev.Content, 500), issueID)
		}
		return true, true
	}
	return false, false
}

// buildPrompt は実装モードまたは修正モードのタスクプロンプトを構築する。
// 過去の進捗ノートがあれば文脈として埋め込む。
func (o *Orchestrator) buildPrompt(issue *github.Issue, fixMode bool, errorText string) string {
	var siloContext string
	if note, err := o.silo.Read(issue.ID); err != nil {
		o.logger.Warn("failed to read progress note", "issue_id", issue.ID, "error", err)
	} else {
		siloContext = silo.FormatContext(note)
	}

	vars := &claude.TemplateVariables{
		IssueID:     issue.ID,
		IssueTitle:  issue.Title,
		IssueBody:   issue.Description,
		Errors:      errorText,
		SiloContext: siloContext,
	}
	if fixMode {
		return claude.BuildFixPrompt(vars)
	}
	return claude.BuildImplementPrompt(vars)
}

// updateProgressNote は実行結果を進捗ノートへ反映する。失敗してもログに残すだけ。
func (o *Orchestrator) updateProgressNote(issue *github.Issue, fixMode, success bool) {
	note, err := o.silo.Read(issue.ID)
	if err != nil {
		o.logger.Warn("failed to read progress note for update", "issue_id", issue.ID, "error", err)
		note = nil
	}
	if note == nil {
		note = &silo.Progress{
			IssueID:          issue.ID,
			IssueTitle:       issue.Title,
			IssueDescription: issue.Description,
		}
	}

	switch {
	case success && fixMode:
		note.WhatWasDone = append(note.WhatWasDone, "Applied a fix for verification failures")
		note.CurrentStep = "fix applied, awaiting re-verification"
	case success:
		note.WhatWasDone = append(note.WhatWasDone, "Implemented the issue")
		note.CurrentStep = "implementation complete, awaiting verification"
	case fixMode:
		note.CurrentStep = "fix attempt failed"
	default:
		note.CurrentStep = "implementation attempt failed"
	}

	if err := o.silo.Write(note); err != nil {
		o.logger.Warn("failed to write progress note", "issue_id", issue.ID, "error", err)
	}
}

func (o *Orchestrator) setStreamingSession(s *StreamingSession) {
	o.mu.Lock()
	o.streaming = s
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) updateCurrentAction(tool, action string) {
	o.mu.Lock()
	if o.streaming != nil {
		o.streaming.CurrentTool = tool
		o.streaming.CurrentAction = action
	}
	o.mu.Unlock()
	o.notify()
}

func actionLabel(ev claude.StreamEvent) string {
	if detail := ev.ToolDetail(); detail != "" {
		return fmt.Sprintf("Running %s: %s", ev.ToolName, detail)
	}
	return fmt.Sprintf("Running %s", ev.ToolName)
}

func truncateMessage(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
