package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/douhashi/oyakata/internal/github"
)

// フェーズごとの進捗率。フェーズが進んでも値が下がることはない。
var phaseProgress = map[Phase]int{
	PhaseWorking:    10,
	PhaseTesting:    50,
	PhaseFixing:     60,
	PhaseCommitting: 85,
	PhaseReviewing:  85,
}

// Run はエージェントループを実行する。キューが空になるか、
// pause/stopが要求されるか、ctxがキャンセルされるまでブロックする。
// キューのアイテムは常に1件ずつ順番に処理される。
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Status == StatusRunning {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator is already running")
	}
	resumed := o.state.Status == StatusPaused
	o.state.Status = StatusRunning
	if o.state.StartedAt.IsZero() {
		o.state.StartedAt = time.Now()
	}
	o.mu.Unlock()

	if resumed {
		o.activity.Append(LogInfo, "Run resumed", "")
	} else {
		o.activity.Append(LogInfo, "Run started", "")
	}
	o.persist()

	for {
		if ctx.Err() != nil {
			o.Pause()
			return nil
		}

		o.mu.Lock()
		status := o.state.Status
		o.mu.Unlock()

		switch status {
		case StatusPaused:
			o.activity.Append(LogInfo, "Run paused", "")
			o.persist()
			return nil
		case StatusIdle:
			// stopによる中断。永続状態はStop側で破棄済み。
			return nil
		}

		o.mu.Lock()
		if len(o.state.Queue) == 0 {
			o.mu.Unlock()
			return o.finishDrain()
		}
		id := o.state.Queue[0]
		o.state.CurrentIssueID = id
		o.state.CurrentPhase = PhaseWorking
		o.state.RetryCount = 0
		o.state.Progress = 0
		o.mu.Unlock()
		o.persist()

		o.processItem(ctx, id)
	}
}

// processItem はキューアイテム1件を working → testing → (fixing → testing)* →
// {committing | reviewing} の順で処理する。
// アイテム内で何が起きてもループ全体は止めない。
func (o *Orchestrator) processItem(ctx context.Context, issueID string) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("unexpected panic while processing issue", "issue_id", issueID, "panic", r)
			o.activity.Append(LogError, fmt.Sprintf("Unexpected failure on issue #%s: %v", issueID, r), issueID)
			o.markBlocked(ctx, issueID, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	o.setPhase(issueID, PhaseWorking)
	o.activity.Append(LogInfo, fmt.Sprintf("Working on issue #%s", issueID), issueID)
	o.updateTrackerStatus(ctx, issueID, github.StatusInProgress)

	// エージェント実行の失敗は検証失敗と違い、このアイテムでは再試行しない
	if !o.executeStreamingWork(ctx, issueID, false, "") {
		o.markBlocked(ctx, issueID, "agent execution failed")
		return
	}

	if o.interrupted(ctx) {
		return
	}

	for {
		o.setPhase(issueID, PhaseTesting)
		result := o.runVerification(ctx, issueID)
		if result.Success {
			o.activity.Append(LogSuccess, fmt.Sprintf("Verification passed for issue #%s", issueID), issueID)
			break
		}

		o.mu.Lock()
		retries := o.state.RetryCount
		maxRetries := o.state.Settings.MaxRetries
		o.mu.Unlock()

		if retries >= maxRetries {
			o.markBlocked(ctx, issueID, fmt.Sprintf("verification failed after %d fix attempts", retries))
			return
		}

		o.mu.Lock()
		o.state.RetryCount++
		attempt := o.state.RetryCount
		o.mu.Unlock()

		if o.interrupted(ctx) {
			return
		}

		o.setPhase(issueID, PhaseFixing)
		o.activity.Append(LogWarning,
			fmt.Sprintf("Verification failed, fix attempt %d/%d for issue #%s", attempt, maxRetries, issueID), issueID)

		if !o.executeStreamingWork(ctx, issueID, true, result.FailureText()) {
			// 修正実行自体の失敗は残りのリトライを消費せず打ち切る
			o.markBlocked(ctx, issueID, "fix attempt failed")
			return
		}

		if o.interrupted(ctx) {
			return
		}
	}

	if o.interrupted(ctx) {
		return
	}

	settings := o.settings()
	if !settings.RequireHumanReview && settings.AutoCommit {
		o.setPhase(issueID, PhaseCommitting)
		o.completeItem(ctx, issueID)
	} else {
		o.setPhase(issueID, PhaseReviewing)
		o.MoveToReview(ctx, issueID)
	}
}

// completeItem はコミットとクローズを行い、アイテムを完了履歴へ移す。
// コミットできなかった場合はクローズせず、オペレーターの判断に委ねるため
// ヒューマンレビュー待ちへ移す。
func (o *Orchestrator) completeItem(ctx context.Context, issueID string) {
	if err := o.commitChanges(ctx, issueID); err != nil {
		o.logger.Error("failed to commit changes", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Commit failed for issue #%s: %v", issueID, err), issueID)
		o.MoveToReview(ctx, issueID)
		return
	}

	if err := o.issues.Close(ctx, issueID, "Completed by Auto Build"); err != nil {
		o.logger.Error("failed to close issue", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Issue #%s could not be closed: %v", issueID, err), issueID)
	}

	o.mu.Lock()
	o.state.removeFromQueue(issueID)
	o.state.appendCompleted(issueID)
	o.state.clearCurrentItem()
	o.state.Progress = 100
	o.mu.Unlock()

	o.cache.Invalidate(issueID)
	if err := o.silo.Delete(issueID); err != nil {
		o.logger.Warn("failed to delete progress note", "issue_id", issueID, "error", err)
	}
	o.activity.Append(LogSuccess, fmt.Sprintf("Issue #%s completed", issueID), issueID)
	o.persist()
}

// markBlocked はアイテムをブロック扱いにしてキューから取り除く。
// トラッカー上にはblockedステータスと理由コメントを残す。
func (o *Orchestrator) markBlocked(ctx context.Context, issueID, reason string) {
	o.logger.Error("issue blocked", "issue_id", issueID, "reason", reason)
	o.activity.Append(LogError, fmt.Sprintf("Issue #%s blocked: %s", issueID, reason), issueID)
	o.updateTrackerStatus(ctx, issueID, github.StatusBlocked)
	if err := o.issues.Comment(ctx, issueID, fmt.Sprintf("Blocked by Auto Build: %s", reason)); err != nil {
		o.logger.Warn("failed to comment blocked reason", "issue_id", issueID, "error", err)
	}

	o.mu.Lock()
	o.state.removeFromQueue(issueID)
	if o.state.CurrentIssueID == issueID {
		o.state.clearCurrentItem()
	}
	o.mu.Unlock()
	o.persist()
}

// finishDrain はキューが空になったときの終了処理。
// レビュー待ちが残っていればpausedで止まり、何も残っていなければ
// idleへ戻してセッションを破棄する。
func (o *Orchestrator) finishDrain() error {
	o.mu.Lock()
	reviewWaiting := len(o.state.HumanReview) > 0
	if reviewWaiting {
		o.state.Status = StatusPaused
	} else {
		o.state.Status = StatusIdle
		o.state.clearCurrentItem()
		o.state.Progress = 0
	}
	o.mu.Unlock()

	if reviewWaiting {
		o.activity.Append(LogInfo, "Queue drained, issues are waiting for human review", "")
		o.persist()
		return nil
	}

	o.activity.Append(LogSuccess, "All queued issues processed", "")
	if err := o.ClearSession(); err != nil {
		o.logger.Error("failed to clear session", "error", err)
	}
	o.notify()
	return nil
}

// Pause は一時停止を要求する。実行中のフェーズには割り込まず、
// 次のチェックポイントでループが停止する。
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	if o.state.Status != StatusRunning {
		o.mu.Unlock()
		return
	}
	o.state.Status = StatusPaused
	o.mu.Unlock()

	o.activity.Append(LogInfo, "Pause requested", "")
	o.persist()
}

// Stop は実行を強制中断する。処理中アイテムの状態をリセットし、
// 永続化されたセッションを無条件に破棄する。
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.state.Status = StatusIdle
	o.state.clearCurrentItem()
	o.state.Progress = 0
	o.mu.Unlock()

	o.activity.Append(LogWarning, "Run stopped", "")
	if err := o.ClearSession(); err != nil {
		o.logger.Error("failed to clear session on stop", "error", err)
	}
	o.notify()
}

// setPhase はフェーズを進めて永続化する
func (o *Orchestrator) setPhase(issueID string, phase Phase) {
	o.mu.Lock()
	o.state.CurrentPhase = phase
	if p, ok := phaseProgress[phase]; ok && p > o.state.Progress {
		o.state.Progress = p
	}
	o.mu.Unlock()

	o.logger.Debug("phase transition", "issue_id", issueID, "phase", string(phase))
	o.persist()
}

// interrupted はpause/stop要求またはctxのキャンセルを検出する
func (o *Orchestrator) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status != StatusRunning
}
