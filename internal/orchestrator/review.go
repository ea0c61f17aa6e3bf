package orchestrator

import (
	"context"
	"fmt"

	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/github"
)

// MoveToReview はIssueをキューからヒューマンレビュー待ちへ移す。
// この時点ではクローズもコミットも行われない。
func (o *Orchestrator) MoveToReview(ctx context.Context, issueID string) {
	o.mu.Lock()
	o.state.removeFromQueue(issueID)
	if !o.state.inHumanReview(issueID) {
		o.state.HumanReview = append(o.state.HumanReview, issueID)
	}
	if o.state.CurrentIssueID == issueID {
		o.state.clearCurrentItem()
	}
	o.mu.Unlock()

	o.activity.Append(LogInfo, fmt.Sprintf("Issue #%s is waiting for human review", issueID), issueID)
	o.updateTrackerStatus(ctx, issueID, github.StatusReview)
	o.persist()
}

// CompleteReview はレビュー承認としてIssueを完了させる。
// autoCommitが有効なら先にコミットし、その後Issueをクローズして完了履歴へ移す。
func (o *Orchestrator) CompleteReview(ctx context.Context, issueID string) error {
	o.mu.Lock()
	if !o.state.inHumanReview(issueID) {
		o.mu.Unlock()
		return fmt.Errorf("issue #%s is not waiting for review", issueID)
	}
	autoCommit := o.state.Settings.AutoCommit
	o.mu.Unlock()

	if autoCommit {
		if err := o.commitChanges(ctx, issueID); err != nil {
			return fmt.Errorf("failed to commit changes for issue #%s: %w", issueID, err)
		}
	}

	if err := o.issues.Close(ctx, issueID, "Completed after human review"); err != nil {
		return fmt.Errorf("failed to close issue #%s: %w", issueID, err)
	}

	o.mu.Lock()
	o.state.removeFromHumanReview(issueID)
	o.state.appendCompleted(issueID)
	o.mu.Unlock()

	o.cache.Invalidate(issueID)
	if err := o.silo.Delete(issueID); err != nil {
		o.logger.Warn("failed to delete progress note", "issue_id", issueID, "error", err)
	}
	o.activity.Append(LogSuccess, fmt.Sprintf("Issue #%s approved and closed", issueID), issueID)
	o.persist()
	return nil
}

// RequestRefactor はレビュー結果としてリファクタリングを要求する。
// 要求内容を記述した新しいIssueを作成し、設定に応じて元のIssueまたは
// 新しいIssueをキューの先頭へ積み直す。戻り値は作成したIssueのID。
func (o *Orchestrator) RequestRefactor(ctx context.Context, issueID, reason string) (string, error) {
	o.mu.Lock()
	if !o.state.inHumanReview(issueID) {
		o.mu.Unlock()
		return "", fmt.Errorf("issue #%s is not waiting for review", issueID)
	}
	requeueTarget := o.state.Settings.RefactorRequeue
	o.mu.Unlock()

	issue, err := o.cache.Get(ctx, issueID)
	if err != nil {
		return "", fmt.Errorf("failed to load issue #%s: %w", issueID, err)
	}

	title := fmt.Sprintf("Refactor: %s", issue.Title)
	description := fmt.Sprintf("Requested while reviewing #%s.\n\n%s", issueID, reason)
	newID, err := o.issues.Create(ctx, title, github.TypeRefactor, issue.Priority, description)
	if err != nil {
		return "", fmt.Errorf("failed to create refactor issue: %w", err)
	}
	o.activity.Append(LogInfo, fmt.Sprintf("Created refactor issue #%s for #%s", newID, issueID), newID)

	o.mu.Lock()
	o.state.removeFromHumanReview(issueID)
	o.mu.Unlock()
	o.updateTrackerStatus(ctx, issueID, github.StatusOpen)

	// 積み直す対象は設定で切り替えられる。既定は元のIssue。
	if requeueTarget == config.RefactorRequeueNewIssue {
		o.EnqueueFront(newID)
	} else {
		o.EnqueueFront(issueID)
	}
	return newID, nil
}

// updateTrackerStatus はトラッカー上のステータスを更新する。失敗してもログに残すだけ。
func (o *Orchestrator) updateTrackerStatus(ctx context.Context, issueID, status string) {
	if err := o.issues.Update(ctx, issueID, github.IssueUpdate{Status: &status}); err != nil {
		o.logger.Warn("failed to update tracker status", "issue_id", issueID, "status", status, "error", err)
	}
}

// commitChanges は作業ツリーの変更をコミットする。変更がなければ何もしない。
func (o *Orchestrator) commitChanges(ctx context.Context, issueID string) error {
	hasChanges, err := o.committer.HasChanges(ctx, o.projectPath)
	if err != nil {
		return err
	}
	if !hasChanges {
		o.logger.Info("no changes to commit", "issue_id", issueID)
		return nil
	}

	message := o.commitMessage(ctx, issueID)
	hash, err := o.committer.CommitAll(ctx, o.projectPath, message)
	if err != nil {
		return err
	}

	o.logger.Info("changes committed", "issue_id", issueID, "commit", hash)
	o.activity.Append(LogSuccess, fmt.Sprintf("Committed changes for issue #%s (%s)", issueID, hash), issueID)
	return nil
}

func (o *Orchestrator) commitMessage(ctx context.Context, issueID string) string {
	if issue, err := o.cache.Get(ctx, issueID); err == nil && issue.Title != "" {
		return fmt.Sprintf("Complete #%s: %s", issueID, issue.Title)
	}
	return fmt.Sprintf("Complete #%s", issueID)
}
