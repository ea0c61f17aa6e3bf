package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/douhashi/oyakata/internal/github"
)

// ImportIssues はトラッカーの未着手Issueのうち、優先度がしきい値以上の
// ものをキューへ取り込む。優先度の高いものから順に積まれる。
// すでにキュー・レビュー待ち・完了履歴にあるIssueは取り込まない。
func (o *Orchestrator) ImportIssues(ctx context.Context) (int, error) {
	issues, err := o.issues.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list issues: %w", err)
	}

	threshold := github.PriorityRank(o.settings().PriorityThreshold)

	candidates := make([]*github.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Status != github.StatusOpen {
			continue
		}
		if github.PriorityRank(issue.Priority) < threshold {
			continue
		}
		if o.isKnown(issue.ID) {
			continue
		}
		candidates = append(candidates, issue)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return github.PriorityRank(candidates[i].Priority) > github.PriorityRank(candidates[j].Priority)
	})

	for _, issue := range candidates {
		o.cache.Put(issue)
		o.Enqueue(issue.ID)
	}

	if len(candidates) > 0 {
		o.activity.Append(LogInfo, fmt.Sprintf("Imported %d issues from the tracker", len(candidates)), "")
	}
	o.logger.Info("issue import finished", "imported", len(candidates), "listed", len(issues))
	return len(candidates), nil
}

func (o *Orchestrator) isKnown(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.inQueue(id) || o.state.inHumanReview(id) || o.state.inCompleted(id)
}
