package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gogithub "github.com/google/go-github/v67/github"
)

// IssueService はイシュートラッカーへの操作を定義するインターフェース
type IssueService interface {
	// List はオープン状態のイシューをすべて取得する
	List(ctx context.Context) ([]*Issue, error)

	// Get は指定されたIDのイシューを取得する
	Get(ctx context.Context, id string) (*Issue, error)

	// Create は新しいイシューを作成し、IDを返す
	Create(ctx context.Context, title, issueType, priority, description string) (string, error)

	// Update はイシューのフィールドを部分更新する
	Update(ctx context.Context, id string, update IssueUpdate) error

	// Comment はイシューへコメントを投稿する
	Comment(ctx context.Context, id string, body string) error

	// Close は理由をコメントとして残してイシューをクローズする
	Close(ctx context.Context, id string, reason string) error
}

var _ IssueService = (*Client)(nil)

// List はオープン状態のイシューをすべて取得する
func (c *Client) List(ctx context.Context) ([]*Issue, error) {
	opts := &gogithub.IssueListByRepoOptions{
		State: "open",
		ListOptions: gogithub.ListOptions{
			PerPage: 100,
		},
	}

	var allIssues []*Issue
	err := RetryWithStrategy(ctx, c.retry, func() error {
		allIssues = allIssues[:0]
		opts.Page = 0
		for {
			issues, resp, err := c.issues.ListByRepo(ctx, c.owner, c.repo, opts)
			if err != nil {
				return ClassifyError(err)
			}
			for _, issue := range issues {
				// プルリクエストはイシュー一覧に含まれるため除外する
				if issue.IsPullRequest() {
					continue
				}
				allIssues = append(allIssues, fromAPIIssue(issue))
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	c.logger.Debug("Listed open issues", "count", len(allIssues))
	return allIssues, nil
}

// Get は指定されたIDのイシューを取得する
func (c *Client) Get(ctx context.Context, id string) (*Issue, error) {
	number, err := c.issueNumber(id)
	if err != nil {
		return nil, err
	}

	var issue *Issue
	err = RetryWithStrategy(ctx, c.retry, func() error {
		apiIssue, _, err := c.issues.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return ClassifyError(err)
		}
		issue = fromAPIIssue(apiIssue)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", id, err)
	}

	return issue, nil
}

// Create は新しいイシューを作成し、IDを返す
func (c *Client) Create(ctx context.Context, title, issueType, priority, description string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("issue title is required")
	}
	if !IsValidType(issueType) {
		return "", fmt.Errorf("invalid issue type: %s", issueType)
	}
	if !IsValidPriority(priority) {
		return "", fmt.Errorf("invalid issue priority: %s", priority)
	}

	labels := []string{
		TypeLabelPrefix + strings.ToLower(issueType),
		PriorityLabelPrefix + strings.ToLower(priority),
	}
	req := &gogithub.IssueRequest{
		Title:  gogithub.String(title),
		Body:   gogithub.String(description),
		Labels: &labels,
	}

	var id string
	err := RetryWithStrategy(ctx, c.retry, func() error {
		created, _, err := c.issues.Create(ctx, c.owner, c.repo, req)
		if err != nil {
			return ClassifyError(err)
		}
		id = strconv.Itoa(created.GetNumber())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create issue: %w", err)
	}

	c.logger.Info("Created issue", "issue_id", id, "title", title, "type", issueType, "priority", priority)
	return id, nil
}

// Update はイシューのフィールドを部分更新する
func (c *Client) Update(ctx context.Context, id string, update IssueUpdate) error {
	number, err := c.issueNumber(id)
	if err != nil {
		return err
	}

	// タイトルと本文はEditで更新する
	if update.Title != nil || update.Description != nil {
		req := &gogithub.IssueRequest{
			Title: update.Title,
			Body:  update.Description,
		}
		err := RetryWithStrategy(ctx, c.retry, func() error {
			_, _, err := c.issues.Edit(ctx, c.owner, c.repo, number, req)
			return ClassifyError(err)
		})
		if err != nil {
			return fmt.Errorf("failed to update issue %s: %w", id, err)
		}
	}

	// ステータスと優先度はプレフィックス付きラベルの付け替えで表現する
	if update.Status != nil {
		if err := c.replaceLabel(ctx, number, StatusLabelPrefix, *update.Status); err != nil {
			return fmt.Errorf("failed to update status of issue %s: %w", id, err)
		}
	}
	if update.Priority != nil {
		if !IsValidPriority(*update.Priority) {
			return fmt.Errorf("invalid issue priority: %s", *update.Priority)
		}
		if err := c.replaceLabel(ctx, number, PriorityLabelPrefix, strings.ToLower(*update.Priority)); err != nil {
			return fmt.Errorf("failed to update priority of issue %s: %w", id, err)
		}
	}

	c.logger.Debug("Updated issue", "issue_id", id)
	return nil
}

// Comment はイシューへコメントを投稿する
func (c *Client) Comment(ctx context.Context, id string, body string) error {
	if body == "" {
		return fmt.Errorf("comment body is required")
	}
	number, err := c.issueNumber(id)
	if err != nil {
		return err
	}

	if err := c.postComment(ctx, number, body); err != nil {
		return fmt.Errorf("failed to comment on issue %s: %w", id, err)
	}
	c.logger.Debug("Commented on issue", "issue_id", id)
	return nil
}

// Close は理由をコメントとして残してイシューをクローズする
func (c *Client) Close(ctx context.Context, id string, reason string) error {
	number, err := c.issueNumber(id)
	if err != nil {
		return err
	}

	// クローズ理由をコメントとして残す。コメント失敗はクローズを妨げない。
	if reason != "" {
		if err := c.postComment(ctx, number, reason); err != nil {
			c.logger.Warn("Failed to comment close reason", "issue_id", id, "error", err.Error())
		}
	}

	req := &gogithub.IssueRequest{
		State:       gogithub.String("closed"),
		StateReason: gogithub.String("completed"),
	}
	err = RetryWithStrategy(ctx, c.retry, func() error {
		_, _, err := c.issues.Edit(ctx, c.owner, c.repo, number, req)
		return ClassifyError(err)
	})
	if err != nil {
		return fmt.Errorf("failed to close issue %s: %w", id, err)
	}

	c.logger.Info("Closed issue", "issue_id", id, "reason", reason)
	return nil
}

// postComment はイシュー番号を指定してコメントを投稿する
func (c *Client) postComment(ctx context.Context, number int, body string) error {
	comment := &gogithub.IssueComment{
		Body: gogithub.String(body),
	}
	return RetryWithStrategy(ctx, c.retry, func() error {
		_, _, err := c.issues.CreateComment(ctx, c.owner, c.repo, number, comment)
		return ClassifyError(err)
	})
}

// replaceLabel は指定プレフィックスの既存ラベルを取り除き、新しい値のラベルを付与する
func (c *Client) replaceLabel(ctx context.Context, number int, prefix, value string) error {
	return RetryWithStrategy(ctx, c.retry, func() error {
		current, _, err := c.issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, nil)
		if err != nil {
			return ClassifyError(err)
		}

		newLabel := prefix + value
		for _, label := range current {
			name := label.GetName()
			if !strings.HasPrefix(name, prefix) || name == newLabel {
				continue
			}
			if _, err := c.issues.RemoveLabelForIssue(ctx, c.owner, c.repo, number, name); err != nil {
				classified := ClassifyError(err)
				// 既に剥がれている場合は無視する
				if IsNotFoundError(classified) {
					continue
				}
				return classified
			}
		}

		if _, _, err := c.issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, []string{newLabel}); err != nil {
			return ClassifyError(err)
		}
		return nil
	})
}

// issueNumber はイシューIDをGitHubのイシュー番号に変換する
func (c *Client) issueNumber(id string) (int, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(id, "#"))
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid issue id: %s", id)
	}
	return number, nil
}

// fromAPIIssue はGitHub APIのイシューを内部表現に変換する
func fromAPIIssue(apiIssue *gogithub.Issue) *Issue {
	issue := &Issue{
		ID:          strconv.Itoa(apiIssue.GetNumber()),
		Number:      apiIssue.GetNumber(),
		Title:       apiIssue.GetTitle(),
		Description: apiIssue.GetBody(),
		Type:        TypeTask,
		Priority:    PriorityMedium,
		Status:      StatusOpen,
	}

	var labelNames []string
	for _, label := range apiIssue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	if v := labelValue(labelNames, TypeLabelPrefix); v != "" {
		issue.Type = v
	}
	if v := labelValue(labelNames, PriorityLabelPrefix); v != "" {
		issue.Priority = v
	}
	if v := labelValue(labelNames, StatusLabelPrefix); v != "" {
		issue.Status = v
	}
	if apiIssue.GetState() == "closed" {
		issue.Status = StatusDone
	}

	return issue
}
