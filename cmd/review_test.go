package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/douhashi/oyakata/internal/github"
)

const reviewSessionYAML = `sessionId: 33333333-3333-3333-3333-333333333333
status: idle
queue:
  - "20"
completed:
  - "10"
humanReview:
  - "12"
  - "13"
savedAt: 2026-08-23T10:00:00Z
settings:
  autoCommit: false
  runLint: true
  runTests: true
  runBuild: true
  maxRetries: 3
  priorityThreshold: medium
  requireHumanReview: true
  refactorRequeue: original
`

func TestReviewListCmd(t *testing.T) {
	t.Run("正常系: レビュー待ちがない場合", func(t *testing.T) {
		isolateEnv(t)
		setupTestProject(t)

		output, err := executeCommand(t, "review", "list")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(output, "レビュー待ちのIssueはありません") {
			t.Errorf("output = %v, want empty message", output)
		}
	})

	t.Run("正常系: トークンがあればタイトル付きで表示", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		writeSessionFile(t, pm, reviewSessionYAML)
		t.Setenv("GITHUB_TOKEN", "dummy-token")
		useIssueService(t, &stubIssueService{
			getFunc: func(ctx context.Context, id string) (*github.Issue, error) {
				titles := map[string]string{"12": "ログイン処理の改善", "13": "通知の再送"}
				return &github.Issue{ID: id, Title: titles[id], Status: github.StatusReview}, nil
			},
		})

		output, err := executeCommand(t, "review", "list")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		for _, want := range []string{
			"レビュー待ち (2件):",
			"#12 ログイン処理の改善",
			"#13 通知の再送",
			"承認: oyakata review approve",
			"リファクタリング依頼: oyakata review refactor",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output = %v, want to contain %v", output, want)
			}
		}
	})

	t.Run("正常系: トークンがなければ番号のみ表示", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		writeSessionFile(t, pm, reviewSessionYAML)

		output, err := executeCommand(t, "review", "list")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(output, "レビュー待ち (2件):") {
			t.Errorf("output = %v, want レビュー待ち (2件):", output)
		}
		if !strings.Contains(output, "#12") || !strings.Contains(output, "#13") {
			t.Errorf("output = %v, want issue numbers", output)
		}
	})
}

func TestReviewApproveCmd(t *testing.T) {
	t.Run("正常系: 自動コミット無効ならクローズのみ行う", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		writeSessionFile(t, pm, reviewSessionYAML)
		t.Setenv("GITHUB_TOKEN", "dummy-token")

		var closed []string
		useIssueService(t, &stubIssueService{
			closeFunc: func(ctx context.Context, id, reason string) error {
				closed = append(closed, id)
				return nil
			},
		})

		output, err := executeCommand(t, "review", "approve", "12")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(output, "承認しました: #12 (クローズ済み)") {
			t.Errorf("output = %v, want approve message", output)
		}
		if len(closed) != 1 || closed[0] != "12" {
			t.Errorf("closed = %v, want [12]", closed)
		}

		view, _ := readSessionView(pm.SessionFile(testRepoIdentifier))
		if len(view.HumanReview) != 1 || view.HumanReview[0] != "13" {
			t.Errorf("humanReview = %v, want [13]", view.HumanReview)
		}
		if len(view.Completed) != 2 || view.Completed[1] != "12" {
			t.Errorf("completed = %v, want [10 12]", view.Completed)
		}
	})

	t.Run("異常系: レビュー待ちでないIssue", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		writeSessionFile(t, pm, reviewSessionYAML)
		t.Setenv("GITHUB_TOKEN", "dummy-token")
		useIssueService(t, &stubIssueService{})

		_, err := executeCommand(t, "review", "approve", "20")

		if err == nil || !strings.Contains(err.Error(), "not waiting for review") {
			t.Errorf("error = %v, want not waiting for review", err)
		}
	})

	t.Run("異常系: GitHubトークン未設定", func(t *testing.T) {
		isolateEnv(t)
		setupTestProject(t)

		_, err := executeCommand(t, "review", "approve", "12")

		if err == nil || !strings.Contains(err.Error(), "GitHubトークンが設定されていません") {
			t.Errorf("error = %v, want token error", err)
		}
	})
}

func TestReviewRefactorCmd(t *testing.T) {
	t.Run("正常系: 依頼Issueを作成して元のIssueを積み直す", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		writeSessionFile(t, pm, reviewSessionYAML)
		t.Setenv("GITHUB_TOKEN", "dummy-token")

		var gotTitle, gotType, gotPriority, gotDescription string
		useIssueService(t, &stubIssueService{
			getFunc: func(ctx context.Context, id string) (*github.Issue, error) {
				return &github.Issue{ID: id, Title: "ログイン処理の改善", Priority: github.PriorityHigh, Status: github.StatusReview}, nil
			},
			createFunc: func(ctx context.Context, title, issueType, priority, description string) (string, error) {
				gotTitle, gotType, gotPriority, gotDescription = title, issueType, priority, description
				return "99", nil
			},
		})

		output, err := executeCommand(t, "review", "refactor", "12", "エラーハンドリングを整理する")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		for _, want := range []string{
			"リファクタリングIssueを作成しました: #99",
			"元のIssue #12 をキュー先頭に戻しました",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output = %v, want to contain %v", output, want)
			}
		}

		if gotTitle != "Refactor: ログイン処理の改善" {
			t.Errorf("title = %v, want Refactor: ログイン処理の改善", gotTitle)
		}
		if gotType != github.TypeRefactor {
			t.Errorf("type = %v, want %v", gotType, github.TypeRefactor)
		}
		if gotPriority != github.PriorityHigh {
			t.Errorf("priority = %v, want %v", gotPriority, github.PriorityHigh)
		}
		if !strings.Contains(gotDescription, "Requested while reviewing #12.") ||
			!strings.Contains(gotDescription, "エラーハンドリングを整理する") {
			t.Errorf("description = %v, want review reference and reason", gotDescription)
		}

		view, _ := readSessionView(pm.SessionFile(testRepoIdentifier))
		if len(view.Queue) != 2 || view.Queue[0] != "12" || view.Queue[1] != "20" {
			t.Errorf("queue = %v, want [12 20]", view.Queue)
		}
		if len(view.HumanReview) != 1 || view.HumanReview[0] != "13" {
			t.Errorf("humanReview = %v, want [13]", view.HumanReview)
		}
	})

	t.Run("正常系: 設定により新規Issueを積み直す", func(t *testing.T) {
		isolateEnv(t)
		_, pm := setupTestProject(t)
		session := strings.Replace(reviewSessionYAML, "refactorRequeue: original", "refactorRequeue: refactor-issue", 1)
		writeSessionFile(t, pm, session)
		t.Setenv("GITHUB_TOKEN", "dummy-token")
		useIssueService(t, &stubIssueService{
			getFunc: func(ctx context.Context, id string) (*github.Issue, error) {
				return &github.Issue{ID: id, Title: "ログイン処理の改善", Priority: github.PriorityHigh, Status: github.StatusReview}, nil
			},
			createFunc: func(ctx context.Context, title, issueType, priority, description string) (string, error) {
				return "99", nil
			},
		})

		output, err := executeCommand(t, "review", "refactor", "12", "エラーハンドリングを整理する")

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(output, "#99 をキュー先頭に追加しました") {
			t.Errorf("output = %v, want requeue message", output)
		}

		view, _ := readSessionView(pm.SessionFile(testRepoIdentifier))
		if len(view.Queue) != 2 || view.Queue[0] != "99" || view.Queue[1] != "20" {
			t.Errorf("queue = %v, want [99 20]", view.Queue)
		}
	})

	t.Run("異常系: 理由が指定されていない", func(t *testing.T) {
		isolateEnv(t)
		setupTestProject(t)

		_, err := executeCommand(t, "review", "refactor", "12")

		if err == nil || !strings.Contains(err.Error(), "requires at least 2 arg") {
			t.Errorf("error = %v, want argument error", err)
		}
	})
}
