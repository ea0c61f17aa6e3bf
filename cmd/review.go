package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "レビュー待ちIssueを管理",
		Long: `検証を通過してレビュー待ちになったIssueを確認し、
承認(コミットとクローズ)またはリファクタリング依頼を行います。`,
	}

	cmd.AddCommand(newReviewListCmd())
	cmd.AddCommand(newReviewApproveCmd())
	cmd.AddCommand(newReviewRefactorCmd())

	return cmd
}

func newReviewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "レビュー待ちのIssueを表示",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureRuntime(); err != nil {
				return err
			}
			p, err := newProjectContext(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			view, err := readSessionView(p.sessions.Path())
			if err != nil {
				return err
			}
			if view == nil || len(view.HumanReview) == 0 {
				fmt.Fprintln(out, "レビュー待ちのIssueはありません")
				return nil
			}

			// タイトルはトークンがあるときだけ取得する。失敗しても一覧表示は続ける。
			var issues github.IssueService
			if p.cfg.GitHub.Token != "" {
				if svc, cerr := newIssueServiceFunc(p.cfg.GitHub.Token, p.repoInfo.Owner, p.repoInfo.Repo, p.log); cerr == nil {
					issues = svc
				}
			}

			fmt.Fprintf(out, "レビュー待ち (%d件):\n", len(view.HumanReview))
			for _, id := range view.HumanReview {
				title := ""
				if issues != nil {
					if issue, gerr := issues.Get(cmd.Context(), id); gerr == nil {
						title = " " + issue.Title
					}
				}
				fmt.Fprintf(out, "  #%s%s\n", id, title)
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "承認: oyakata review approve <issue番号>")
			fmt.Fprintln(out, "リファクタリング依頼: oyakata review refactor <issue番号> <理由>")
			return nil
		},
	}
}

func newReviewApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <issue番号>",
		Short: "レビュー待ちのIssueを承認",
		Long: `レビュー待ちのIssueを承認します。自動コミットが有効な場合は
変更をコミットし、Issueをクローズして完了扱いにします。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := normalizeIssueID(args[0])
			if err != nil {
				return err
			}

			return withSessionOwner(cmd, true, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				if err := orch.CompleteReview(ctx, id); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if orch.Snapshot().Settings.AutoCommit {
					fmt.Fprintf(out, "承認しました: #%s (コミットしてクローズ済み)\n", id)
				} else {
					fmt.Fprintf(out, "承認しました: #%s (クローズ済み)\n", id)
				}
				return nil
			})
		},
	}
}

func newReviewRefactorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refactor <issue番号> <理由>...",
		Short: "リファクタリングを依頼",
		Long: `レビュー待ちのIssueに対してリファクタリングを依頼します。
理由を本文にしたリファクタリングIssueを新規作成し、設定に応じて
元のIssueまたは新規Issueをキュー先頭に積み直します。`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := normalizeIssueID(args[0])
			if err != nil {
				return err
			}
			reason := strings.Join(args[1:], " ")

			return withSessionOwner(cmd, true, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				newID, err := orch.RequestRefactor(ctx, id, reason)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "リファクタリングIssueを作成しました: #%s\n", newID)
				if orch.Snapshot().Settings.RefactorRequeue == config.RefactorRequeueNewIssue {
					fmt.Fprintf(out, "#%s をキュー先頭に追加しました\n", newID)
				} else {
					fmt.Fprintf(out, "元のIssue #%s をキュー先頭に戻しました\n", id)
				}
				return nil
			})
		},
	}
}
