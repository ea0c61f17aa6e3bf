package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/douhashi/oyakata/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "処理キューを管理",
		Long: `自律ビルドループが処理するIssueキューを操作します。
キューへの変更はセッションファイルへ即座に永続化されます。`,
	}

	cmd.AddCommand(newQueueAddCmd())
	cmd.AddCommand(newQueueRemoveCmd())
	cmd.AddCommand(newQueueSkipCmd())
	cmd.AddCommand(newQueueListCmd())
	cmd.AddCommand(newQueueMoveCmd())
	cmd.AddCommand(newQueueClearCmd())

	return cmd
}

func newQueueAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <issue番号>...",
		Short: "Issueをキューに追加",
		Long: `指定したIssueを処理キューの末尾に追加します。
既にキュー、レビュー待ち、完了のいずれかにあるIssueは追加されません。`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionOwner(cmd, false, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					id, err := normalizeIssueID(arg)
					if err != nil {
						return err
					}
					if isTracked(orch.Snapshot(), id) {
						fmt.Fprintf(out, "スキップ (既に管理対象): #%s\n", id)
						continue
					}
					orch.Enqueue(id)
					fmt.Fprintf(out, "追加: #%s\n", id)
				}
				fmt.Fprintf(out, "キュー: %d件\n", len(orch.Snapshot().Queue))
				return nil
			})
		},
	}
}

func newQueueRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <issue番号>...",
		Short: "Issueをキューから削除",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionOwner(cmd, false, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					id, err := normalizeIssueID(arg)
					if err != nil {
						return err
					}
					snap := orch.Snapshot()
					if !containsID(snap.Queue, id) && snap.CurrentIssueID != id {
						fmt.Fprintf(out, "キューにありません: #%s\n", id)
						continue
					}
					orch.Dequeue(id)
					fmt.Fprintf(out, "削除: #%s\n", id)
				}
				fmt.Fprintf(out, "キュー: %d件\n", len(orch.Snapshot().Queue))
				return nil
			})
		},
	}
}

func newQueueSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "キュー先頭のIssueを飛ばす",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionOwner(cmd, false, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				out := cmd.OutOrStdout()
				snap := orch.Snapshot()
				if len(snap.Queue) == 0 {
					fmt.Fprintln(out, "キューは空です")
					return nil
				}
				skipped := snap.Queue[0]
				orch.Skip()
				fmt.Fprintf(out, "スキップ: #%s\n", skipped)
				fmt.Fprintf(out, "キュー: %d件\n", len(orch.Snapshot().Queue))
				return nil
			})
		},
	}
}

func newQueueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "キューの内容を表示",
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
			if view == nil || len(view.Queue) == 0 {
				fmt.Fprintln(out, "キューは空です")
				return nil
			}

			fmt.Fprintf(out, "キュー (%d件):\n", len(view.Queue))
			for i, id := range view.Queue {
				fmt.Fprintf(out, "  %d. #%s\n", i+1, id)
			}
			return nil
		},
	}
}

func newQueueMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <現在位置> <移動先位置>",
		Short: "キュー内のIssueを並べ替え",
		Long:  `キュー内のIssueを指定位置へ移動します。位置は1始まりで指定します。`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			return withSessionOwner(cmd, false, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				if err := orch.Reorder(from-1, to-1); err != nil {
					return err
				}
				// Reorderは永続化しないため明示的に保存する
				if err := orch.SaveSession(); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "移動しました: %d → %d\n", from, to)
				for i, id := range orch.Snapshot().Queue {
					fmt.Fprintf(out, "  %d. #%s\n", i+1, id)
				}
				return nil
			})
		},
	}
}

func newQueueClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "キューを空にする",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionOwner(cmd, false, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				removed := len(orch.Snapshot().Queue)
				orch.ClearQueue()
				fmt.Fprintf(cmd.OutOrStdout(), "キューを空にしました (%d件削除)\n", removed)
				return nil
			})
		},
	}
}

// parsePosition は1始まりの位置指定をパースする
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("不正な位置指定: %s (1以上の数値で指定してください)", arg)
	}
	return n, nil
}

// isTracked はIssueがキュー、処理中、レビュー待ち、完了のいずれかにあるかを返す
func isTracked(snap orchestrator.Snapshot, id string) bool {
	return containsID(snap.Queue, id) ||
		containsID(snap.HumanReview, id) ||
		containsID(snap.Completed, id) ||
		snap.CurrentIssueID == id
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
