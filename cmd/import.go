package cmd

import (
	"context"
	"fmt"

	"github.com/douhashi/oyakata/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "GitHubのバックログをキューに取り込み",
		Long: `オープンIssueの一覧を取得し、優先度がしきい値(priority_threshold)以上の
Issueを優先度順に処理キューへ追加します。既に管理対象のIssueは追加されません。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionOwner(cmd, true, func(ctx context.Context, orch *orchestrator.Orchestrator) error {
				count, err := orch.ImportIssues(ctx)
				if err != nil {
					return err
				}

				snap := orch.Snapshot()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d件のIssueを取り込みました (しきい値: %s以上)\n",
					count, snap.Settings.PriorityThreshold)
				fmt.Fprintf(out, "キュー: %s\n", formatIssueList(snap.Queue))
				return nil
			})
		},
	}
}
