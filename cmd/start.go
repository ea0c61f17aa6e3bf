package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/douhashi/oyakata/internal/lock"
	"github.com/douhashi/oyakata/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	var (
		freshFlag  bool
		resumeFlag bool
		importFlag bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "自律ビルドループを開始",
		Long: `キュー内のIssueをコーディングエージェントで順に処理する
自律ビルドループをフォアグラウンドで開始します。
保存されたセッションがあれば復元してから再開します。
Ctrl-C(1回)で現在のステップ完了後に一時停止して終了し、
もう一度Ctrl-Cを押すと即座に中断します。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStartWithFlags(cmd, args, freshFlag, resumeFlag, importFlag)
		},
	}

	cmd.Flags().BoolVar(&freshFlag, "fresh", false, "保存されたセッションを破棄して開始")
	cmd.Flags().BoolVar(&resumeFlag, "resume", false, "保存されたセッションがない場合はエラーにする")
	cmd.Flags().BoolVar(&importFlag, "import", false, "開始前にバックログをキューへ取り込む")

	return cmd
}

func runStartWithFlags(cmd *cobra.Command, args []string, freshFlag, resumeFlag, importFlag bool) error {
	if err := ensureRuntime(); err != nil {
		return err
	}
	if freshFlag && resumeFlag {
		return errors.New("--freshと--resumeは同時に指定できません")
	}

	// startはエージェント実行とトラッカー更新を行うため設定の完全性を要求する
	if err := appConfig.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	p, err := newProjectContext(cmd.Context())
	if err != nil {
		return err
	}

	release, err := p.acquireLock()
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return fmt.Errorf("このリポジトリでは既にoyakataが実行中です: %w", err)
		}
		return err
	}
	defer release()

	orch, err := p.buildOrchestrator(true)
	if err != nil {
		return err
	}

	// セッションの復元
	if freshFlag {
		if p.sessions.Exists() {
			if err := orch.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(out, "保存されたセッションを破棄しました")
		}
	} else {
		if resumeFlag && !p.sessions.Exists() {
			return errors.New("再開できるセッションがありません")
		}
		recovered, err := orch.LoadSession()
		if err != nil {
			return err
		}
		if recovered {
			fmt.Fprintf(out, "実行途中のセッションを復元しました (処理中だったIssue: #%s)\n",
				orch.Snapshot().CurrentIssueID)
		}
		// 設定はセッションの保存値ではなく現在の設定ファイルの値で動作させる
		if p.sessions.Exists() {
			orch.UpdateSettings(orchestrator.SettingsFromConfig(p.cfg.Orchestrator))
		}
	}

	// シグナルハンドリング: 1回目は一時停止、2回目は即時中断
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Fprintln(out, "中断要求を受け付けました。現在のステップ完了後に一時停止します (もう一度Ctrl-Cで即時中断)")
		orch.Pause()
		select {
		case <-sigCh:
			fmt.Fprintln(out, "即時中断します")
			cancel()
		case <-ctx.Done():
		}
	}()

	// バックログの取り込み
	if importFlag {
		count, err := orch.ImportIssues(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d件のIssueを取り込みました\n", count)
	}

	snap := orch.Snapshot()
	if len(snap.Queue) == 0 && snap.CurrentIssueID == "" {
		fmt.Fprintln(out, "キューは空です。oyakata queue add または oyakata import でIssueを追加してください")
		return nil
	}

	fmt.Fprintf(out, "自律ビルドループを開始します (%s, キュー: %d件)\n",
		p.repoInfo.FullName(), len(snap.Queue))

	stopProgress := startProgressPrinter(out, orch)
	runErr := orch.Run(ctx)
	stopProgress()

	if runErr != nil {
		return runErr
	}

	printRunSummary(out, orch)
	return nil
}

// startProgressPrinter は状態変化の通知を受けて進行状況を1行ずつ出力する。
// 戻り値の関数で停止する。
func startProgressPrinter(out io.Writer, orch *orchestrator.Orchestrator) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		var last string
		for {
			select {
			case <-done:
				return
			case <-orch.Notifications():
				line := progressLine(orch.Snapshot())
				if line != last {
					fmt.Fprintln(out, line)
					last = line
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// progressLine はスナップショットを進行状況の1行に整形する
func progressLine(snap orchestrator.Snapshot) string {
	if snap.CurrentIssueID != "" {
		line := fmt.Sprintf("[%s] #%s %s (%d%%)",
			snap.Status, snap.CurrentIssueID, snap.CurrentPhase, snap.Progress)
		if snap.CurrentAction != "" {
			line += " - " + snap.CurrentAction
		}
		return line
	}
	return fmt.Sprintf("[%s] キュー: %d件 / レビュー待ち: %d件 / 完了: %d件",
		snap.Status, len(snap.Queue), len(snap.HumanReview), len(snap.Completed))
}

// printRunSummary はループ終了後の結果を出力する
func printRunSummary(out io.Writer, orch *orchestrator.Orchestrator) {
	snap := orch.Snapshot()

	fmt.Fprintln(out, "")
	switch snap.Status {
	case orchestrator.StatusPaused:
		fmt.Fprintln(out, "一時停止しました。'oyakata start'で再開できます")
	default:
		fmt.Fprintln(out, "すべてのIssueを処理しました")
	}

	fmt.Fprintf(out, "完了:         %s\n", formatIssueList(snap.Completed))
	if len(snap.HumanReview) > 0 {
		fmt.Fprintf(out, "レビュー待ち: %s ('oyakata review list'で確認)\n", formatIssueList(snap.HumanReview))
	}
	if len(snap.Queue) > 0 {
		fmt.Fprintf(out, "残りキュー:   %s\n", formatIssueList(snap.Queue))
	}

	// ブロックされたIssueはキューにも完了にも残らないため、エラーログから拾う
	for _, entry := range orch.Activity().Entries() {
		if entry.Type == orchestrator.LogError {
			fmt.Fprintf(out, "エラー:       %s\n", entry.Message)
		}
	}
}
