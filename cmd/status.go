package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/douhashi/oyakata/internal/yaml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "現在のセッション状態を表示",
		Long: `保存されたセッションの状態(キュー、処理中Issue、レビュー待ち、完了)を表示します。
--watchフラグを指定すると、セッションファイルの変更を監視して表示を更新し続けます。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, watchFlag)
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "セッションファイルの変更を監視して再表示")

	return cmd
}

// テスト用にモック可能な関数変数
var watchSessionFunc = watchSession

// sessionView はセッションファイルの表示用スキーマ
type sessionView struct {
	SessionID      string    `yaml:"sessionId"`
	Status         string    `yaml:"status"`
	Queue          []string  `yaml:"queue"`
	Completed      []string  `yaml:"completed"`
	HumanReview    []string  `yaml:"humanReview"`
	CurrentIssueID string    `yaml:"currentIssueId"`
	CurrentPhase   string    `yaml:"currentPhase"`
	RetryCount     int       `yaml:"retryCount"`
	SavedAt        time.Time `yaml:"savedAt"`
}

// readSessionView はセッションファイルを読み込む。
// ファイルが存在しない場合は(nil, nil)を返す。
func readSessionView(path string) (*sessionView, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var view sessionView
	if err := yaml.Read(path, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func runStatus(cmd *cobra.Command, watchFlag bool) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	p, err := newProjectContext(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderStatus(out, p)

	if !watchFlag {
		return nil
	}

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "セッションファイルを監視しています (Ctrl-Cで終了)...")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchSessionFunc(ctx, out, p)
}

// renderStatus はセッション状態を整形して出力する
func renderStatus(out io.Writer, p *projectContext) {
	fmt.Fprintf(out, "oyakataステータス (%s)\n\n", p.repoInfo.FullName())

	if holder := liveLockHolder(p.pidFile()); holder != nil {
		fmt.Fprintf(out, "  プロセス:     実行中 (pid %d, 開始 %s)\n",
			holder.PID, holder.StartTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(out, "  プロセス:     停止中")
	}

	view, err := readSessionView(p.sessions.Path())
	if err != nil {
		fmt.Fprintf(out, "  セッション:   読み込みエラー (%v)\n", err)
		return
	}
	if view == nil {
		fmt.Fprintln(out, "  セッション:   保存されたセッションはありません")
		return
	}

	fmt.Fprintf(out, "  状態:         %s\n", view.Status)
	if view.CurrentIssueID != "" {
		fmt.Fprintf(out, "  処理中:       #%s (フェーズ: %s, リトライ: %d)\n",
			view.CurrentIssueID, view.CurrentPhase, view.RetryCount)
	}
	fmt.Fprintf(out, "  キュー:       %s\n", formatIssueList(view.Queue))
	fmt.Fprintf(out, "  レビュー待ち: %s\n", formatIssueList(view.HumanReview))
	fmt.Fprintf(out, "  完了:         %s\n", formatIssueList(view.Completed))
	if !view.SavedAt.IsZero() {
		fmt.Fprintf(out, "  保存時刻:     %s\n", view.SavedAt.Format("2006-01-02 15:04:05"))
	}
}

// watchSession はセッションファイルの変更を監視し、変更のたびに状態を再表示する。
// コンテキストのキャンセルで終了する。
func watchSession(ctx context.Context, out io.Writer, p *projectContext) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ファイル監視の開始に失敗: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// アトミックな書き換え(rename)やファイル削除も拾うため、
	// ファイルそのものではなく親ディレクトリを監視する
	target := p.sessions.Path()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("ファイル監視の開始に失敗: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fmt.Fprintln(out, "")
			renderStatus(out, p)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("session watch error", "error", werr)
		}
	}
}
