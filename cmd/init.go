package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/logger"
	"github.com/spf13/cobra"
)

// labelEnsurer はテスト用のGitHubクライアントインターフェース
type labelEnsurer interface {
	EnsureLabels(ctx context.Context) error
}

// テスト用にモック可能な関数変数
var (
	createConfigFunc    = config.CreateDefault
	newLabelEnsurerFunc = func(token, owner, repo string, log logger.Logger) (labelEnsurer, error) {
		return github.NewClient(token, owner, repo, log)
	}
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "プロジェクトを初期化",
		Long: `oyakataを使うための初期設定を行います。
設定ファイルと状態ディレクトリを作成し、GitHubリポジトリに
必要なラベル(type/priority/status)を登録します。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args)
		},
	}
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	ctx := cmd.Context()

	fmt.Fprintln(out, "oyakataの初期化を開始します...")
	fmt.Fprintln(out, "")

	// 1. Gitリポジトリの確認
	fmt.Fprint(out, "[1/4] Gitリポジトリの確認      ")
	repoInfo, err := getRepoInfoFunc(ctx, appLog)
	if err != nil {
		fmt.Fprintln(out, "NG")
		return fmt.Errorf("リポジトリ情報の取得に失敗: %w", err)
	}
	fmt.Fprintf(out, "OK (%s)\n", repoInfo.FullName())

	// 2. 設定ファイルの作成
	fmt.Fprint(out, "[2/4] 設定ファイルの作成       ")
	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "スキップ (既に存在: %s)\n", configPath)
	} else {
		if err := createConfigFunc(configPath); err != nil {
			fmt.Fprintln(out, "NG")
			return fmt.Errorf("設定ファイルの作成に失敗: %w", err)
		}
		fmt.Fprintf(out, "OK (%s)\n", configPath)
	}

	// 3. 状態ディレクトリの作成
	fmt.Fprint(out, "[3/4] 状態ディレクトリの作成   ")
	identifier := fmt.Sprintf("%s-%s", repoInfo.Owner, repoInfo.Repo)
	pm := newPathManagerFunc("")
	if err := pm.EnsureDirectories(); err != nil {
		fmt.Fprintln(out, "NG")
		return fmt.Errorf("状態ディレクトリの作成に失敗: %w", err)
	}
	if err := pm.EnsureRepoDirectories(identifier); err != nil {
		fmt.Fprintln(out, "NG")
		return fmt.Errorf("状態ディレクトリの作成に失敗: %w", err)
	}
	fmt.Fprintln(out, "OK")

	// 4. GitHubラベルの確認
	fmt.Fprint(out, "[4/4] GitHubラベルの確認       ")
	token := appConfig.GitHub.Token
	if token == "" {
		fmt.Fprintln(out, "スキップ (GitHubトークン未設定)")
	} else {
		client, err := newLabelEnsurerFunc(token, repoInfo.Owner, repoInfo.Repo, appLog)
		if err != nil {
			fmt.Fprintln(out, "NG")
			return fmt.Errorf("GitHubクライアントの作成に失敗: %w", err)
		}
		// ラベル作成権限がない場合もあるため、失敗しても処理は続行する
		if err := client.EnsureLabels(ctx); err != nil {
			fmt.Fprintln(out, "NG")
			fmt.Fprintf(errOut, "警告: ラベルの確認/作成に失敗しました: %v\n", err)
		} else {
			fmt.Fprintln(out, "OK")
		}
	}

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "初期化が完了しました。")
	fmt.Fprintln(out, "次のステップ:")
	fmt.Fprintln(out, "  oyakata queue add <issue番号>  # 処理するIssueをキューに追加")
	fmt.Fprintln(out, "  oyakata import                 # 優先度条件でバックログを一括取り込み")
	fmt.Fprintln(out, "  oyakata start                  # 自律ビルドループを開始")
	return nil
}
