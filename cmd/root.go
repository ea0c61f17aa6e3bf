package cmd

import (
	"fmt"
	"os"

	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	rootCmd   *cobra.Command
	appLog    logger.Logger
	appConfig *config.Config
)

func init() {
	rootCmd = newRootCmd()

	// サブコマンドの追加
	addCommands(rootCmd)
}

func addCommands(cmd *cobra.Command) {
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newQueueCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newVersionCmd())
}

// NewRootCmd creates a new root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := newRootCmd()
	addCommands(cmd)
	return cmd
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oyakata",
		Short: "GitHub Issueを自律処理するビルドオーケストレーター",
		Long: `oyakataは、GitHub Issueのキューをコーディングエージェントで
自律的に処理するビルドオーケストレーターです。
Issueごとに 実装 → 検証 → 修正 → (レビュー|コミット) → クローズ
のサイクルを回し、進行状態をセッションファイルへ永続化します。`,
		Version: version.Get().Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// 設定ファイルを先に読み込む
			initConfig()

			// ロガーの初期化
			if verbose {
				os.Setenv("DEBUG", "true")
			}
			var err error
			appLog, err = logger.NewFromEnv()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "設定ファイルのパス")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "詳細出力")

	return cmd
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig は設定ファイルと環境変数からグローバル設定を構築する。
// ファイルが存在しない場合はデフォルト値と環境変数のみで動作する。
func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	appConfig = config.NewConfig()
	appConfig.LoadOrDefault(path)
}
