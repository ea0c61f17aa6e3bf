package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// RefactorRequeueOriginal はリファクタリング依頼時に元のイシューを再処理する設定値
const RefactorRequeueOriginal = "original"

// RefactorRequeueNewIssue はリファクタリング依頼時に新規イシューを処理対象とする設定値
const RefactorRequeueNewIssue = "refactor-issue"

// Config はアプリケーション全体の設定
type Config struct {
	GitHub       GitHubConfig       `mapstructure:"github"`
	Agent        AgentConfig        `mapstructure:"agent"`
	Verify       VerifyConfig       `mapstructure:"verify"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
}

// GitHubConfig はGitHub関連の設定
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// AgentConfig はコーディングエージェント関連の設定
type AgentConfig struct {
	Command        string        `mapstructure:"command"`
	PermissionMode string        `mapstructure:"permission_mode"`
	SafeMode       bool          `mapstructure:"safe_mode"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// VerifyConfig は検証コマンド関連の設定
type VerifyConfig struct {
	LintCommand  string `mapstructure:"lint_command"`
	TestCommand  string `mapstructure:"test_command"`
	BuildCommand string `mapstructure:"build_command"`
}

// OrchestratorConfig は自律ビルドループの初期設定
type OrchestratorConfig struct {
	AutoCommit         bool   `mapstructure:"auto_commit"`
	RunLint            bool   `mapstructure:"run_lint"`
	RunTests           bool   `mapstructure:"run_tests"`
	RunBuild           bool   `mapstructure:"run_build"`
	MaxRetries         int    `mapstructure:"max_retries"`
	PriorityThreshold  string `mapstructure:"priority_threshold"`
	RequireHumanReview bool   `mapstructure:"require_human_review"`
	RefactorRequeue    string `mapstructure:"refactor_requeue"`
}

// NewConfig は新しいConfigを作成する
func NewConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Command:        "claude",
			PermissionMode: "acceptEdits",
			SafeMode:       false,
			Timeout:        10 * time.Minute,
		},
		Verify: VerifyConfig{
			LintCommand:  "npm run lint",
			TestCommand:  "npm test",
			BuildCommand: "npm run build",
		},
		Orchestrator: OrchestratorConfig{
			AutoCommit:         true,
			RunLint:            true,
			RunTests:           true,
			RunBuild:           true,
			MaxRetries:         3,
			PriorityThreshold:  "medium",
			RequireHumanReview: false,
			RefactorRequeue:    RefactorRequeueOriginal,
		},
	}
}

// Load は設定ファイルから設定を読み込む
func (c *Config) Load(configPath string) error {
	v := viper.New()

	v.SetConfigFile(configPath)

	// 環境変数の設定
	v.SetEnvPrefix("OYAKATA")
	v.AutomaticEnv()

	// GITHUB_TOKENもサポート
	v.BindEnv("github.token", "GITHUB_TOKEN", "OYAKATA_GITHUB_TOKEN")

	// デフォルト値の設定
	setDefaults(v)

	// 設定ファイルを読み込む
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	// 設定を構造体にマッピング
	if err := v.Unmarshal(c); err != nil {
		return err
	}

	return nil
}

// LoadOrDefault は設定ファイルを読み込み、失敗した場合はデフォルト値を使用する
func (c *Config) LoadOrDefault(configPath string) {
	// ファイルが存在しない場合でも環境変数は反映する
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		c.loadFromEnv()
		return
	}

	// 設定ファイルを読み込む（エラーは無視）
	if err := c.Load(configPath); err != nil {
		c.loadFromEnv()
	}
}

// loadFromEnv は設定ファイルなしで環境変数とデフォルト値のみを反映する
func (c *Config) loadFromEnv() {
	v := viper.New()
	v.SetEnvPrefix("OYAKATA")
	v.AutomaticEnv()
	v.BindEnv("github.token", "GITHUB_TOKEN", "OYAKATA_GITHUB_TOKEN")
	setDefaults(v)
	_ = v.Unmarshal(c)
}

// setDefaults はviperにデフォルト値を設定する
func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.command", "claude")
	v.SetDefault("agent.permission_mode", "acceptEdits")
	v.SetDefault("agent.safe_mode", false)
	v.SetDefault("agent.timeout", 10*time.Minute)
	v.SetDefault("verify.lint_command", "npm run lint")
	v.SetDefault("verify.test_command", "npm test")
	v.SetDefault("verify.build_command", "npm run build")
	v.SetDefault("orchestrator.auto_commit", true)
	v.SetDefault("orchestrator.run_lint", true)
	v.SetDefault("orchestrator.run_tests", true)
	v.SetDefault("orchestrator.run_build", true)
	v.SetDefault("orchestrator.max_retries", 3)
	v.SetDefault("orchestrator.priority_threshold", "medium")
	v.SetDefault("orchestrator.require_human_review", false)
	v.SetDefault("orchestrator.refactor_requeue", RefactorRequeueOriginal)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("GitHub token is required")
	}

	if c.Agent.Command == "" {
		return errors.New("agent command is required")
	}

	if c.Agent.Timeout < time.Minute {
		return errors.New("agent timeout must be at least 1 minute")
	}

	if c.Orchestrator.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}

	switch c.Orchestrator.RefactorRequeue {
	case RefactorRequeueOriginal, RefactorRequeueNewIssue:
	default:
		return fmt.Errorf("invalid refactor_requeue value: %s", c.Orchestrator.RefactorRequeue)
	}

	return nil
}

// DefaultConfigPath はデフォルトの設定ファイルパスを返す
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configHome, "oyakata", "oyakata.yml")
}

// CreateDefault はデフォルト設定ファイルを指定されたパスに作成する
func CreateDefault(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := `# oyakata configuration
github:
  # token: ghp_xxxxxxxxxxxx  # or set GITHUB_TOKEN

agent:
  command: claude
  permission_mode: acceptEdits
  safe_mode: false
  timeout: 10m

verify:
  lint_command: npm run lint
  test_command: npm test
  build_command: npm run build

orchestrator:
  auto_commit: true
  run_lint: true
  run_tests: true
  run_build: true
  max_retries: 3
  priority_threshold: medium
  require_human_review: false
  refactor_requeue: original
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
