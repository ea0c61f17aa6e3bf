package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/douhashi/oyakata/internal/testutil/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("デフォルト値が設定される", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, "claude", cfg.Agent.Command)
		assert.Equal(t, 10*time.Minute, cfg.Agent.Timeout)
		assert.True(t, cfg.Orchestrator.AutoCommit)
		assert.True(t, cfg.Orchestrator.RunLint)
		assert.True(t, cfg.Orchestrator.RunTests)
		assert.True(t, cfg.Orchestrator.RunBuild)
		assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
		assert.False(t, cfg.Orchestrator.RequireHumanReview)
		assert.Equal(t, RefactorRequeueOriginal, cfg.Orchestrator.RefactorRequeue)
	})
}

func TestConfig_Load(t *testing.T) {
	t.Run("設定ファイルから読み込める", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "oyakata.yml")
		content := `
github:
  token: test-token
agent:
  command: claude
  timeout: 5m
verify:
  test_command: go test ./...
orchestrator:
  max_retries: 5
  require_human_review: true
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		// Act
		cfg := NewConfig()
		err := cfg.Load(configPath)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "test-token", cfg.GitHub.Token)
		assert.Equal(t, 5*time.Minute, cfg.Agent.Timeout)
		assert.Equal(t, "go test ./...", cfg.Verify.TestCommand)
		assert.Equal(t, 5, cfg.Orchestrator.MaxRetries)
		assert.True(t, cfg.Orchestrator.RequireHumanReview)
		// 未指定の項目はデフォルト値
		assert.Equal(t, "npm run lint", cfg.Verify.LintCommand)
		assert.True(t, cfg.Orchestrator.AutoCommit)
	})

	t.Run("存在しないファイルはエラーになる", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Load("/nonexistent/oyakata.yml")
		assert.Error(t, err)
	})

	t.Run("環境変数GITHUB_TOKENからトークンを読み込める", func(t *testing.T) {
		// Arrange
		guard := helpers.NewEnvGuard(t)
		defer guard.Restore()
		guard.Set("GITHUB_TOKEN", "env-token")
		guard.Unset("OYAKATA_GITHUB_TOKEN")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "oyakata.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("agent:\n  command: claude\n"), 0644))

		// Act
		cfg := NewConfig()
		err := cfg.Load(configPath)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.GitHub.Token)
	})
}

func TestConfig_LoadOrDefault(t *testing.T) {
	t.Run("ファイルが存在しない場合はデフォルト値を使用する", func(t *testing.T) {
		guard := helpers.NewEnvGuard(t)
		defer guard.Restore()
		guard.Unset("GITHUB_TOKEN")
		guard.Unset("OYAKATA_GITHUB_TOKEN")

		cfg := NewConfig()
		cfg.LoadOrDefault("/nonexistent/oyakata.yml")

		assert.Equal(t, "claude", cfg.Agent.Command)
		assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
	})

	t.Run("ファイルが存在しなくても環境変数は反映される", func(t *testing.T) {
		guard := helpers.NewEnvGuard(t)
		defer guard.Restore()
		guard.Set("GITHUB_TOKEN", "env-only-token")

		cfg := NewConfig()
		cfg.LoadOrDefault("/nonexistent/oyakata.yml")

		assert.Equal(t, "env-only-token", cfg.GitHub.Token)
	})
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.GitHub.Token = "test-token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "有効な設定はエラーなし",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "トークンがない場合はエラー",
			mutate:  func(c *Config) { c.GitHub.Token = "" },
			wantErr: "GitHub token is required",
		},
		{
			name:    "エージェントコマンドがない場合はエラー",
			mutate:  func(c *Config) { c.Agent.Command = "" },
			wantErr: "agent command is required",
		},
		{
			name:    "タイムアウトが短すぎる場合はエラー",
			mutate:  func(c *Config) { c.Agent.Timeout = 30 * time.Second },
			wantErr: "agent timeout must be at least 1 minute",
		},
		{
			name:    "リトライ回数が負の場合はエラー",
			mutate:  func(c *Config) { c.Orchestrator.MaxRetries = -1 },
			wantErr: "max retries must not be negative",
		},
		{
			name:    "無効なrefactor_requeue値はエラー",
			mutate:  func(c *Config) { c.Orchestrator.RefactorRequeue = "both" },
			wantErr: "invalid refactor_requeue value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCreateDefault(t *testing.T) {
	t.Run("デフォルト設定ファイルを作成できる", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "oyakata", "oyakata.yml")

		// Act
		err := CreateDefault(configPath)

		// Assert
		require.NoError(t, err)

		cfg := NewConfig()
		require.NoError(t, cfg.Load(configPath))
		assert.Equal(t, "claude", cfg.Agent.Command)
		assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
	})

	t.Run("既存ファイルは上書きしない", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "oyakata.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("existing"), 0644))

		// Act
		err := CreateDefault(configPath)

		// Assert
		assert.Error(t, err)
		content, readErr := os.ReadFile(configPath)
		require.NoError(t, readErr)
		assert.Equal(t, "existing", string(content))
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("XDG_CONFIG_HOMEが設定されている場合はそれを使う", func(t *testing.T) {
		guard := helpers.NewEnvGuard(t)
		defer guard.Restore()
		guard.Set("XDG_CONFIG_HOME", "/custom/config")

		assert.Equal(t, "/custom/config/oyakata/oyakata.yml", DefaultConfigPath())
	})

	t.Run("XDG_CONFIG_HOMEが未設定の場合はHOME配下を使う", func(t *testing.T) {
		guard := helpers.NewEnvGuard(t)
		defer guard.Restore()
		guard.Unset("XDG_CONFIG_HOME")
		guard.Set("HOME", "/home/testuser")

		assert.Equal(t, "/home/testuser/.config/oyakata/oyakata.yml", DefaultConfigPath())
	})
}
