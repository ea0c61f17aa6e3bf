package verify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/logger"
)

const maxCheckOutput = 10000

// CommandRunner は設定されたコマンドをシェル経由で実行するRunnerの実装
type CommandRunner struct {
	lintCommand  string
	testCommand  string
	buildCommand string
	logger       logger.Logger
}

var _ Runner = (*CommandRunner)(nil)

// NewCommandRunner は新しいCommandRunnerを作成する
func NewCommandRunner(cfg config.VerifyConfig, log logger.Logger) *CommandRunner {
	return &CommandRunner{
		lintCommand:  cfg.LintCommand,
		testCommand:  cfg.TestCommand,
		buildCommand: cfg.BuildCommand,
		logger:       log,
	}
}

// Run は有効化された各カテゴリの検証コマンドを順に実行する
func (r *CommandRunner) Run(ctx context.Context, projectPath string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("verification cancelled: %w", err)
	}

	result := &Result{
		Lint:  r.runCheck(ctx, projectPath, "lint", r.lintCommand, opts.RunLint),
		Tests: r.runCheck(ctx, projectPath, "tests", r.testCommand, opts.RunTests),
		Build: r.runCheck(ctx, projectPath, "build", r.buildCommand, opts.RunBuild),
	}
	result.Success = result.Lint.Success && result.Tests.Success && result.Build.Success

	r.logger.Info("verification finished",
		"project_path", projectPath,
		"success", result.Success,
	)
	return result, nil
}

// runCheck は1カテゴリ分のコマンドを実行する。
// 無効化されたカテゴリは出力なしの成功として扱う。
func (r *CommandRunner) runCheck(ctx context.Context, projectPath, name, command string, enabled bool) CheckResult {
	if !enabled || command == "" {
		return CheckResult{Success: true, Skipped: true}
	}

	r.logger.Debug("running verification check", "check", name, "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = projectPath
	output, err := cmd.CombinedOutput()

	check := CheckResult{
		Success: err == nil,
		Output:  truncateOutput(string(output)),
	}
	if err != nil {
		if check.Output == "" {
			check.Output = err.Error()
		}
		r.logger.Warn("verification check failed", "check", name, "error", err)
	} else {
		r.logger.Info("verification check passed", "check", name)
	}
	return check
}

func truncateOutput(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxCheckOutput {
		return s
	}
	return string(runes[:maxCheckOutput]) + "\n... (output truncated)"
}
