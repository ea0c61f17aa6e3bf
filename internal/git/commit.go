package git

import (
	"context"
	"fmt"

	"github.com/douhashi/oyakata/internal/logger"
)

// Committer はコミット操作を管理するインターフェース
type Committer interface {
	// HasChanges は作業ツリーに未コミットの変更があるかを確認する
	HasChanges(ctx context.Context, repoPath string) (bool, error)

	// CommitAll はすべての変更をステージしてコミットし、コミットハッシュを返す
	CommitAll(ctx context.Context, repoPath, message string) (string, error)
}

// committerImpl はCommitterインターフェースの実装
type committerImpl struct {
	logger  logger.Logger
	command *Command
}

// NewCommitter は新しいCommitterインスタンスを作成する
func NewCommitter(logger logger.Logger) Committer {
	return &committerImpl{
		logger:  logger,
		command: NewCommand(logger),
	}
}

// HasChanges は作業ツリーに未コミットの変更があるかを確認する
func (c *committerImpl) HasChanges(ctx context.Context, repoPath string) (bool, error) {
	output, err := c.command.Run(ctx, "git", []string{"status", "--porcelain"}, repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}

	return output != "", nil
}

// CommitAll はすべての変更をステージしてコミットし、コミットハッシュを返す
func (c *committerImpl) CommitAll(ctx context.Context, repoPath, message string) (string, error) {
	logFields := []interface{}{
		"repoPath", repoPath,
		"message", message,
	}

	c.logger.Info("Committing all changes", logFields...)

	// すべての変更をステージ
	if _, err := c.command.Run(ctx, "git", []string{"add", "-A"}, repoPath); err != nil {
		errorFields := append(logFields, "error", err.Error())
		c.logger.Error("Failed to stage changes", errorFields...)
		return "", fmt.Errorf("failed to stage changes: %w", err)
	}

	// コミットを作成
	if _, err := c.command.Run(ctx, "git", []string{"commit", "-m", message}, repoPath); err != nil {
		errorFields := append(logFields, "error", err.Error())
		c.logger.Error("Failed to commit changes", errorFields...)
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	// コミットハッシュを取得
	hash, err := c.command.Run(ctx, "git", []string{"rev-parse", "--short", "HEAD"}, repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash: %w", err)
	}

	successFields := append(logFields, "commit", hash)
	c.logger.Info("Changes committed successfully", successFields...)

	return hash, nil
}
