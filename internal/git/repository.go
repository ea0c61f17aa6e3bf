package git

import (
	"context"
	"strings"

	"github.com/douhashi/oyakata/internal/logger"
)

// Repository はgitリポジトリ操作を管理するインターフェース
type Repository interface {
	// GetRootPath はリポジトリのルートパスを取得する
	GetRootPath(ctx context.Context) (string, error)

	// IsGitRepository は指定されたパスがgitリポジトリかを確認する
	IsGitRepository(ctx context.Context, path string) bool

	// GetCurrentCommit は現在のコミットハッシュを取得する
	GetCurrentCommit(ctx context.Context, path string) (string, error)

	// GetRemoteURL は指定されたリモートのURLを取得する
	GetRemoteURL(ctx context.Context, path string, remoteName string) (string, error)

	// HasChanges は作業ツリーに未コミットの変更があるかを確認する
	HasChanges(ctx context.Context, path string) (bool, error)
}

// repositoryImpl はRepositoryインターフェースの実装
type repositoryImpl struct {
	logger  logger.Logger
	command *Command
}

// NewRepository は新しいRepositoryインスタンスを作成する
func NewRepository(logger logger.Logger) Repository {
	return &repositoryImpl{
		logger:  logger,
		command: NewCommand(logger),
	}
}

// GetRootPath はリポジトリのルートパスを取得する
func (r *repositoryImpl) GetRootPath(ctx context.Context) (string, error) {
	output, err := r.command.Run(ctx, "git", []string{"rev-parse", "--show-toplevel"}, ".")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// IsGitRepository は指定されたパスがgitリポジトリかを確認する
func (r *repositoryImpl) IsGitRepository(ctx context.Context, path string) bool {
	_, err := r.command.Run(ctx, "git", []string{"rev-parse", "--git-dir"}, path)
	return err == nil
}

// GetCurrentCommit は現在のコミットハッシュを取得する
func (r *repositoryImpl) GetCurrentCommit(ctx context.Context, path string) (string, error) {
	output, err := r.command.Run(ctx, "git", []string{"rev-parse", "HEAD"}, path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// GetRemoteURL は指定されたリモートのURLを取得する
func (r *repositoryImpl) GetRemoteURL(ctx context.Context, path string, remoteName string) (string, error) {
	output, err := r.command.Run(ctx, "git", []string{"remote", "get-url", remoteName}, path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// HasChanges は作業ツリーに未コミットの変更があるかを確認する
func (r *repositoryImpl) HasChanges(ctx context.Context, path string) (bool, error) {
	output, err := r.command.Run(ctx, "git", []string{"status", "--porcelain"}, path)
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(output) != "", nil
}
