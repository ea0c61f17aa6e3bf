package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/douhashi/oyakata/internal/git"
	"github.com/douhashi/oyakata/internal/logger"
)

// RepoInfoError は詳細なエラー情報を持つエラー型
type RepoInfoError struct {
	Step    string // どの段階で失敗したか
	Cause   error  // 根本的な原因
	Message string // ユーザー向けメッセージ
}

func (e *RepoInfoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *RepoInfoError) Unwrap() error {
	return e.Cause
}

// GetGitHubRepoInfo は現在のGitリポジトリからGitHubリポジトリ情報を取得する
// 各コマンドで統一的に使用される関数
func GetGitHubRepoInfo(ctx context.Context, log logger.Logger) (*GitHubRepoInfo, error) {
	// 現在の作業ディレクトリを取得
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &RepoInfoError{
			Step:    "working_directory",
			Cause:   err,
			Message: "作業ディレクトリの取得に失敗しました",
		}
	}

	// .gitディレクトリを探す
	gitDir := findGitDirectory(cwd)
	if gitDir == "" {
		return nil, &RepoInfoError{
			Step:    "git_directory",
			Cause:   fmt.Errorf("no .git directory found"),
			Message: "Gitリポジトリが見つかりません。Gitリポジトリのルートディレクトリで実行してください",
		}
	}

	// リポジトリのルートディレクトリを取得
	repoRoot := filepath.Dir(gitDir)

	// git remote get-url origin を実行
	repo := git.NewRepository(log)
	remoteURL, err := repo.GetRemoteURL(ctx, repoRoot, "origin")
	if err != nil {
		return nil, &RepoInfoError{
			Step:    "remote_url",
			Cause:   err,
			Message: "リモートURL取得に失敗しました。'origin' リモートが設定されているか確認してください",
		}
	}

	// URLからowner/repo情報を抽出
	repoInfo, err := ParseGitHubURL(remoteURL)
	if err != nil {
		return nil, &RepoInfoError{
			Step:    "url_parsing",
			Cause:   err,
			Message: fmt.Sprintf("GitHub URL解析に失敗しました。URL: %s", remoteURL),
		}
	}

	return repoInfo, nil
}

// findGitDirectory は指定されたパスから.gitディレクトリを探す
func findGitDirectory(startPath string) string {
	path := startPath
	for {
		gitPath := filepath.Join(path, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath
			}
			// .gitがファイルの場合（worktreeの場合）
			return gitPath
		}

		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}
	return ""
}
