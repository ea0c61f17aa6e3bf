package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRepoInfoError(t *testing.T) {
	tests := []struct {
		name     string
		err      *RepoInfoError
		wantMsg  string
		wantStep string
	}{
		{
			name: "working_directory error",
			err: &RepoInfoError{
				Step:    "working_directory",
				Cause:   errors.New("permission denied"),
				Message: "作業ディレクトリの取得に失敗しました",
			},
			wantMsg:  "作業ディレクトリの取得に失敗しました: permission denied",
			wantStep: "working_directory",
		},
		{
			name: "git_directory error",
			err: &RepoInfoError{
				Step:    "git_directory",
				Cause:   errors.New("no .git directory found"),
				Message: "Gitリポジトリが見つかりません",
			},
			wantMsg:  "Gitリポジトリが見つかりません: no .git directory found",
			wantStep: "git_directory",
		},
		{
			name: "remote_url error",
			err: &RepoInfoError{
				Step:    "remote_url",
				Cause:   errors.New("fatal: No such remote 'origin'"),
				Message: "リモートURL取得に失敗しました",
			},
			wantMsg:  "リモートURL取得に失敗しました: fatal: No such remote 'origin'",
			wantStep: "remote_url",
		},
		{
			name: "url_parsing error",
			err: &RepoInfoError{
				Step:    "url_parsing",
				Cause:   errors.New("invalid GitHub URL format"),
				Message: "GitHub URL解析に失敗しました",
			},
			wantMsg:  "GitHub URL解析に失敗しました: invalid GitHub URL format",
			wantStep: "url_parsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("RepoInfoError.Error() = %v, want %v", tt.err.Error(), tt.wantMsg)
			}

			if tt.err.Step != tt.wantStep {
				t.Errorf("RepoInfoError.Step = %v, want %v", tt.err.Step, tt.wantStep)
			}

			if unwrapped := tt.err.Unwrap(); unwrapped != tt.err.Cause {
				t.Errorf("RepoInfoError.Unwrap() = %v, want %v", unwrapped, tt.err.Cause)
			}
		})
	}
}

func TestFindGitDirectory(t *testing.T) {
	t.Run("カレントディレクトリの.gitを見つける", func(t *testing.T) {
		root := t.TempDir()
		gitDir := filepath.Join(root, ".git")
		if err := os.Mkdir(gitDir, 0755); err != nil {
			t.Fatal(err)
		}

		if got := findGitDirectory(root); got != gitDir {
			t.Errorf("findGitDirectory() = %v, want %v", got, gitDir)
		}
	})

	t.Run("親ディレクトリを遡って.gitを見つける", func(t *testing.T) {
		root := t.TempDir()
		gitDir := filepath.Join(root, ".git")
		if err := os.Mkdir(gitDir, 0755); err != nil {
			t.Fatal(err)
		}
		nested := filepath.Join(root, "internal", "orchestrator")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}

		if got := findGitDirectory(nested); got != gitDir {
			t.Errorf("findGitDirectory() = %v, want %v", got, gitDir)
		}
	})

	t.Run(".gitがファイルの場合も見つける", func(t *testing.T) {
		// worktreeでは.gitはgitdirへのポインタファイルになる
		root := t.TempDir()
		gitFile := filepath.Join(root, ".git")
		if err := os.WriteFile(gitFile, []byte("gitdir: /somewhere/else\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if got := findGitDirectory(root); got != gitFile {
			t.Errorf("findGitDirectory() = %v, want %v", got, gitFile)
		}
	})

	t.Run(".gitが存在しない場合は空文字を返す", func(t *testing.T) {
		root := t.TempDir()

		if got := findGitDirectory(root); got != "" {
			t.Errorf("findGitDirectory() = %v, want empty", got)
		}
	})
}
