package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/paths"
	"github.com/douhashi/oyakata/internal/testutil/helpers"
	"github.com/douhashi/oyakata/internal/utils"
)

// executeCommand は新しいルートコマンドを組み立てて実行し、出力を返す
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// executeCommandContext は指定されたコンテキストでコマンドを実行する
func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// isolateEnv はHOMEとトークン環境変数をテスト用に隔離し、
// グローバルフラグをリセットする
func isolateEnv(t *testing.T) {
	t.Helper()

	guard := helpers.NewEnvGuard(t)
	guard.Set("HOME", t.TempDir())
	guard.Unset("GITHUB_TOKEN")
	guard.Unset("OYAKATA_GITHUB_TOKEN")
	guard.Unset("XDG_CONFIG_HOME")
	guard.Unset("DEBUG")
	guard.Unset("LOG_LEVEL")
	t.Cleanup(guard.Restore)

	cfgFile = ""
	verbose = false
}

// setupTestProject はリポジトリ情報とパス管理をテスト用に差し替える。
// 戻り値は状態ディレクトリのベースパスと使用したPathManager。
func setupTestProject(t *testing.T) (string, paths.PathManager) {
	t.Helper()

	projectDir := t.TempDir()
	stateDir := filepath.Join(projectDir, "state")
	pm := paths.NewPathManager(stateDir)

	mocker := helpers.NewFunctionMocker()
	mocker.MockFunc(&getRepoInfoFunc, func(ctx context.Context, log logger.Logger) (*utils.GitHubRepoInfo, error) {
		return &utils.GitHubRepoInfo{Owner: "douhashi", Repo: "example"}, nil
	})
	mocker.MockFunc(&getProjectRootFunc, func(ctx context.Context, log logger.Logger) (string, error) {
		return projectDir, nil
	})
	mocker.MockFunc(&newPathManagerFunc, func(string) paths.PathManager {
		return pm
	})
	t.Cleanup(mocker.Restore)

	return stateDir, pm
}

// testRepoIdentifier はsetupTestProjectが設定するリポジトリの識別子
const testRepoIdentifier = "douhashi-example"

// writeSessionFile はセッションファイルを直接書き込む
func writeSessionFile(t *testing.T, pm paths.PathManager, content string) string {
	t.Helper()

	path := pm.SessionFile(testRepoIdentifier)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("セッションディレクトリの作成に失敗: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("セッションファイルの書き込みに失敗: %v", err)
	}
	return path
}

// stubIssueService はGitHub APIへの呼び出しをテスト用に差し替えるIssueService実装。
// 設定されていないメソッドはゼロ値を返す。
type stubIssueService struct {
	listFunc    func(ctx context.Context) ([]*github.Issue, error)
	getFunc     func(ctx context.Context, id string) (*github.Issue, error)
	createFunc  func(ctx context.Context, title, issueType, priority, description string) (string, error)
	updateFunc  func(ctx context.Context, id string, update github.IssueUpdate) error
	commentFunc func(ctx context.Context, id, body string) error
	closeFunc   func(ctx context.Context, id, reason string) error
}

func (s *stubIssueService) List(ctx context.Context) ([]*github.Issue, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return nil, nil
}

func (s *stubIssueService) Get(ctx context.Context, id string) (*github.Issue, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, id)
	}
	return &github.Issue{ID: id, Status: github.StatusOpen}, nil
}

func (s *stubIssueService) Create(ctx context.Context, title, issueType, priority, description string) (string, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, title, issueType, priority, description)
	}
	return "", nil
}

func (s *stubIssueService) Update(ctx context.Context, id string, update github.IssueUpdate) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, id, update)
	}
	return nil
}

func (s *stubIssueService) Comment(ctx context.Context, id, body string) error {
	if s.commentFunc != nil {
		return s.commentFunc(ctx, id, body)
	}
	return nil
}

func (s *stubIssueService) Close(ctx context.Context, id, reason string) error {
	if s.closeFunc != nil {
		return s.closeFunc(ctx, id, reason)
	}
	return nil
}

// useIssueService はGitHubクライアントの生成をテスト用実装へ差し替える
func useIssueService(t *testing.T, svc github.IssueService) {
	t.Helper()

	mocker := helpers.NewFunctionMocker()
	mocker.MockFunc(&newIssueServiceFunc, func(token, owner, repo string, log logger.Logger) (github.IssueService, error) {
		return svc, nil
	})
	t.Cleanup(mocker.Restore)
}
