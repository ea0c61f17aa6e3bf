package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/douhashi/oyakata/internal/claude"
	"github.com/douhashi/oyakata/internal/config"
	"github.com/douhashi/oyakata/internal/git"
	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/lock"
	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/orchestrator"
	"github.com/douhashi/oyakata/internal/paths"
	"github.com/douhashi/oyakata/internal/silo"
	"github.com/douhashi/oyakata/internal/utils"
	"github.com/douhashi/oyakata/internal/verify"
	"github.com/spf13/cobra"
)

// テスト用にモック可能な関数変数
var (
	getRepoInfoFunc     = utils.GetGitHubRepoInfo
	getProjectRootFunc  = getProjectRoot
	newPathManagerFunc  = paths.NewPathManager
	newIssueServiceFunc = func(token, owner, repo string, log logger.Logger) (github.IssueService, error) {
		return github.NewClient(token, owner, repo, log)
	}
)

// getProjectRoot は処理対象リポジトリのルートディレクトリを取得する
func getProjectRoot(ctx context.Context, log logger.Logger) (string, error) {
	root, err := git.NewRepository(log).GetRootPath(ctx)
	if err != nil {
		return "", fmt.Errorf("リポジトリのルートパスの取得に失敗: %w", err)
	}
	return root, nil
}

// projectContext は対象リポジトリに束縛されたコマンド実行時の依存一式
type projectContext struct {
	cfg        *config.Config
	log        logger.Logger
	repoInfo   *utils.GitHubRepoInfo
	identifier string
	root       string
	pm         paths.PathManager
	sessions   *orchestrator.SessionStore
}

// newProjectContext はカレントディレクトリのリポジトリ情報から
// コマンド実行に必要な依存一式を構築する
func newProjectContext(ctx context.Context) (*projectContext, error) {
	repoInfo, err := getRepoInfoFunc(ctx, appLog)
	if err != nil {
		return nil, fmt.Errorf("リポジトリ情報の取得に失敗: %w", err)
	}

	root, err := getProjectRootFunc(ctx, appLog)
	if err != nil {
		return nil, err
	}

	identifier := fmt.Sprintf("%s-%s", repoInfo.Owner, repoInfo.Repo)

	pm := newPathManagerFunc("")
	if err := pm.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("状態ディレクトリの作成に失敗: %w", err)
	}
	if err := pm.EnsureRepoDirectories(identifier); err != nil {
		return nil, fmt.Errorf("状態ディレクトリの作成に失敗: %w", err)
	}

	return &projectContext{
		cfg:        appConfig,
		log:        appLog,
		repoInfo:   repoInfo,
		identifier: identifier,
		root:       root,
		pm:         pm,
		sessions:   orchestrator.NewSessionStore(pm.SessionFile(identifier), appLog),
	}, nil
}

// pidFile はこのリポジトリ用のPIDファイルパスを返す
func (p *projectContext) pidFile() string {
	return p.pm.PIDFile(p.identifier)
}

// acquireLock はこのリポジトリのプロセスロックを取得し、解放関数を返す
func (p *projectContext) acquireLock() (func(), error) {
	lk := lock.New(p.pidFile(), p.root, p.log)
	if err := lk.Acquire(); err != nil {
		return nil, err
	}
	return func() { _ = lk.Release() }, nil
}

// buildOrchestrator はオーケストレーターを依存込みで構築する。
// requireTokenが真でGitHubトークンが未設定の場合はエラーを返す。
func (p *projectContext) buildOrchestrator(requireToken bool) (*orchestrator.Orchestrator, error) {
	var issues github.IssueService
	if p.cfg.GitHub.Token != "" {
		svc, err := newIssueServiceFunc(p.cfg.GitHub.Token, p.repoInfo.Owner, p.repoInfo.Repo, p.log)
		if err != nil {
			return nil, fmt.Errorf("GitHubクライアントの作成に失敗: %w", err)
		}
		issues = svc
	} else if requireToken {
		return nil, errors.New("GitHubトークンが設定されていません (GITHUB_TOKEN または設定ファイルのgithub.tokenを設定してください)")
	}

	return orchestrator.New(orchestrator.Deps{
		ProjectPath:    p.root,
		Issues:         issues,
		Agent:          claude.NewProcessClient(p.cfg.Agent.Command, p.log),
		Verifier:       verify.NewCommandRunner(p.cfg.Verify, p.log),
		Committer:      git.NewCommitter(p.log),
		Silo:           silo.NewFileStore(p.pm.SiloDir(p.identifier), p.log),
		Sessions:       p.sessions,
		Logger:         p.log,
		Settings:       orchestrator.SettingsFromConfig(p.cfg.Orchestrator),
		WorkTimeout:    p.cfg.Agent.Timeout,
		PermissionMode: p.cfg.Agent.PermissionMode,
		SafeMode:       p.cfg.Agent.SafeMode,
	}), nil
}

// withSessionOwner はプロセスロックを取得して保存済みセッションを読み込み、
// fnにオーケストレーターを渡して実行する。キューやレビューの
// オフライン操作(実行ループの外からの状態変更)で使う。
func withSessionOwner(cmd *cobra.Command, requireToken bool, fn func(ctx context.Context, orch *orchestrator.Orchestrator) error) error {
	if err := ensureRuntime(); err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := newProjectContext(ctx)
	if err != nil {
		return err
	}

	release, err := p.acquireLock()
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return fmt.Errorf("実行中のoyakataプロセスがあります。停止してから操作してください: %w", err)
		}
		return err
	}
	defer release()

	orch, err := p.buildOrchestrator(requireToken)
	if err != nil {
		return err
	}
	if _, err := orch.LoadSession(); err != nil {
		return err
	}

	return fn(ctx, orch)
}

// liveLockHolder はPIDファイルに記録されたプロセスが生存していればその情報を返す
func liveLockHolder(pidFile string) *lock.ProcessInfo {
	info, err := lock.Read(pidFile)
	if err != nil {
		return nil
	}
	if !info.Alive() {
		return nil
	}
	return info
}

// normalizeIssueID はIssue指定("#14"や"14")を正規化したID文字列に変換する
func normalizeIssueID(arg string) (string, error) {
	id := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("不正なIssue番号: %s", arg)
	}
	return strconv.Itoa(n), nil
}

// ensureRuntime はコマンド単体実行時にもロガーと設定を使えるようにする
func ensureRuntime() error {
	if appLog == nil {
		var err error
		appLog, err = logger.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	if appConfig == nil {
		initConfig()
	}
	return nil
}

// formatIssueList はIssue IDのリストを表示用に整形する
func formatIssueList(ids []string) string {
	if len(ids) == 0 {
		return "(なし)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + id
	}
	return strings.Join(parts, ", ")
}
