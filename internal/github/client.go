package github

import (
	"context"
	"errors"

	"github.com/douhashi/oyakata/internal/logger"
	gogithub "github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"
)

// issuesAPI はGitHub Issue操作のうちクライアントが利用するサブセット
type issuesAPI interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *gogithub.IssueListByRepoOptions) ([]*gogithub.Issue, *gogithub.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*gogithub.Issue, *gogithub.Response, error)
	Create(ctx context.Context, owner, repo string, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *gogithub.IssueComment) (*gogithub.IssueComment, *gogithub.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*gogithub.Label, *gogithub.Response, error)
	RemoveLabelForIssue(ctx context.Context, owner, repo string, number int, label string) (*gogithub.Response, error)
	ListLabelsByIssue(ctx context.Context, owner, repo string, number int, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error)
	ListLabels(ctx context.Context, owner, repo string, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error)
	CreateLabel(ctx context.Context, owner, repo string, label *gogithub.Label) (*gogithub.Label, *gogithub.Response, error)
}

// Client はGitHub APIクライアントのラッパー
// 1つのリポジトリに束縛され、そのリポジトリのイシューを操作する
type Client struct {
	issues issuesAPI
	owner  string
	repo   string
	logger logger.Logger
	retry  RetryStrategy
}

// NewClient は新しいGitHub APIクライアントを作成する
func NewClient(token, owner, repo string, log logger.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("GitHub token is required")
	}
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Transport = &loggingRoundTripper{
		base:   tc.Transport,
		logger: log,
	}

	return &Client{
		issues: gogithub.NewClient(tc).Issues,
		owner:  owner,
		repo:   repo,
		logger: log,
		retry:  DefaultRetryStrategy(),
	}, nil
}
