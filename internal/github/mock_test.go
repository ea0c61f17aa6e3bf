package github

import (
	"context"
	"errors"

	gogithub "github.com/google/go-github/v67/github"
)

// fakeIssuesAPI はテスト用のGitHub Issue APIのフェイク
type fakeIssuesAPI struct {
	listByRepoFunc     func(ctx context.Context, owner, repo string, opts *gogithub.IssueListByRepoOptions) ([]*gogithub.Issue, *gogithub.Response, error)
	getFunc            func(ctx context.Context, owner, repo string, number int) (*gogithub.Issue, *gogithub.Response, error)
	createFunc         func(ctx context.Context, owner, repo string, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error)
	editFunc           func(ctx context.Context, owner, repo string, number int, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error)
	createCommentFunc  func(ctx context.Context, owner, repo string, number int, comment *gogithub.IssueComment) (*gogithub.IssueComment, *gogithub.Response, error)
	addLabelsFunc      func(ctx context.Context, owner, repo string, number int, labels []string) ([]*gogithub.Label, *gogithub.Response, error)
	removeLabelFunc    func(ctx context.Context, owner, repo string, number int, label string) (*gogithub.Response, error)
	listIssueLblsFunc  func(ctx context.Context, owner, repo string, number int, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error)
	listLabelsFunc     func(ctx context.Context, owner, repo string, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error)
	createLabelFunc    func(ctx context.Context, owner, repo string, label *gogithub.Label) (*gogithub.Label, *gogithub.Response, error)
}

func (f *fakeIssuesAPI) ListByRepo(ctx context.Context, owner, repo string, opts *gogithub.IssueListByRepoOptions) ([]*gogithub.Issue, *gogithub.Response, error) {
	if f.listByRepoFunc != nil {
		return f.listByRepoFunc(ctx, owner, repo, opts)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) Get(ctx context.Context, owner, repo string, number int) (*gogithub.Issue, *gogithub.Response, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, owner, repo, number)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) Create(ctx context.Context, owner, repo string, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, owner, repo, issue)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) Edit(ctx context.Context, owner, repo string, number int, issue *gogithub.IssueRequest) (*gogithub.Issue, *gogithub.Response, error) {
	if f.editFunc != nil {
		return f.editFunc(ctx, owner, repo, number, issue)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) CreateComment(ctx context.Context, owner, repo string, number int, comment *gogithub.IssueComment) (*gogithub.IssueComment, *gogithub.Response, error) {
	if f.createCommentFunc != nil {
		return f.createCommentFunc(ctx, owner, repo, number, comment)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*gogithub.Label, *gogithub.Response, error) {
	if f.addLabelsFunc != nil {
		return f.addLabelsFunc(ctx, owner, repo, number, labels)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) RemoveLabelForIssue(ctx context.Context, owner, repo string, number int, label string) (*gogithub.Response, error) {
	if f.removeLabelFunc != nil {
		return f.removeLabelFunc(ctx, owner, repo, number, label)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) ListLabelsByIssue(ctx context.Context, owner, repo string, number int, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error) {
	if f.listIssueLblsFunc != nil {
		return f.listIssueLblsFunc(ctx, owner, repo, number, opts)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) ListLabels(ctx context.Context, owner, repo string, opts *gogithub.ListOptions) ([]*gogithub.Label, *gogithub.Response, error) {
	if f.listLabelsFunc != nil {
		return f.listLabelsFunc(ctx, owner, repo, opts)
	}
	return nil, nil, errors.New("not implemented")
}

func (f *fakeIssuesAPI) CreateLabel(ctx context.Context, owner, repo string, label *gogithub.Label) (*gogithub.Label, *gogithub.Response, error) {
	if f.createLabelFunc != nil {
		return f.createLabelFunc(ctx, owner, repo, label)
	}
	return nil, nil, errors.New("not implemented")
}

var _ issuesAPI = (*fakeIssuesAPI)(nil)

// テスト用のヘルパー関数

func newTestIssue(number int, title string, labels []string) *gogithub.Issue {
	issue := &gogithub.Issue{
		Number: gogithub.Int(number),
		Title:  gogithub.String(title),
		State:  gogithub.String("open"),
	}

	for _, label := range labels {
		issue.Labels = append(issue.Labels, &gogithub.Label{
			Name: gogithub.String(label),
		})
	}

	return issue
}

func newTestResponse(nextPage int) *gogithub.Response {
	return &gogithub.Response{
		NextPage: nextPage,
	}
}
