package orchestrator

import (
	"context"
	"sync"

	"github.com/douhashi/oyakata/internal/github"
	"github.com/douhashi/oyakata/internal/logger"
	"golang.org/x/sync/singleflight"
)

// IssueCache はIssueスナップショットのリードスルーキャッシュ。
// 同一フェーズの繰り返し実行中にトラッカーへ問い合わせ直さないために使う。
type IssueCache struct {
	issues github.IssueService
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]*github.Issue
	group singleflight.Group
}

// NewIssueCache は新しいIssueCacheを作成する
func NewIssueCache(issues github.IssueService, log logger.Logger) *IssueCache {
	return &IssueCache{
		issues: issues,
		logger: log,
		cache:  make(map[string]*github.Issue),
	}
}

// Get はキャッシュからIssueを返す。未取得の場合はトラッカーから読み込む。
// 同じIssueへの同時リクエストは1回の取得にまとめられる。
func (c *IssueCache) Get(ctx context.Context, id string) (*github.Issue, error) {
	c.mu.RLock()
	if issue, ok := c.cache[id]; ok {
		c.mu.RUnlock()
		return issue, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		issue, err := c.issues.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[id] = issue
		c.mu.Unlock()
		c.logger.Debug("issue cached", "issue_id", id, "title", issue.Title)
		return issue, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*github.Issue), nil
}

// Put はIssueスナップショットをキャッシュへ格納する
func (c *IssueCache) Put(issue *github.Issue) {
	if issue == nil || issue.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[issue.ID] = issue
}

// Invalidate はIssueのキャッシュを破棄する
func (c *IssueCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, id)
}

// Clear は全キャッシュを破棄する
func (c *IssueCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*github.Issue)
}
