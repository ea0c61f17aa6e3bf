package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/douhashi/oyakata/internal/testutil/builders"
	"github.com/douhashi/oyakata/internal/testutil/helpers"
	"github.com/douhashi/oyakata/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestCache(t *testing.T) (*IssueCache, *mocks.MockIssueService) {
	t.Helper()
	log, _ := helpers.NewObservableLogger(zapcore.DebugLevel)
	issues := mocks.NewMockIssueService()
	return NewIssueCache(issues, log), issues
}

func TestIssueCache_Get(t *testing.T) {
	t.Run("正常系: 2回目以降はキャッシュから返る", func(t *testing.T) {
		cache, issues := newTestCache(t)
		issue := builders.NewIssueBuilder().WithID("1").WithTitle("Fix login").Build()
		issues.On("Get", mock.Anything, "1").Return(issue, nil)

		first, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)
		second, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)

		assert.Equal(t, "Fix login", first.Title)
		assert.Same(t, first, second)
		issues.AssertNumberOfCalls(t, "Get", 1)
	})

	t.Run("異常系: 取得エラーはキャッシュされない", func(t *testing.T) {
		cache, issues := newTestCache(t)
		issue := builders.NewIssueBuilder().WithID("1").Build()
		issues.On("Get", mock.Anything, "1").Return(nil, errors.New("tracker unavailable")).Once()
		issues.On("Get", mock.Anything, "1").Return(issue, nil)

		_, err := cache.Get(context.Background(), "1")
		require.Error(t, err)

		recovered, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "1", recovered.ID)
		issues.AssertNumberOfCalls(t, "Get", 2)
	})

	t.Run("正常系: 同一Issueへの同時リクエストは1回の取得にまとめられる", func(t *testing.T) {
		cache, issues := newTestCache(t)
		issue := builders.NewIssueBuilder().WithID("1").Build()

		fetchStarted := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		issues.On("Get", mock.Anything, "1").Run(func(mock.Arguments) {
			once.Do(func() { close(fetchStarted) })
			<-release
		}).Return(issue, nil)

		var wg sync.WaitGroup
		results := make([]error, 5)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[0] = cache.Get(context.Background(), "1")
		}()
		<-fetchStarted

		for i := 1; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = cache.Get(context.Background(), "1")
			}(i)
		}

		// 後続のリクエストが実行中の取得へ合流するのを待ってから解放する
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		for i, err := range results {
			assert.NoError(t, err, "request %d", i)
		}
		issues.AssertNumberOfCalls(t, "Get", 1)
	})
}

func TestIssueCache_Put(t *testing.T) {
	t.Run("正常系: 格納済みのIssueは取得なしで返る", func(t *testing.T) {
		cache, issues := newTestCache(t)
		issue := builders.NewIssueBuilder().WithID("1").WithTitle("Prefetched").Build()

		cache.Put(issue)

		got, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Prefetched", got.Title)
		issues.AssertNumberOfCalls(t, "Get", 0)
	})

	t.Run("正常系: nilやID空のIssueは無視される", func(t *testing.T) {
		cache, _ := newTestCache(t)

		cache.Put(nil)
		cache.Put(builders.NewIssueBuilder().WithID("").Build())
	})
}

func TestIssueCache_Invalidate(t *testing.T) {
	t.Run("正常系: 破棄後は再取得される", func(t *testing.T) {
		cache, issues := newTestCache(t)
		stale := builders.NewIssueBuilder().WithID("1").WithTitle("Stale").Build()
		fresh := builders.NewIssueBuilder().WithID("1").WithTitle("Fresh").Build()

		cache.Put(stale)
		cache.Invalidate("1")
		issues.On("Get", mock.Anything, "1").Return(fresh, nil)

		got, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Fresh", got.Title)
		issues.AssertNumberOfCalls(t, "Get", 1)
	})
}

func TestIssueCache_Clear(t *testing.T) {
	t.Run("正常系: 全キャッシュが破棄される", func(t *testing.T) {
		cache, issues := newTestCache(t)
		cache.Put(builders.NewIssueBuilder().WithID("1").Build())
		cache.Put(builders.NewIssueBuilder().WithID("2").Build())

		cache.Clear()

		issues.On("Get", mock.Anything, mock.Anything).Return(builders.NewIssueBuilder().WithID("1").Build(), nil)
		_, err := cache.Get(context.Background(), "1")
		require.NoError(t, err)
		issues.AssertNumberOfCalls(t, "Get", 1)
	})
}
