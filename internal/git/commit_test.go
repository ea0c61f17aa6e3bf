package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/douhashi/oyakata/internal/testutil/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestCommitter_HasChanges(t *testing.T) {
	t.Run("クリーンな作業ツリーではfalseを返す", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		require.NoError(t, helpers.InitGitRepo(t, tmpDir))
		require.NoError(t, helpers.CommitFile(t, tmpDir, "README.md", "# test", "initial commit"))

		testLogger, _ := helpers.NewObservableLogger(zapcore.InfoLevel)
		committer := NewCommitter(testLogger)

		// Act
		hasChanges, err := committer.HasChanges(context.Background(), tmpDir)

		// Assert
		require.NoError(t, err)
		assert.False(t, hasChanges)
	})

	t.Run("未コミットの変更がある場合はtrueを返す", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		require.NoError(t, helpers.InitGitRepo(t, tmpDir))
		require.NoError(t, helpers.CommitFile(t, tmpDir, "README.md", "# test", "initial commit"))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "new.txt"), []byte("new"), 0644))

		testLogger, _ := helpers.NewObservableLogger(zapcore.InfoLevel)
		committer := NewCommitter(testLogger)

		// Act
		hasChanges, err := committer.HasChanges(context.Background(), tmpDir)

		// Assert
		require.NoError(t, err)
		assert.True(t, hasChanges)
	})
}

func TestCommitter_CommitAll(t *testing.T) {
	t.Run("すべての変更をコミットしてハッシュを返す", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		require.NoError(t, helpers.InitGitRepo(t, tmpDir))
		require.NoError(t, helpers.CommitFile(t, tmpDir, "README.md", "# test", "initial commit"))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "feature.txt"), []byte("feature"), 0644))

		testLogger, _ := helpers.NewObservableLogger(zapcore.InfoLevel)
		committer := NewCommitter(testLogger)

		// Act
		hash, err := committer.CommitAll(context.Background(), tmpDir, "add feature")

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, hash)

		hasChanges, err := committer.HasChanges(context.Background(), tmpDir)
		require.NoError(t, err)
		assert.False(t, hasChanges)
	})

	t.Run("変更がない場合はエラーを返す", func(t *testing.T) {
		// Arrange
		tmpDir := t.TempDir()
		require.NoError(t, helpers.InitGitRepo(t, tmpDir))
		require.NoError(t, helpers.CommitFile(t, tmpDir, "README.md", "# test", "initial commit"))

		testLogger, _ := helpers.NewObservableLogger(zapcore.InfoLevel)
		committer := NewCommitter(testLogger)

		// Act
		_, err := committer.CommitAll(context.Background(), tmpDir, "empty commit")

		// Assert
		assert.Error(t, err)
	})
}
