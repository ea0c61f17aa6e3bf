package claude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs(t *testing.T) {
	t.Run("基本のストリーミング引数を含む", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-1"})

		assert.Contains(t, args, "--print")
		assert.Contains(t, args, "--input-format")
		assert.Contains(t, args, "--output-format")
		assert.Contains(t, args, "--verbose")
	})

	t.Run("セッションIDを引数に含める", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-2"})

		assert.Contains(t, args, "--session-id")
		assert.Contains(t, args, "sid-2")
	})

	t.Run("パーミッションモードを引数に含める", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-3", PermissionMode: "acceptEdits"})

		assert.Contains(t, args, "--permission-mode")
		assert.Contains(t, args, "acceptEdits")
	})

	t.Run("パーミッションモード未指定の場合はフラグを付けない", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-4"})

		assert.NotContains(t, args, "--permission-mode")
	})

	t.Run("セーフモード無効時はバイパスフラグを付ける", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-5", SafeMode: false})

		assert.Contains(t, args, "--dangerously-skip-permissions")
	})

	t.Run("セーフモード有効時はバイパスフラグを付けない", func(t *testing.T) {
		args := BuildArgs(StartOptions{SessionID: "sid-6", SafeMode: true})

		assert.NotContains(t, args, "--dangerously-skip-permissions")
	})
}
