package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var greetFunc = func() string { return "original" }

func TestFunctionMocker_MockFunc(t *testing.T) {
	t.Run("関数変数を差し替えてRestoreで元に戻せる", func(t *testing.T) {
		mocker := NewFunctionMocker()

		mocker.MockFunc(&greetFunc, func() string { return "mocked" })
		assert.Equal(t, "mocked", greetFunc())

		mocker.Restore()
		assert.Equal(t, "original", greetFunc())
	})

	t.Run("複数のモックは後から設定したものから順に復元される", func(t *testing.T) {
		mocker := NewFunctionMocker()

		mocker.MockFunc(&greetFunc, func() string { return "first" })
		mocker.MockFunc(&greetFunc, func() string { return "second" })
		assert.Equal(t, "second", greetFunc())

		mocker.Restore()
		assert.Equal(t, "original", greetFunc())
	})

	t.Run("関数変数へのポインタ以外を渡すとpanicする", func(t *testing.T) {
		mocker := NewFunctionMocker()

		assert.Panics(t, func() {
			mocker.MockFunc(greetFunc, func() string { return "x" })
		})
	})

	t.Run("二重Restoreしても安全", func(t *testing.T) {
		mocker := NewFunctionMocker()
		mocker.MockFunc(&greetFunc, func() string { return "mocked" })

		mocker.Restore()
		mocker.Restore()

		assert.Equal(t, "original", greetFunc())
	})
}
