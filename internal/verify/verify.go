package verify

import (
	"context"
	"fmt"
	"strings"
)

// Options は検証実行時に有効化するカテゴリの指定
type Options struct {
	RunLint  bool
	RunTests bool
	RunBuild bool
}

// CheckResult は1カテゴリ分の検証結果
type CheckResult struct {
	Success bool
	Skipped bool
	Output  string
}

// Result は検証全体の結果。Successは有効化された全カテゴリの成功の論理積。
type Result struct {
	Success bool
	Lint    CheckResult
	Tests   CheckResult
	Build   CheckResult
}

// FailureText は失敗したカテゴリの出力をまとめたテキストを返す。
// 修正プロンプトへの埋め込みに使用する。
func (r *Result) FailureText() string {
	var sections []string
	for _, c := range []struct {
		name  string
		check CheckResult
	}{
		{"lint", r.Lint},
		{"tests", r.Tests},
		{"build", r.Build},
	} {
		if c.check.Skipped || c.check.Success {
			continue
		}
		output := strings.TrimSpace(c.check.Output)
		if output == "" {
			output = "(no output)"
		}
		sections = append(sections, fmt.Sprintf("## %s\n%s", c.name, output))
	}
	return strings.Join(sections, "\n\n")
}

// Runner は検証の実行を抽象化するインターフェース
type Runner interface {
	Run(ctx context.Context, projectPath string, opts Options) (*Result, error)
}
