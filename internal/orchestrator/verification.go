package orchestrator

import (
	"context"
	"fmt"

	"github.com/douhashi/oyakata/internal/verify"
)

// runVerification は設定で有効化されたカテゴリの検証を実行し、
// カテゴリごとの結果をアクティビティログへ記録する。
func (o *Orchestrator) runVerification(ctx context.Context, issueID string) *verify.Result {
	settings := o.settings()
	opts := verify.Options{
		RunLint:  settings.RunLint,
		RunTests: settings.RunTests,
		RunBuild: settings.RunBuild,
	}

	result, err := o.verifier.Run(ctx, o.projectPath, opts)
	if err != nil {
		o.logger.Error("verification could not run", "issue_id", issueID, "error", err)
		o.activity.Append(LogError, fmt.Sprintf("Verification could not run: %v", err), issueID)
		return &verify.Result{
			Success: false,
			Tests:   verify.CheckResult{Success: false, Output: err.Error()},
		}
	}

	o.logCheck("Lint", result.Lint, issueID)
	o.logCheck("Tests", result.Tests, issueID)
	o.logCheck("Build", result.Build, issueID)
	return result
}

func (o *Orchestrator) logCheck(name string, check verify.CheckResult, issueID string) {
	if check.Skipped {
		return
	}
	if check.Success {
		o.activity.Append(LogSuccess, fmt.Sprintf("%s passed", name), issueID)
	} else {
		o.activity.Append(LogWarning, fmt.Sprintf("%s failed", name), issueID)
	}
}
