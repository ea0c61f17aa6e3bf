package claude

import "strings"

// TemplateVariables はテンプレート展開で使用する変数
type TemplateVariables struct {
	IssueID     string
	IssueTitle  string
	IssueBody   string
	Errors      string
	SiloContext string
}

const implementTemplate = `You are working on issue {{issue-id}}: {{issue-title}}

{{issue-body}}

{{silo-context}}Implement this issue completely:
1. Read the relevant code before changing it.
2. Make the changes the issue describes, including tests where the project has them.
3. Keep the changes consistent with the existing code style.

Work autonomously. Do not ask questions and do not wait for confirmation.`

const fixTemplate = `The implementation for issue {{issue-id}} ({{issue-title}}) failed verification.

Verification output:
{{errors}}

{{silo-context}}Fix the failures:
1. Reproduce each failure to understand its cause.
2. Fix the root cause, not the symptom.
3. Leave unrelated code untouched.

Work autonomously. Do not ask questions and do not wait for confirmation.`

// BuildImplementPrompt は実装モードのタスクプロンプトを構築する
func BuildImplementPrompt(vars *TemplateVariables) string {
	return ExpandTemplate(implementTemplate, vars)
}

// BuildFixPrompt は修正モードのタスクプロンプトを構築する
func BuildFixPrompt(vars *TemplateVariables) string {
	return ExpandTemplate(fixTemplate, vars)
}

// ExpandTemplate はテンプレート文字列内の変数を実際の値に置換する
func ExpandTemplate(template string, vars *TemplateVariables) string {
	result := template

	result = strings.ReplaceAll(result, "{{issue-id}}", vars.IssueID)
	result = strings.ReplaceAll(result, "{{issue-title}}", vars.IssueTitle)
	result = strings.ReplaceAll(result, "{{issue-body}}", vars.IssueBody)
	result = strings.ReplaceAll(result, "{{errors}}", vars.Errors)
	result = strings.ReplaceAll(result, "{{silo-context}}", vars.SiloContext)

	return result
}
