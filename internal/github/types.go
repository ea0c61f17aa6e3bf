package github

import (
	"strings"
)

// Issue types recognized by the orchestrator.
const (
	TypeFeature  = "feature"
	TypeBug      = "bug"
	TypeTask     = "task"
	TypeRefactor = "refactor"
)

// Issue priorities, lowest to highest.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Tracker-visible issue statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
)

// Label prefixes used to encode type/priority/status on GitHub issues.
const (
	TypeLabelPrefix     = "type:"
	PriorityLabelPrefix = "priority:"
	StatusLabelPrefix   = "status:"
)

// Issue はトラッカー上の作業単位を表す構造体
type Issue struct {
	ID          string
	Number      int
	Title       string
	Description string
	Type        string
	Priority    string
	Status      string
}

// IssueUpdate は部分更新のためのフィールド集合
// nilのフィールドは変更されない
type IssueUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

var priorityRanks = map[string]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// PriorityRank は優先度の序列を返す（不明な優先度は-1）
func PriorityRank(priority string) int {
	rank, ok := priorityRanks[strings.ToLower(priority)]
	if !ok {
		return -1
	}
	return rank
}

// IsValidPriority は優先度文字列が有効かを判定する
func IsValidPriority(priority string) bool {
	_, ok := priorityRanks[strings.ToLower(priority)]
	return ok
}

// IsValidType はイシュー種別文字列が有効かを判定する
func IsValidType(issueType string) bool {
	switch strings.ToLower(issueType) {
	case TypeFeature, TypeBug, TypeTask, TypeRefactor:
		return true
	}
	return false
}

// labelValue はプレフィックス付きラベル群から値部分を取り出す
func labelValue(labels []string, prefix string) string {
	for _, label := range labels {
		if strings.HasPrefix(label, prefix) {
			return strings.TrimPrefix(label, prefix)
		}
	}
	return ""
}
