package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		want     int
	}{
		{name: "lowは0", priority: PriorityLow, want: 0},
		{name: "mediumは1", priority: PriorityMedium, want: 1},
		{name: "highは2", priority: PriorityHigh, want: 2},
		{name: "urgentは3", priority: PriorityUrgent, want: 3},
		{name: "大文字も受け付ける", priority: "HIGH", want: 2},
		{name: "未知の優先度は-1", priority: "critical", want: -1},
		{name: "空文字列は-1", priority: "", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityRank(tt.priority))
		})
	}
}

func TestIsValidPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		want     bool
	}{
		{name: "lowは有効", priority: "low", want: true},
		{name: "mediumは有効", priority: "medium", want: true},
		{name: "highは有効", priority: "high", want: true},
		{name: "urgentは有効", priority: "urgent", want: true},
		{name: "大文字も有効", priority: "Urgent", want: true},
		{name: "未知の値は無効", priority: "blocker", want: false},
		{name: "空文字列は無効", priority: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPriority(tt.priority))
		})
	}
}

func TestIsValidType(t *testing.T) {
	tests := []struct {
		name      string
		issueType string
		want      bool
	}{
		{name: "featureは有効", issueType: "feature", want: true},
		{name: "bugは有効", issueType: "bug", want: true},
		{name: "taskは有効", issueType: "task", want: true},
		{name: "refactorは有効", issueType: "refactor", want: true},
		{name: "大文字も有効", issueType: "Bug", want: true},
		{name: "未知の値は無効", issueType: "epic", want: false},
		{name: "空文字列は無効", issueType: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidType(tt.issueType))
		})
	}
}

func TestLabelValue(t *testing.T) {
	labels := []string{"type:bug", "priority:high", "status:in-progress", "unrelated"}

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "typeプレフィックスの値を取得する", prefix: TypeLabelPrefix, want: "bug"},
		{name: "priorityプレフィックスの値を取得する", prefix: PriorityLabelPrefix, want: "high"},
		{name: "statusプレフィックスの値を取得する", prefix: StatusLabelPrefix, want: "in-progress"},
		{name: "該当なしは空文字列", prefix: "milestone:", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labelValue(labels, tt.prefix))
		})
	}

	t.Run("空のラベル一覧は空文字列", func(t *testing.T) {
		assert.Equal(t, "", labelValue(nil, TypeLabelPrefix))
	})
}
