package builders

import (
	"github.com/douhashi/oyakata/internal/github"
)

// IssueBuilder builds github.Issue instances for testing
type IssueBuilder struct {
	issue *github.Issue
}

// NewIssueBuilder creates a new IssueBuilder with sensible defaults
func NewIssueBuilder() *IssueBuilder {
	return &IssueBuilder{
		issue: &github.Issue{
			ID:       "1",
			Number:   1,
			Title:    "Default Issue",
			Type:     github.TypeTask,
			Priority: github.PriorityMedium,
			Status:   github.StatusOpen,
		},
	}
}

// WithID sets the issue ID
func (b *IssueBuilder) WithID(id string) *IssueBuilder {
	b.issue.ID = id
	return b
}

// WithNumber sets the issue number
func (b *IssueBuilder) WithNumber(number int) *IssueBuilder {
	b.issue.Number = number
	return b
}

// WithTitle sets the issue title
func (b *IssueBuilder) WithTitle(title string) *IssueBuilder {
	b.issue.Title = title
	return b
}

// WithDescription sets the issue description
func (b *IssueBuilder) WithDescription(description string) *IssueBuilder {
	b.issue.Description = description
	return b
}

// WithType sets the issue type
func (b *IssueBuilder) WithType(issueType string) *IssueBuilder {
	b.issue.Type = issueType
	return b
}

// WithPriority sets the issue priority
func (b *IssueBuilder) WithPriority(priority string) *IssueBuilder {
	b.issue.Priority = priority
	return b
}

// WithStatus sets the issue status
func (b *IssueBuilder) WithStatus(status string) *IssueBuilder {
	b.issue.Status = status
	return b
}

// Build returns the constructed Issue
func (b *IssueBuilder) Build() *github.Issue {
	// Return a copy to prevent external modification
	issueCopy := *b.issue
	return &issueCopy
}
