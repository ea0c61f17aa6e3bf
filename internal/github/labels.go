package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v67/github"
)

// LabelDefinition defines a GitHub label with its properties
type LabelDefinition struct {
	Name        string
	Color       string
	Description string
}

// defaultLabelDefinitions returns the labels the orchestrator relies on
func defaultLabelDefinitions() []LabelDefinition {
	return []LabelDefinition{
		// Type labels
		{Name: TypeLabelPrefix + TypeFeature, Color: "0e8a16", Description: "New functionality"},
		{Name: TypeLabelPrefix + TypeBug, Color: "d73a4a", Description: "Something is broken"},
		{Name: TypeLabelPrefix + TypeTask, Color: "0052cc", Description: "General work item"},
		{Name: TypeLabelPrefix + TypeRefactor, Color: "fbca04", Description: "Code improvement without behavior change"},

		// Priority labels
		{Name: PriorityLabelPrefix + PriorityUrgent, Color: "b60205", Description: "Drop everything"},
		{Name: PriorityLabelPrefix + PriorityHigh, Color: "d93f0b", Description: "High priority"},
		{Name: PriorityLabelPrefix + PriorityMedium, Color: "fbca04", Description: "Medium priority"},
		{Name: PriorityLabelPrefix + PriorityLow, Color: "0e8a16", Description: "Low priority"},

		// Status labels
		{Name: StatusLabelPrefix + StatusInProgress, Color: "0052cc", Description: "Currently being worked by the build loop"},
		{Name: StatusLabelPrefix + StatusReview, Color: "d93f0b", Description: "Waiting for human review"},
		{Name: StatusLabelPrefix + StatusBlocked, Color: "b60205", Description: "Build loop could not complete this item"},
	}
}

// EnsureLabels ensures all required labels exist in the repository
func (c *Client) EnsureLabels(ctx context.Context) error {
	return RetryWithStrategy(ctx, c.retry, func() error {
		existingLabels, _, err := c.issues.ListLabels(ctx, c.owner, c.repo, &gogithub.ListOptions{PerPage: 100})
		if err != nil {
			return ClassifyError(fmt.Errorf("failed to list repository labels: %w", err))
		}

		existingLabelMap := make(map[string]bool)
		for _, label := range existingLabels {
			existingLabelMap[label.GetName()] = true
		}

		for _, labelDef := range defaultLabelDefinitions() {
			if existingLabelMap[labelDef.Name] {
				continue
			}

			newLabel := &gogithub.Label{
				Name:        gogithub.String(labelDef.Name),
				Color:       gogithub.String(labelDef.Color),
				Description: gogithub.String(labelDef.Description),
			}

			if _, _, err := c.issues.CreateLabel(ctx, c.owner, c.repo, newLabel); err != nil {
				return ClassifyError(fmt.Errorf("failed to create label %s: %w", labelDef.Name, err))
			}
			c.logger.Debug("Created label", "label", labelDef.Name)
		}

		return nil
	})
}
