// Package testutil provides common test utilities, mocks, and builders for testing oyakata components.
//
// This package is organized into the following sub-packages:
//
//   - mocks: Common mock implementations for interfaces used throughout the codebase
//   - builders: Test data builders using the builder pattern for creating test fixtures
//   - helpers: General test helper functions and utilities
//
// # Usage
//
// Import the specific sub-package you need:
//
//	import "github.com/douhashi/oyakata/internal/testutil/mocks"
//	import "github.com/douhashi/oyakata/internal/testutil/builders"
//
// # Example
//
// Using mocks:
//
//	mockIssues := mocks.NewMockIssueService()
//	mockIssues.On("List", mock.Anything).
//	    Return([]*github.Issue{{ID: "1"}}, nil)
//
// Using builders:
//
//	issue := builders.NewIssueBuilder().
//	    WithID("42").
//	    WithType("bug").
//	    WithPriority("high").
//	    Build()
package testutil
