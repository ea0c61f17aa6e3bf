// Package mocks provides mock implementations of the interfaces used
// throughout the oyakata codebase.
//
// All mocks are built on github.com/stretchr/testify/mock and follow the
// same usage pattern:
//
//	mockIssues := mocks.NewMockIssueService()
//	mockIssues.On("Get", mock.Anything, "14").
//	    Return(&github.Issue{ID: "14", Title: "Fix login"}, nil)
//
//	// ... exercise the code under test ...
//
//	mockIssues.AssertExpectations(t)
package mocks
