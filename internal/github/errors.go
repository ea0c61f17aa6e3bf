package github

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	gogithub "github.com/google/go-github/v67/github"
)

// GitHubErrorType represents the type of GitHub API error
type GitHubErrorType int

const (
	// ErrorTypeRateLimit indicates rate limit exceeded
	ErrorTypeRateLimit GitHubErrorType = iota
	// ErrorTypeNetworkTimeout indicates network timeout
	ErrorTypeNetworkTimeout
	// ErrorTypeAuthentication indicates authentication failure
	ErrorTypeAuthentication
	// ErrorTypeNotFound indicates resource not found
	ErrorTypeNotFound
	// ErrorTypeServerError indicates server error (5xx)
	ErrorTypeServerError
	// ErrorTypeUnknown indicates unknown error type
	ErrorTypeUnknown
)

// String returns the string representation of the error type
func (t GitHubErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "RateLimit"
	case ErrorTypeNetworkTimeout:
		return "NetworkTimeout"
	case ErrorTypeAuthentication:
		return "Authentication"
	case ErrorTypeNotFound:
		return "NotFound"
	case ErrorTypeServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// GitHubError represents a structured GitHub API error
type GitHubError struct {
	Type        GitHubErrorType
	StatusCode  int
	Message     string
	RetryAfter  time.Duration
	OriginalErr error
}

// Error implements the error interface
func (e *GitHubError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("GitHub API error [%s]: %s (original: %v)", e.Type, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("GitHub API error [%s]: %s", e.Type, e.Message)
}

// Unwrap returns the original error
func (e *GitHubError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns true if the error is retryable
func (e *GitHubError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeNetworkTimeout, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRateLimitError checks if the error is a rate limit error
func IsRateLimitError(err error) bool {
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsAuthenticationError checks if the error is an authentication error
func IsAuthenticationError(err error) bool {
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Type == ErrorTypeAuthentication
	}
	return false
}

var (
	networkRegex     = regexp.MustCompile(`(?i)(timeout|connection refused|connection reset|network|dial tcp|EOF)`)
	serverErrorRegex = regexp.MustCompile(`(?i)(internal server error|server error|bad gateway|service unavailable)`)
)

// ClassifyError converts an arbitrary API error into a structured GitHubError
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return err
	}

	// Typed go-github errors carry the most precise information
	var rateLimitErr *gogithub.RateLimitError
	if errors.As(err, &rateLimitErr) {
		retryAfter := time.Until(rateLimitErr.Rate.Reset.Time)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  429,
			Message:     rateLimitErr.Message,
			RetryAfter:  retryAfter,
			OriginalErr: err,
		}
	}

	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		classified := &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  429,
			Message:     abuseErr.Message,
			OriginalErr: err,
		}
		if abuseErr.RetryAfter != nil {
			classified.RetryAfter = *abuseErr.RetryAfter
		}
		return classified
	}

	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) {
		classified := &GitHubError{
			Message:     errResp.Message,
			OriginalErr: err,
		}
		if errResp.Response != nil {
			classified.StatusCode = errResp.Response.StatusCode
		}
		switch {
		case classified.StatusCode == 401 || classified.StatusCode == 403:
			classified.Type = ErrorTypeAuthentication
		case classified.StatusCode == 404:
			classified.Type = ErrorTypeNotFound
		case classified.StatusCode >= 500 && classified.StatusCode < 600:
			classified.Type = ErrorTypeServerError
		default:
			classified.Type = ErrorTypeUnknown
		}
		return classified
	}

	// Fall back to message-based classification
	msg := err.Error()
	classified := &GitHubError{
		Message:     msg,
		OriginalErr: err,
	}
	switch {
	case networkRegex.MatchString(msg):
		classified.Type = ErrorTypeNetworkTimeout
	case serverErrorRegex.MatchString(msg):
		classified.Type = ErrorTypeServerError
	default:
		classified.Type = ErrorTypeUnknown
	}

	return classified
}
