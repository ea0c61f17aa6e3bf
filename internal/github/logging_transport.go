package github

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/douhashi/oyakata/internal/logger"
)

// loggingRoundTripper はHTTPリクエスト/レスポンスをログ出力するラウンドトリッパー
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logger.Logger
}

// RoundTrip はHTTPリクエストを実行し、リクエスト/レスポンスの詳細をログ出力する
func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	rt.logRequest(req)

	resp, err := rt.base.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		rt.logger.Error("github_api_error",
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	rt.logResponse(req, resp, duration)

	return resp, nil
}

// logRequest はHTTPリクエストの詳細をログ出力する
func (rt *loggingRoundTripper) logRequest(req *http.Request) {
	fields := []interface{}{
		"method", req.Method,
		"url", req.URL.String(),
	}

	// Authorizationヘッダーをマスキングして記録
	if auth := req.Header.Get("Authorization"); auth != "" {
		fields = append(fields, "authorization", rt.maskAuthHeader(auth))
	}

	rt.logger.Debug("github_api_request", fields...)
}

// logResponse はHTTPレスポンスの詳細をログ出力する
func (rt *loggingRoundTripper) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	fields := []interface{}{
		"method", req.Method,
		"url", req.URL.String(),
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	}

	// レート制限情報
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		fields = append(fields, "rate_limit_remaining", remaining)
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		fields = append(fields, "rate_limit_reset", reset)
	}

	rt.logger.Debug("github_api_response", fields...)
}

// maskAuthHeader はAuthorizationヘッダーの値をマスキングする
func (rt *loggingRoundTripper) maskAuthHeader(auth string) string {
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 {
		return fmt.Sprintf("%s [REDACTED]", parts[0])
	}
	return "[REDACTED]"
}
