package middleware

import (
	"net/http"
	"time"

	"github.com/HammerMeetNail/gamelog/internal/logging"
)

// RequestLogger logs outgoing service calls: failures at WARN/ERROR,
// everything else at DEBUG.
type RequestLogger struct {
	logger *logging.Logger
}

func NewRequestLogger(logger *logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.Default
	}
	return &RequestLogger{logger: logger}
}

// Apply wraps next; a nil next means http.DefaultTransport.
func (rl *RequestLogger) Apply(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)

		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if id := req.Header.Get("X-Request-ID"); id != "" {
			fields["request_id"] = id
		}
		if req.URL.RawQuery != "" {
			fields["query"] = req.URL.RawQuery
		}

		if err != nil {
			fields["error"] = err.Error()
			rl.logger.Error("Request failed", fields)
			return resp, err
		}

		fields["status"] = resp.StatusCode
		switch {
		case resp.StatusCode >= 500:
			rl.logger.Error("Request returned server error", fields)
		case resp.StatusCode >= 400:
			rl.logger.Warn("Request rejected", fields)
		default:
			rl.logger.Debug("Request completed", fields)
		}
		return resp, nil
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
