package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"adte.com/adte/buyer-agent/internal/auth"
	"adte.com/adte/buyer-agent/internal/errs"

	"golang.org/x/time/rate"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware decorates an outbound transport.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base so that the first middleware sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// Logging records every request sent to the sales agent.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			if err != nil {
				logger.Warn("agent request failed",
					"method", r.Method,
					"url", r.URL.Redacted(),
					"duration_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				return nil, err
			}
			logger.Debug("agent request completed",
				"method", r.Method,
				"url", r.URL.Redacted(),
				"status", resp.StatusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		})
	}
}

// Auth attaches credentials to every request. Requests are cloned, never mutated.
func Auth(creds auth.Credentials) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if creds.Empty() {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			creds.Apply(r.Header)
			return next.RoundTrip(r)
		})
	}
}

// UserAgent sets the User-Agent header when the caller has not.
func UserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") == "" {
				r = r.Clone(r.Context())
				r.Header.Set("User-Agent", ua)
			}
			return next.RoundTrip(r)
		})
	}
}

// RateLimit waits for a token before each request. A nil limiter disables it.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if limiter == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, errs.Wrap(err, "rate limit wait")
			}
			return next.RoundTrip(r)
		})
	}
}

// LimitBodySize caps how much of a response body can be read.
func LimitBodySize(maxBytes int64) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if maxBytes <= 0 {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil {
				return nil, err
			}
			resp.Body = &limitedBody{r: io.LimitReader(resp.Body, maxBytes+1), c: resp.Body, remaining: maxBytes}
			return resp, nil
		})
	}
}

var ErrBodyTooLarge = errs.New("response body too large")

type limitedBody struct {
	r         io.Reader
	c         io.Closer
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining < 0 {
		return 0, ErrBodyTooLarge
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n + int(b.remaining), ErrBodyTooLarge
	}
	return n, err
}

func (b *limitedBody) Close() error {
	return b.c.Close()
}

// NewHTTPClient builds the client used for all traffic to a sales agent.
func NewHTTPClient(timeout time.Duration, mws ...Middleware) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Chain(http.DefaultTransport, mws...),
	}
}
