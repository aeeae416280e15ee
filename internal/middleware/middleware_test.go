package middleware_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adte.com/adte/buyer-agent/internal/auth"
	"adte.com/adte/buyer-agent/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okTransport(body string, seen *[]*http.Request) http.RoundTripper {
	return middleware.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if seen != nil {
			*seen = append(*seen, r)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
			Request:    r,
		}, nil
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return middleware.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := middleware.Chain(okTransport("", nil), mark("first"), mark("second"), mark("third"))
	req := httptest.NewRequest(http.MethodPost, "http://agent.test/mcp", nil)
	_, err := rt.RoundTrip(req)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestAuth(t *testing.T) {
	var seen []*http.Request
	rt := middleware.Chain(okTransport("", &seen), middleware.Auth(auth.Credentials{BearerToken: "tok"}))
	req := httptest.NewRequest(http.MethodPost, "http://agent.test/mcp", nil)

	_, err := rt.RoundTrip(req)

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Bearer tok", seen[0].Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestUserAgent(t *testing.T) {
	var seen []*http.Request
	rt := middleware.Chain(okTransport("", &seen), middleware.UserAgent("adte-buyer-agent/test"))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://agent.test/", nil))
	require.NoError(t, err)

	custom := httptest.NewRequest(http.MethodGet, "http://agent.test/", nil)
	custom.Header.Set("User-Agent", "custom")
	_, err = rt.RoundTrip(custom)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "adte-buyer-agent/test", seen[0].Header.Get("User-Agent"))
	assert.Equal(t, "custom", seen[1].Header.Get("User-Agent"))
}

func TestRateLimit_HonoursCancellation(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	rt := middleware.Chain(okTransport("", nil), middleware.RateLimit(limiter))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://agent.test/", nil))
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "http://agent.test/", nil).WithContext(ctx)

	_, err = rt.RoundTrip(req)
	assert.Error(t, err)
}

func TestRateLimit_NilLimiter(t *testing.T) {
	rt := middleware.Chain(okTransport("", nil), middleware.RateLimit(nil))
	for i := 0; i < 5; i++ {
		_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://agent.test/", nil))
		require.NoError(t, err)
	}
}

func TestLimitBodySize(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		limit       int64
		expectedErr bool
	}{
		{name: "under limit", body: "hello", limit: 10},
		{name: "exactly at limit", body: "hello", limit: 5},
		{name: "over limit", body: "hello world", limit: 5, expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt := middleware.Chain(okTransport(tc.body, nil), middleware.LimitBodySize(tc.limit))
			resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://agent.test/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if tc.expectedErr {
				assert.ErrorIs(t, err, middleware.ErrBodyTooLarge)
				assert.LessOrEqual(t, int64(len(data)), tc.limit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.body, string(data))
		})
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt := middleware.Chain(okTransport("", nil), middleware.Logging(logger))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodPost, "http://agent.test/create_media_buy", nil))

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "agent request completed")
	assert.Contains(t, buf.String(), "status=200")
}

func TestNewHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get(auth.HeaderAPIKey))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := middleware.NewHTTPClient(time.Second, middleware.Auth(auth.Credentials{APIKey: "key"}))
	resp, err := client.Get(srv.URL)

	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
