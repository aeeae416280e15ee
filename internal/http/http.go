package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/errs"

	"github.com/google/uuid"
)

const (
	createMediaBuyPath = "/create_media_buy"
	HeaderIdempotency  = "Idempotency-Key"
)

// Client submits media buys to a sales agent's REST routes.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a REST client rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.Newf("invalid sales agent URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: u, http: httpClient, logger: logger}, nil
}

// CreateMediaBuy posts the request once. Business rejections (400, 404, 409,
// 422 carrying an AdCP error body) come back as a result with Errors
// populated; every other failure is a transport error.
func (c *Client) CreateMediaBuy(ctx context.Context, req *api.CreateMediaBuyRequest) (*api.CreateMediaBuyResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Transport(err, "encode create_media_buy request")
	}

	endpoint := c.baseURL.JoinPath(createMediaBuyPath).String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Transport(err, "build create_media_buy request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderIdempotency, uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errs.Transport(err, "POST "+createMediaBuyPath)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transport(err, "read create_media_buy response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var out api.CreateMediaBuyResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, errs.Transport(err, "decode create_media_buy response")
		}
		return &out, nil
	case isRejection(resp.StatusCode):
		// Only an AdCP error body is a business rejection; a bare 404 or 400
		// from a router or proxy means the request never reached the agent.
		list := api.DecodeRejection(data)
		if len(list) == 0 {
			return nil, errs.Mark(errs.Newf("sales agent returned %s without an error body", resp.Status), errs.ErrTransport)
		}
		c.logger.Debug("sales agent rejected media buy", "status", resp.StatusCode, "errors", len(list))
		return &api.CreateMediaBuyResponse{Errors: list}, nil
	default:
		detail := ""
		if list := api.DecodeRejection(data); len(list) > 0 {
			detail = ": " + list[0].String()
		}
		return nil, errs.Mark(errs.Newf("sales agent returned %s%s", resp.Status, detail), errs.ErrTransport)
	}
}

func isRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
