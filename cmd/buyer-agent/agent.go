package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/auth"
	"adte.com/adte/buyer-agent/internal/campaign"
	"adte.com/adte/buyer-agent/internal/config"
	"adte.com/adte/buyer-agent/internal/errs"
	agenthttp "adte.com/adte/buyer-agent/internal/http"
	"adte.com/adte/buyer-agent/internal/mcp"
	"adte.com/adte/buyer-agent/internal/middleware"

	"golang.org/x/time/rate"
)

const tokenSubject = "buyer_agent"

// newSubmitter picks the transport named by the configuration.
func newSubmitter(cfg *config.Config, logger *slog.Logger) (campaign.Submitter, error) {
	creds, err := credentials(cfg.Agent)
	if err != nil {
		return nil, err
	}

	switch cfg.Agent.Protocol {
	case config.ProtocolREST:
		client, err := agenthttp.NewClient(cfg.Agent.URL, newAgentHTTPClient(cfg.Agent, creds, logger, cfg.Agent.Timeout), logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		// MCP sessions keep a long-lived stream open; the runner's context bounds them instead.
		return &mcpSubmitter{
			endpoint:   cfg.Agent.URL,
			toolName:   cfg.Agent.ToolName,
			httpClient: newAgentHTTPClient(cfg.Agent, creds, logger, 0),
			logger:     logger,
		}, nil
	}
}

func newAgentHTTPClient(cfg config.AgentConfig, creds auth.Credentials, logger *slog.Logger, timeout time.Duration) *http.Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return middleware.NewHTTPClient(timeout,
		middleware.UserAgent("adte-buyer-agent/"+version),
		middleware.Logging(logger),
		middleware.Auth(creds),
		middleware.RateLimit(limiter),
		middleware.LimitBodySize(cfg.MaxResponseBytes),
	)
}

// credentials prefers a static API key, then a static bearer token, and
// finally mints a short-lived token from the shared JWT secret.
func credentials(cfg config.AgentConfig) (auth.Credentials, error) {
	switch {
	case cfg.APIKey != "":
		return auth.Credentials{APIKey: cfg.APIKey}, nil
	case cfg.AuthToken != "":
		return auth.Credentials{BearerToken: cfg.AuthToken}, nil
	case cfg.JwtSecretKey != "":
		token, _, err := auth.MintToken(cfg.JwtSecretKey, auth.TokenRequest{
			Subject:     tokenSubject,
			Permissions: auth.FullAccess(),
			TTL:         time.Hour,
		})
		if err != nil {
			return auth.Credentials{}, errs.Wrap(err, "mint bearer token")
		}
		return auth.Credentials{BearerToken: token}, nil
	}
	return auth.Credentials{}, nil
}

// mcpSubmitter opens the MCP session inside the submission so that the
// connection is covered by the same deadline as the call.
type mcpSubmitter struct {
	endpoint   string
	toolName   string
	httpClient *http.Client
	logger     *slog.Logger
}

func (s *mcpSubmitter) CreateMediaBuy(ctx context.Context, req *api.CreateMediaBuyRequest) (*api.CreateMediaBuyResponse, error) {
	client, err := mcp.Dial(ctx, mcp.Implementation(version), s.endpoint, s.httpClient, s.toolName, s.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.logger.Debug("closing MCP session failed", "error", err)
		}
	}()
	return client.CreateMediaBuy(ctx, req)
}
