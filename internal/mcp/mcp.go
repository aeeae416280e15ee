package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/errs"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultToolName is the AdCP task name exposed by sales agents over MCP.
const DefaultToolName = "create_media_buy"

// Client submits media buys to a sales agent through an MCP session.
type Client struct {
	session  *sdk.ClientSession
	toolName string
	logger   *slog.Logger
}

// Implementation identifies this agent during the MCP handshake.
func Implementation(version string) *sdk.Implementation {
	return &sdk.Implementation{
		Name:    "Adte Buyer Agent",
		Version: version,
	}
}

// Connect opens an MCP session over the given transport.
func Connect(ctx context.Context, impl *sdk.Implementation, transport sdk.Transport, toolName string, logger *slog.Logger) (*Client, error) {
	session, err := sdk.NewClient(impl, nil).Connect(ctx, transport, nil)
	if err != nil {
		return nil, errs.Transport(err, "connect to sales agent")
	}
	return NewClient(session, toolName, logger), nil
}

// Dial connects to a sales agent's streamable HTTP endpoint.
func Dial(ctx context.Context, impl *sdk.Implementation, endpoint string, httpClient *http.Client, toolName string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &sdk.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: httpClient,
		// single-shot: never reconnect
		MaxRetries: -1,
	}
	logger.Info("Connecting to sales agent", "transport", "streamable-http", "endpoint", endpoint)
	return Connect(ctx, impl, transport, toolName, logger)
}

// NewClient wraps an established session.
func NewClient(session *sdk.ClientSession, toolName string, logger *slog.Logger) *Client {
	if toolName == "" {
		toolName = DefaultToolName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{session: session, toolName: toolName, logger: logger}
}

func (c *Client) Close() error {
	return c.session.Close()
}

// CreateMediaBuy calls the create_media_buy tool once. Protocol and network
// failures are marked as transport errors; tool errors come back as a
// result with Errors populated.
func (c *Client) CreateMediaBuy(ctx context.Context, req *api.CreateMediaBuyRequest) (*api.CreateMediaBuyResponse, error) {
	res, err := c.session.CallTool(ctx, &sdk.CallToolParams{
		Name:      c.toolName,
		Arguments: req,
	})
	if err != nil {
		return nil, errs.Transport(err, "call "+c.toolName)
	}

	if res.IsError {
		text := textContent(res)
		c.logger.Debug("tool reported error", "tool", c.toolName, "content", text)
		list := toolErrors(res, text)
		if len(list) == 0 {
			return nil, errs.Mark(errs.Newf("%s reported an error without details", c.toolName), errs.ErrTransport)
		}
		return &api.CreateMediaBuyResponse{Errors: list}, nil
	}

	resp, err := decodeResult(res)
	if err != nil {
		return nil, errs.Transport(err, "decode "+c.toolName+" result")
	}
	return resp, nil
}

func decodeResult(res *sdk.CallToolResult) (*api.CreateMediaBuyResponse, error) {
	var data []byte
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return nil, err
		}
		data = raw
	} else {
		text := firstText(res)
		if text == "" {
			return nil, errs.New("result has no structured or text content")
		}
		data = []byte(text)
	}

	var resp api.CreateMediaBuyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func toolErrors(res *sdk.CallToolResult, text string) []api.Error {
	if res.StructuredContent != nil {
		if raw, err := json.Marshal(res.StructuredContent); err == nil {
			if list := api.DecodeRejection(raw); len(list) > 0 {
				return list
			}
		}
	}
	if list := api.DecodeRejection([]byte(text)); len(list) > 0 {
		return list
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []api.Error{{Message: text}}
}

func textContent(res *sdk.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(*sdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func firstText(res *sdk.CallToolResult) string {
	for _, content := range res.Content {
		if tc, ok := content.(*sdk.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
