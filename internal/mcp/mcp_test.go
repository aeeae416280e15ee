package mcp_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/auth"
	"adte.com/adte/buyer-agent/internal/campaign"
	"adte.com/adte/buyer-agent/internal/errs"
	"adte.com/adte/buyer-agent/internal/mcp"
	"adte.com/adte/buyer-agent/internal/middleware"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createHandler func(ctx context.Context, req *sdk.CallToolRequest, in api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAgent(toolName string, h createHandler) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: "test-agent", Version: "0.0.1"}, nil)
	sdk.AddTool(server, &sdk.Tool{Name: toolName, Description: "Create a new media buy"}, h)
	return server
}

func connectInMemory(t *testing.T, server *sdk.Server, toolName string) *mcp.Client {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdk.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client, err := mcp.Connect(ctx, mcp.Implementation("test"), clientTransport, toolName, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func referenceRequest(t *testing.T) *api.CreateMediaBuyRequest {
	t.Helper()
	def := campaign.DefaultDefinition()
	window := campaign.ComputeWindow(time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC), campaign.DefaultSpan)
	req, err := campaign.BuildRequest(window, def.BuyerRef, def.Brand, def.Packages)
	require.NoError(t, err)
	return req
}

func TestClient_CreateMediaBuy_Success(t *testing.T) {
	var received api.CreateMediaBuyRequest
	server := newTestAgent(mcp.DefaultToolName, func(_ context.Context, _ *sdk.CallToolRequest, in api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
		received = in
		return nil, api.CreateMediaBuyResponse{
			MediaBuyID:       "mb_123",
			BuyerRef:         in.BuyerRef,
			CreativeDeadline: "2025-06-01T18:00:00Z",
			Packages: []api.CreatedPackage{
				{PackageID: "p1", BuyerRef: in.Packages[0].BuyerRef},
				{PackageID: "p2", BuyerRef: in.Packages[1].BuyerRef},
			},
		}, nil
	})
	client := connectInMemory(t, server, "")

	resp, err := client.CreateMediaBuy(context.Background(), referenceRequest(t))

	require.NoError(t, err)
	assert.Equal(t, "2025-06-02T00:00:00Z", received.StartTime)
	assert.Equal(t, "2025-08-31T00:00:00Z", received.EndTime)
	assert.Equal(t, "https://nike.com", received.BrandManifest.URL)
	require.Len(t, received.Packages, 2)
	assert.Equal(t, 4.50, received.Packages[1].BidPrice)

	assert.Equal(t, campaign.Accepted{
		MediaBuyID:       "mb_123",
		CreativeDeadline: "2025-06-01T18:00:00Z",
		PackageCount:     2,
		Packages: []api.CreatedPackage{
			{PackageID: "p1", BuyerRef: "ctv_package"},
			{PackageID: "p2", BuyerRef: "audio_package"},
		},
	}, campaign.Interpret(resp))
}

func TestClient_CreateMediaBuy_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		handler  createHandler
		expected []api.Error
	}{
		{
			name: "errors array in structured content",
			handler: func(context.Context, *sdk.CallToolRequest, api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
				return nil, api.CreateMediaBuyResponse{Errors: []api.Error{{Message: "budget exceeds limit"}}}, nil
			},
			expected: []api.Error{{Message: "budget exceeds limit"}},
		},
		{
			name: "tool error text",
			handler: func(context.Context, *sdk.CallToolRequest, api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
				return nil, api.CreateMediaBuyResponse{}, errors.New("budget exceeds limit")
			},
			expected: []api.Error{{Message: "budget exceeds limit"}},
		},
		{
			name: "sales agent error body",
			handler: func(context.Context, *sdk.CallToolRequest, api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
				return &sdk.CallToolResult{
					IsError: true,
					Content: []sdk.Content{&sdk.TextContent{Text: `{"error":"invalid product_id: prod_d979b543","code":"INVALID_PRODUCT_ID"}`}},
				}, api.CreateMediaBuyResponse{}, nil
			},
			expected: []api.Error{{Code: "INVALID_PRODUCT_ID", Message: "invalid product_id: prod_d979b543"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := connectInMemory(t, newTestAgent("adcp.create_media_buy", tc.handler), "adcp.create_media_buy")

			resp, err := client.CreateMediaBuy(context.Background(), referenceRequest(t))

			require.NoError(t, err)
			assert.Equal(t, campaign.Rejected{Errors: tc.expected}, campaign.Interpret(resp))
		})
	}
}

func TestClient_CreateMediaBuy_EmptyToolErrorIsTransportError(t *testing.T) {
	server := newTestAgent(mcp.DefaultToolName, func(context.Context, *sdk.CallToolRequest, api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
		return &sdk.CallToolResult{IsError: true, Content: []sdk.Content{}}, api.CreateMediaBuyResponse{}, nil
	})
	client := connectInMemory(t, server, "")

	resp, err := client.CreateMediaBuy(context.Background(), referenceRequest(t))

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errs.IsTransport(err))
}

func TestClient_CreateMediaBuy_UnknownToolIsTransportError(t *testing.T) {
	server := newTestAgent("some_other_tool", func(context.Context, *sdk.CallToolRequest, api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
		return nil, api.CreateMediaBuyResponse{MediaBuyID: "mb_never"}, nil
	})
	client := connectInMemory(t, server, "")

	_, err := client.CreateMediaBuy(context.Background(), referenceRequest(t))

	require.Error(t, err)
	assert.True(t, errs.IsTransport(err))
}

func TestDial_StreamableHTTP(t *testing.T) {
	server := newTestAgent(mcp.DefaultToolName, func(_ context.Context, _ *sdk.CallToolRequest, in api.CreateMediaBuyRequest) (*sdk.CallToolResult, api.CreateMediaBuyResponse, error) {
		return nil, api.CreateMediaBuyResponse{MediaBuyID: "mb_1", PackageIDs: []string{"pkg_1", "pkg_2"}}, nil
	})
	handler := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server { return server }, nil)

	var sawKey atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(auth.HeaderAPIKey) == "test_api_key_full_access" {
			sawKey.Store(true)
		}
		handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	httpClient := middleware.NewHTTPClient(0, middleware.Auth(auth.Credentials{APIKey: "test_api_key_full_access"}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mcp.Dial(ctx, mcp.Implementation("test"), srv.URL, httpClient, "", discardLogger())
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.CreateMediaBuy(ctx, referenceRequest(t))

	require.NoError(t, err)
	assert.Equal(t, "mb_1", resp.MediaBuyID)
	assert.Equal(t, 2, resp.PackageCount())
	assert.True(t, sawKey.Load())
}

func TestDial_UnavailableAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := mcp.Dial(ctx, mcp.Implementation("test"), srv.URL, srv.Client(), "", discardLogger())

	require.Error(t, err)
	assert.True(t, errs.IsTransport(err))
}
