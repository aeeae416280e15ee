package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProtocolMCP  = "mcp"
	ProtocolREST = "rest"
)

type Config struct {
	Agent    AgentConfig
	Campaign CampaignConfig
	Log      LogConfig
}

type AgentConfig struct {
	URL              string        `envconfig:"ADCP_AGENT_URL" default:"https://test-agent.adcontextprotocol.org/mcp"`
	Protocol         string        `envconfig:"ADCP_PROTOCOL" default:"mcp"`
	ToolName         string        `envconfig:"ADCP_TOOL_NAME" default:"create_media_buy"`
	APIKey           string        `envconfig:"ADCP_API_KEY"`
	AuthToken        string        `envconfig:"ADCP_AUTH_TOKEN"`
	JwtSecretKey     string        `envconfig:"JWT_SECRET_KEY"`
	Timeout          time.Duration `envconfig:"ADCP_TIMEOUT" default:"30s"`
	RateLimit        float64       `envconfig:"ADCP_RATE_LIMIT" default:"10"`
	RateBurst        int           `envconfig:"ADCP_RATE_BURST" default:"20"`
	MaxResponseBytes int64         `envconfig:"ADCP_MAX_RESPONSE_BYTES" default:"1048576"`
}

type CampaignConfig struct {
	File     string `envconfig:"CAMPAIGN_FILE"`
	SpanDays int    `envconfig:"CAMPAIGN_SPAN_DAYS" default:"90"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	Human bool   `envconfig:"HUMAN_LOGGING" default:"false"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Agent.Protocol = strings.ToLower(c.Agent.Protocol)
	switch c.Agent.Protocol {
	case ProtocolMCP, ProtocolREST:
	default:
		return fmt.Errorf("unsupported ADCP_PROTOCOL %q (use %s or %s)", c.Agent.Protocol, ProtocolMCP, ProtocolREST)
	}

	u, err := url.Parse(c.Agent.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ADCP_AGENT_URL %q", c.Agent.URL)
	}

	if c.Campaign.SpanDays <= 0 {
		return fmt.Errorf("CAMPAIGN_SPAN_DAYS must be positive, got %d", c.Campaign.SpanDays)
	}
	if c.Agent.Timeout < 0 {
		return fmt.Errorf("ADCP_TIMEOUT must not be negative, got %s", c.Agent.Timeout)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog levels; "trace" sits below debug.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func NewTestConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			URL:              "http://127.0.0.1:8081/mcp",
			Protocol:         ProtocolMCP,
			ToolName:         "create_media_buy",
			APIKey:           "test_api_key_full_access",
			Timeout:          5 * time.Second,
			RateLimit:        10,
			RateBurst:        20,
			MaxResponseBytes: 1 << 20,
		},
		Campaign: CampaignConfig{
			SpanDays: 90,
		},
		Log: LogConfig{
			Level: "error",
		},
	}
}
