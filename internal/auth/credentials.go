package auth

import (
	"net/http"
)

const (
	HeaderAPIKey        = "X-API-Key"
	HeaderAuthorization = "Authorization"
)

// Credentials authenticate the buyer agent to a sales agent. The sales agent
// tries the API key first and falls back to the bearer token.
type Credentials struct {
	APIKey      string
	BearerToken string
}

func (c Credentials) Empty() bool {
	return c.APIKey == "" && c.BearerToken == ""
}

// Apply sets the authentication headers on h. Only one scheme is sent.
func (c Credentials) Apply(h http.Header) {
	if c.APIKey != "" {
		h.Set(HeaderAPIKey, c.APIKey)
		return
	}
	if c.BearerToken != "" {
		h.Set(HeaderAuthorization, "Bearer "+c.BearerToken)
	}
}
