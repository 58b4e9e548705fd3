// Package httpclient builds HTTP clients for talking to remote
// registries, attaching bearer auth from SUP_TOKEN when present.
package httpclient

import (
	"net/http"
	"os"
	"time"
)

// TokenEnv is the environment variable holding the registry bearer token.
const TokenEnv = "SUP_TOKEN"

// NewRegistryClient creates an HTTP client configured for registry
// requests. The token from SUP_TOKEN is attached automatically.
func NewRegistryClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &registryTransport{
			Base: http.DefaultTransport,
		},
	}
}

// registryTransport adds registry authentication to every request.
type registryTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface.
func (t *registryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original.
	req2 := req.Clone(req.Context())

	if token := os.Getenv(TokenEnv); token != "" {
		req2.Header.Set("Authorization", "Bearer "+token)
	}

	return t.Base.RoundTrip(req2)
}
