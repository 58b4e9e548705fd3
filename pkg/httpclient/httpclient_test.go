package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegistryClientAttachesToken(t *testing.T) {
	t.Setenv(TokenEnv, "secret-token")

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer server.Close()

	resp, err := NewRegistryClient().Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got != "Bearer secret-token" {
		t.Errorf("unexpected Authorization header: %q", got)
	}
}

func TestRegistryClientNoToken(t *testing.T) {
	t.Setenv(TokenEnv, "")

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer server.Close()

	resp, err := NewRegistryClient().Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestRoundTripDoesNotMutateOriginal(t *testing.T) {
	t.Setenv(TokenEnv, "secret-token")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := NewRegistryClient().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Error("original request must not be mutated")
	}
}
