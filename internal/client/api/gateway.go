package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/shopfront/internal/models"
)

// TokenSource exposes the persisted token pair to the gateway.
// Implemented by the client state store.
type TokenSource interface {
	// Tokens returns the current pair, or nil when no session exists.
	Tokens() *models.TokenPair
}

// localHosts is the set of runtime hosts treated as local development.
var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// ResolveBaseURL picks the backend address for the given runtime host:
// hosts in the local development set use localURL, everything else uses
// the fixed internal service address.
func ResolveBaseURL(host, localURL, serviceURL string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if localHosts[host] {
		return localURL
	}
	return serviceURL
}

// Gateway wraps outbound calls to the storefront backend. It attaches the
// bearer token when one is stored and centralizes base URL selection. It
// never retries or refreshes; failures, including 401, surface to the
// caller, which is expected to consult the session manager before retrying
// a guarded operation.
type Gateway struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
	log     *zap.Logger
}

// NewGateway constructs a Gateway. client may be nil, in which case
// http.DefaultClient is used.
func NewGateway(client *http.Client, baseURL string, tokens TokenSource, log *zap.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     log,
	}
}

// Do issues a request against the backend. body, when non-nil, is JSON
// encoded. The caller owns the response body and must close it.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if pair := g.tokens.Tokens(); pair != nil && pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	g.log.Debug("request done", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return resp, nil
}
