// Package api is the HTTP client for the Fixxy complaint API.
//
// This package implements:
//   - Connection pooling shared by every dashboard request
//   - OpenTelemetry spans around each outbound call
//   - Schema validation of every response body before it is decoded
//
// Every operation fails with one of the typed errors in internal/errors so
// the screens can pick the right message without inspecting strings.
package api

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient creates an HTTP client with connection pooling and tracing.
//
// Connection pool configuration:
//   - MaxIdleConns: 100 across all hosts
//   - MaxIdleConnsPerHost: maxConns
//     The dashboard only talks to one host, so this is the effective pool.
//   - IdleConnTimeout: 90 seconds
//
// The transport is wrapped with otelhttp so each API call becomes a child
// span of the dashboard request that triggered it.
//
// Parameters:
//   - timeout: Maximum time for a complete request (including reading response)
//   - maxConns: Idle connections kept per host
//
// Returns:
//   - *http.Client: Configured HTTP client
func NewHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	if maxConns < 1 {
		maxConns = 1
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: maxConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}
