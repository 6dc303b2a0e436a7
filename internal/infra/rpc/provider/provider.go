// Package provider implements the JSON-RPC transport used to reach Sui
// fullnodes and remote wallet bridges.
//
// This package contains:
//   - Provider interface: core abstraction for RPC endpoints
//   - HTTPProvider: JSON-RPC 2.0 over HTTP implementation
//   - ProviderMonitor: latency and throttle tracking
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Provider defines the interface for a JSON-RPC endpoint.
type Provider interface {
	// GetName returns provider identifier (e.g., "sui-testnet", "suiet")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Call makes a single RPC request and returns the raw result
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

// HTTPError is returned for non-200 responses. It exposes the status so
// callers can classify server failures.
type HTTPError struct {
	Code int
	Body string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status.
func (e *HTTPError) StatusCode() int { return e.Code }

// RPCError is a JSON-RPC error object returned by the endpoint.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
