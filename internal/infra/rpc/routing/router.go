// Package routing handles fullnode failover and the retry policy applied to
// wallet submissions.
//
// This package contains:
//   - Router: a Provider over ordered fullnode endpoints with a circuit breaker
//   - Executor/Retry: classified retry with exponential backoff
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
	"github.com/vietddude/suiwork/internal/metrics"
)

// ErrNoProviders is returned by a Router with no endpoints.
var ErrNoProviders = errors.New("no providers configured")

const (
	defaultFailureThreshold = 5
	defaultCooldown         = 30 * time.Second
)

type providerMetrics struct {
	successCount     int
	failureCount     int
	totalLatency     time.Duration
	lastSuccessAt    time.Time
	lastFailureAt    time.Time
	consecutiveFails int
	circuitOpen      bool
}

// Router is a Provider over an ordered list of endpoints. Calls go to the
// first endpoint whose circuit is closed; transport failures, 5xx and
// throttling move on to the next one. JSON-RPC errors are answers, not
// failures, and are returned as is.
type Router struct {
	name      string
	providers []provider.Provider
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	log       *slog.Logger

	mu     sync.Mutex
	health map[string]*providerMetrics
}

var _ provider.Provider = (*Router)(nil)

// NewRouter creates a router trying providers in the given order.
func NewRouter(name string, providers ...provider.Provider) *Router {
	r := &Router{
		name:      name,
		providers: providers,
		threshold: defaultFailureThreshold,
		cooldown:  defaultCooldown,
		now:       time.Now,
		log:       slog.Default().With("component", "router", "router", name),
		health:    make(map[string]*providerMetrics, len(providers)),
	}
	for _, p := range providers {
		r.health[p.GetName()] = &providerMetrics{}
	}
	return r
}

// WithCircuit sets how many consecutive failures open an endpoint's circuit
// and how long it stays open.
func (r *Router) WithCircuit(threshold int, cooldown time.Duration) *Router {
	if threshold > 0 {
		r.threshold = threshold
	}
	if cooldown > 0 {
		r.cooldown = cooldown
	}
	return r
}

func (r *Router) GetName() string { return r.name }

// Providers returns the endpoints in failover order.
func (r *Router) Providers() []provider.Provider {
	out := make([]provider.Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// GetHealth reports the health of the endpoint calls currently go to.
func (r *Router) GetHealth() provider.HealthStatus {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return provider.HealthStatus{}
	}
	return candidates[0].GetHealth()
}

// IsAvailable reports whether any endpoint can take calls.
func (r *Router) IsAvailable() bool {
	for _, p := range r.candidates() {
		if p.IsAvailable() {
			return true
		}
	}
	return false
}

// Call sends the request to the first usable endpoint, failing over on
// endpoint-level errors. When every circuit is open all endpoints are tried
// anyway, in order.
func (r *Router) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if len(r.providers) == 0 {
		return nil, ErrNoProviders
	}
	candidates := r.candidates()
	if len(candidates) == 0 {
		candidates = r.providers
	}

	var lastErr error
	for i, p := range candidates {
		start := r.now()
		res, err := p.Call(ctx, method, params)
		if err == nil {
			r.recordSuccess(p.GetName(), r.now().Sub(start))
			return res, nil
		}
		if !shouldFailover(ctx, err) {
			return nil, err
		}
		r.recordFailure(p.GetName())
		lastErr = err
		if i+1 < len(candidates) {
			metrics.RPCFailovers.WithLabelValues(r.name, p.GetName(), candidates[i+1].GetName()).Inc()
			r.log.Warn("Endpoint failed, failing over",
				"from", p.GetName(),
				"to", candidates[i+1].GetName(),
				"method", method,
				"error", err)
		}
	}
	return nil, lastErr
}

// Close closes every endpoint.
func (r *Router) Close() error {
	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.GetName(), err))
		}
	}
	return errors.Join(errs...)
}

// candidates returns endpoints with a closed circuit, or whose cooldown has
// elapsed, that also report themselves available.
func (r *Router) candidates() []provider.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make([]provider.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		m := r.health[p.GetName()]
		if m.circuitOpen && now.Sub(m.lastFailureAt) < r.cooldown {
			continue
		}
		if !p.IsAvailable() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Router) recordSuccess(name string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.health[name]
	m.successCount++
	m.totalLatency += latency
	m.lastSuccessAt = r.now()
	m.consecutiveFails = 0
	m.circuitOpen = false
}

func (r *Router) recordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.health[name]
	m.failureCount++
	m.lastFailureAt = r.now()
	m.consecutiveFails++

	if m.consecutiveFails >= r.threshold && !m.circuitOpen {
		m.circuitOpen = true
		r.log.Warn("Circuit opened", "provider", name, "failures", m.consecutiveFails)
	}
}

// CircuitOpen reports whether the named endpoint's circuit is open.
func (r *Router) CircuitOpen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.health[name]
	return ok && m.circuitOpen && r.now().Sub(m.lastFailureAt) < r.cooldown
}

// shouldFailover reports whether err is an endpoint failure another endpoint
// might not have.
func shouldFailover(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var rpcErr *provider.RPCError
	if errors.As(err, &rpcErr) {
		return false
	}
	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code >= http.StatusInternalServerError ||
			httpErr.Code == http.StatusTooManyRequests ||
			httpErr.Code == http.StatusForbidden
	}
	return true
}
