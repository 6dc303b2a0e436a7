// Package health tracks platform connectivity and fullnode reachability and
// serves them over HTTP.
package health

import (
	"context"
	"time"

	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Checker is a dependency whose liveness is reported in the detailed view
// (record store, session cache).
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// ComponentHealth is the result of one Checker.
type ComponentHealth struct {
	Status SystemStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus     SystemStatus                     `json:"system_status"`
	Online           bool                             `json:"online"`
	Reachable        bool                             `json:"reachable"`
	LatestCheckpoint uint64                           `json:"latest_checkpoint"`
	CheckedAt        time.Time                        `json:"checked_at"`
	ProbeError       string                           `json:"probe_error,omitempty"`
	Providers        map[string]provider.HealthStatus `json:"providers,omitempty"`
	Components       map[string]ComponentHealth       `json:"components,omitempty"`
}
