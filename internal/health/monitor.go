package health

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
	"github.com/vietddude/suiwork/internal/metrics"
)

// CheckpointFetcher is the reachability probe.
type CheckpointFetcher interface {
	LatestCheckpoint(ctx context.Context) (uint64, error)
}

type subscription struct {
	onOffline func()
	onOnline  func()
}

// Monitor holds the platform online flag and the result of the last
// reachability probe. The probe runs at Start and on every transition to
// online; it is not polled.
type Monitor struct {
	fetcher      CheckpointFetcher
	probeTimeout time.Duration
	providers    []provider.Provider
	checkers     []Checker
	log          *slog.Logger
	now          func() time.Time

	mu         sync.RWMutex
	base       context.Context
	online     bool
	reachable  bool
	checkpoint uint64
	checkedAt  time.Time
	probeErr   error
	subs       map[uint64]subscription
	nextID     uint64

	reportMu   sync.Mutex
	lastCheck  time.Time
	components map[string]ComponentHealth
}

// NewMonitor creates a monitor that starts online and unreachable.
func NewMonitor(fetcher CheckpointFetcher, probeTimeout time.Duration) *Monitor {
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	metrics.Connectivity.Set(1)
	return &Monitor{
		fetcher:      fetcher,
		probeTimeout: probeTimeout,
		log:          slog.Default().With("component", "health"),
		now:          time.Now,
		base:         context.Background(),
		online:       true,
		subs:         make(map[uint64]subscription),
	}
}

// WithProviders adds RPC providers to the detailed report.
func (m *Monitor) WithProviders(ps ...provider.Provider) *Monitor {
	m.providers = append(m.providers, ps...)
	return m
}

// WithCheckers adds dependencies to the detailed report.
func (m *Monitor) WithCheckers(cs ...Checker) *Monitor {
	m.checkers = append(m.checkers, cs...)
	return m
}

// Start runs the initial probe. ctx also bounds probes triggered later by
// online transitions.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()
	return m.Probe(ctx)
}

// IsOnline reports the platform connectivity flag.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// IsReachable reports the result of the last probe.
func (m *Monitor) IsReachable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reachable
}

// State returns a snapshot of the connection state.
func (m *Monitor) State() domain.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.ConnectionState{Online: m.online, Reachable: m.reachable, CheckedAt: m.checkedAt}
}

// SetOnline records a platform connectivity event. Subscribers fire only on
// transitions; a transition to online also re-runs the probe.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	base := m.base
	subs := make([]subscription, 0, len(m.subs))
	for _, id := range m.sortedIDs() {
		subs = append(subs, m.subs[id])
	}
	m.mu.Unlock()

	if online {
		metrics.Connectivity.Set(1)
		m.log.Info("Connection restored")
	} else {
		metrics.Connectivity.Set(0)
		m.log.Warn("Connection lost")
	}

	for _, s := range subs {
		if online && s.onOnline != nil {
			s.onOnline()
		}
		if !online && s.onOffline != nil {
			s.onOffline()
		}
	}

	if online {
		if err := m.Probe(base); err != nil {
			m.log.Warn("Reachability probe failed after reconnect", "error", err)
		}
	}
}

// Subscribe registers transition callbacks. Either may be nil. The returned
// cleanup removes both and is safe to call more than once.
func (m *Monitor) Subscribe(onOffline, onOnline func()) (cleanup func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = subscription{onOffline: onOffline, onOnline: onOnline}
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered subscriptions.
func (m *Monitor) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// Probe fetches the latest checkpoint and records whether the fullnode
// answered.
func (m *Monitor) Probe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	cp, err := m.fetcher.LatestCheckpoint(ctx)

	m.mu.Lock()
	m.checkedAt = m.now()
	m.probeErr = err
	m.reachable = err == nil
	if err == nil {
		m.checkpoint = cp
	}
	m.mu.Unlock()

	if err != nil {
		metrics.Reachability.Set(0)
		m.log.Debug("Fullnode unreachable", "error", err)
		return err
	}
	metrics.Reachability.Set(1)
	metrics.LatestCheckpoint.Set(float64(cp))
	m.log.Debug("Fullnode reachable", "checkpoint", cp)
	return nil
}

// CheckHealth builds the detailed report. Dependency pings are cached for
// ten seconds.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.RLock()
	report := HealthReport{
		Online:           m.online,
		Reachable:        m.reachable,
		LatestCheckpoint: m.checkpoint,
		CheckedAt:        m.checkedAt,
	}
	if m.probeErr != nil {
		report.ProbeError = m.probeErr.Error()
	}
	m.mu.RUnlock()

	if len(m.providers) > 0 {
		report.Providers = make(map[string]provider.HealthStatus, len(m.providers))
		for _, p := range m.providers {
			report.Providers[p.GetName()] = p.GetHealth()
		}
	}
	report.Components = m.pingComponents(ctx)

	report.SystemStatus = StatusHealthy
	for _, c := range report.Components {
		if c.Status != StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}
	if !report.Online || !report.Reachable {
		report.SystemStatus = StatusCritical
	}
	return report
}

func (m *Monitor) pingComponents(ctx context.Context) map[string]ComponentHealth {
	if len(m.checkers) == 0 {
		return nil
	}
	m.reportMu.Lock()
	defer m.reportMu.Unlock()

	// Rate limit checks to avoid hammering dependencies
	if m.now().Sub(m.lastCheck) < 10*time.Second && m.components != nil {
		return m.components
	}

	out := make(map[string]ComponentHealth, len(m.checkers))
	for _, c := range m.checkers {
		h := ComponentHealth{Status: StatusHealthy}
		if err := c.Ping(ctx); err != nil {
			h = ComponentHealth{Status: StatusDegraded, Error: err.Error()}
		}
		out[c.Name()] = h
	}
	m.components = out
	m.lastCheck = m.now()
	return out
}

// sortedIDs returns subscription ids in registration order. Caller holds mu.
func (m *Monitor) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
