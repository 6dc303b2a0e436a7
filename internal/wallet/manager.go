package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
	"github.com/vietddude/suiwork/internal/metrics"
)

// Manager is the single writer of the wallet session. All reads go through
// Session; writes happen only in Restore, Connect, Disconnect, RefreshBalance
// and SignAndExecute, each followed by a SessionStore.Save.
type Manager struct {
	adapters []Adapter
	balances BalanceReader
	conn     Connectivity
	exec     *routing.Executor
	store    SessionStore
	log      *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	bound   Adapter
	session domain.Session
}

// Options wires the manager's collaborators. Store and Conn are optional.
type Options struct {
	Adapters []Adapter
	Balances BalanceReader
	Conn     Connectivity
	Executor *routing.Executor
	Store    SessionStore
	Logger   *slog.Logger
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		adapters: opts.Adapters,
		balances: opts.Balances,
		conn:     opts.Conn,
		exec:     opts.Executor,
		store:    opts.Store,
		log:      opts.Logger,
		now:      time.Now,
	}
	if m.exec == nil {
		var online neterr.Online
		if m.conn != nil {
			online = m.conn.IsOnline
		}
		m.exec = routing.NewExecutor(routing.DefaultRetryConfig, neterr.NewClassifier(online))
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("component", "wallet")
	return m
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Adapters lists configured adapter names in probe order.
func (m *Manager) Adapters() []string {
	names := make([]string, len(m.adapters))
	for i, a := range m.adapters {
		names[i] = a.Name()
	}
	return names
}

// Restore binds to the first adapter that already has an authorized account.
// The adapter recorded in the stored session is tried first.
func (m *Manager) Restore(ctx context.Context) (domain.Session, error) {
	cached, ok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn("Failed to load cached session", "error", err)
	}

	for _, a := range m.ordered(cached.Adapter, ok) {
		connected, err := a.IsConnected(ctx)
		if err != nil {
			m.log.Debug("Adapter probe failed", "adapter", a.Name(), "error", err)
			continue
		}
		if !connected {
			continue
		}
		accounts, err := a.GetAccounts(ctx)
		if err != nil || len(accounts) == 0 {
			continue
		}
		m.bind(ctx, a, accounts[0])
		m.log.Info("Restored wallet session", "adapter", a.Name(), "address", accounts[0])
		m.refreshAfterBind(ctx)
		return m.Session(), nil
	}

	m.reset(ctx)
	return m.Session(), nil
}

// Connect requests authorization from adapters in order and binds to the
// first that returns an account.
func (m *Manager) Connect(ctx context.Context) (domain.Session, error) {
	var errs []error
	for _, a := range m.adapters {
		accounts, err := a.Connect(ctx)
		if err != nil {
			m.log.Debug("Adapter connect failed", "adapter", a.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
			continue
		}
		if len(accounts) == 0 {
			continue
		}
		m.bind(ctx, a, accounts[0])
		m.log.Info("Wallet connected", "adapter", a.Name(), "address", accounts[0])
		m.refreshAfterBind(ctx)
		return m.Session(), nil
	}

	cause := ErrNoWallet
	if len(errs) > 0 {
		cause = errors.Join(append([]error{ErrNoWallet}, errs...)...)
	}
	return m.Session(), neterr.New(neterr.WalletError, neterr.UserMessage(cause, neterr.WalletError), cause)
}

// Disconnect releases the bound adapter. The session is reset even if the
// adapter fails to disconnect.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.RLock()
	a := m.bound
	m.mu.RUnlock()

	var err error
	if a != nil {
		if err = a.Disconnect(ctx); err != nil {
			m.log.Warn("Adapter disconnect failed", "adapter", a.Name(), "error", err)
		}
	}
	m.reset(ctx)
	m.log.Info("Wallet disconnected")
	return err
}

// RefreshBalance reads the bound account's SUI balance.
func (m *Manager) RefreshBalance(ctx context.Context) (float64, error) {
	m.mu.RLock()
	addr, connected := m.session.Address, m.session.Connected
	m.mu.RUnlock()
	if !connected {
		return 0, notConnected()
	}
	if m.balances == nil {
		return 0, fmt.Errorf("no balance reader configured")
	}

	mist, err := routing.Retry(ctx, m.exec, "get_balance", func(ctx context.Context) (uint64, error) {
		return m.balances.Balance(ctx, addr, sui.SUICoinType)
	})
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	if m.session.Address != addr {
		// Account changed while the read was in flight.
		m.mu.Unlock()
		return domain.FromMist(mist), nil
	}
	m.session.BalanceMist = mist
	m.session.Balance = domain.FromMist(mist)
	m.session.UpdatedAt = m.now()
	snap := m.session
	m.mu.Unlock()

	m.save(ctx, snap)
	return snap.Balance, nil
}

// SignAndExecute submits desc through the bound adapter under the retry
// policy. Submissions are refused without a network call when no wallet is
// bound or the platform is offline.
func (m *Manager) SignAndExecute(ctx context.Context, desc *domain.TxDescriptor) (*Receipt, error) {
	m.mu.RLock()
	a := m.bound
	m.mu.RUnlock()
	if a == nil {
		return nil, notConnected()
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if m.conn != nil && !m.conn.IsOnline() {
		metrics.Submissions.WithLabelValues(a.Name(), string(desc.Kind), neterr.Offline.String()).Inc()
		return nil, neterr.New(neterr.Offline, neterr.UserMessage(ErrOffline, neterr.Offline), ErrOffline)
	}

	op := sui.DescribeTarget(desc)
	receipt, err := routing.Retry(ctx, m.exec, "sign_and_execute", func(ctx context.Context) (*Receipt, error) {
		return a.SignAndExecuteTransaction(ctx, desc)
	})
	if err != nil {
		metrics.Submissions.WithLabelValues(a.Name(), string(desc.Kind), neterr.CategoryOf(err).String()).Inc()
		m.log.Error("Transaction failed", "adapter", a.Name(), "target", op, "error", err)
		return nil, err
	}
	metrics.Submissions.WithLabelValues(a.Name(), string(desc.Kind), "success").Inc()
	m.log.Info("Transaction executed", "adapter", a.Name(), "target", op, "digest", receipt.Digest)

	// Every executed transaction pays gas, so the balance is stale.
	if _, err := m.RefreshBalance(ctx); err != nil {
		m.log.Warn("Balance refresh after submission failed", "error", err)
	}
	return receipt, nil
}

// SignMessage signs msg with the bound adapter.
func (m *Manager) SignMessage(ctx context.Context, msg []byte) (*SignedMessage, error) {
	m.mu.RLock()
	a := m.bound
	m.mu.RUnlock()
	if a == nil {
		return nil, notConnected()
	}
	signed, err := a.SignMessage(ctx, msg)
	if err != nil {
		return nil, m.exec.Classifier.Wrap(err)
	}
	return signed, nil
}

func (m *Manager) ordered(preferred string, ok bool) []Adapter {
	if !ok || preferred == "" {
		return m.adapters
	}
	out := make([]Adapter, 0, len(m.adapters))
	for _, a := range m.adapters {
		if a.Name() == preferred {
			out = append(out, a)
		}
	}
	for _, a := range m.adapters {
		if a.Name() != preferred {
			out = append(out, a)
		}
	}
	return out
}

func (m *Manager) bind(ctx context.Context, a Adapter, address string) {
	m.mu.Lock()
	m.bound = a
	m.session = domain.Session{
		Adapter:   a.Name(),
		Address:   address,
		Connected: true,
		UpdatedAt: m.now(),
	}
	snap := m.session
	m.mu.Unlock()
	m.save(ctx, snap)
}

func (m *Manager) refreshAfterBind(ctx context.Context) {
	if m.balances == nil {
		return
	}
	if _, err := m.RefreshBalance(ctx); err != nil {
		m.log.Warn("Initial balance refresh failed", "error", err)
	}
}

func (m *Manager) reset(ctx context.Context) {
	m.mu.Lock()
	m.bound = nil
	m.session = domain.Session{UpdatedAt: m.now()}
	m.mu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("Failed to clear cached session", "error", err)
	}
}

func (m *Manager) save(ctx context.Context, s domain.Session) {
	if err := m.store.Save(ctx, s); err != nil {
		m.log.Warn("Failed to persist session", "error", err)
	}
}

func notConnected() error {
	return neterr.New(neterr.WalletError, neterr.UserMessage(ErrNotConnected, neterr.WalletError), ErrNotConnected)
}
