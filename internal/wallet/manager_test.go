package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
)

const (
	addrA = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	addrB = "0x00000000000000000000000000000000000000000000000000000000000000bb"
)

type fakeAdapter struct {
	name       string
	connected  bool
	accounts   []string
	probeErr   error
	connectErr error
	discErr    error

	mu        sync.Mutex
	submitErr []error // consumed one per call
	submits   int
	connects  int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) IsConnected(context.Context) (bool, error) {
	return f.connected, f.probeErr
}

func (f *fakeAdapter) GetAccounts(context.Context) ([]string, error) {
	return f.accounts, nil
}

func (f *fakeAdapter) Connect(context.Context) ([]string, error) {
	f.connects++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.connected = true
	return f.accounts, nil
}

func (f *fakeAdapter) Disconnect(context.Context) error {
	f.connected = false
	return f.discErr
}

func (f *fakeAdapter) SignAndExecuteTransaction(context.Context, *domain.TxDescriptor) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if len(f.submitErr) > 0 {
		err := f.submitErr[0]
		f.submitErr = f.submitErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return &Receipt{Digest: "digest-1"}, nil
}

func (f *fakeAdapter) SignMessage(_ context.Context, msg []byte) (*SignedMessage, error) {
	return &SignedMessage{Bytes: string(msg), Signature: "sig"}, nil
}

func (f *fakeAdapter) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

type fakeBalances struct {
	mu    sync.Mutex
	mist  uint64
	calls int
}

func (f *fakeBalances) Balance(context.Context, string, string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.mist, nil
}

type flag struct{ online bool }

func (f *flag) IsOnline() bool { return f.online }

func newTestManager(conn *flag, bal *fakeBalances, store SessionStore, adapters ...Adapter) *Manager {
	exec := routing.NewExecutor(routing.RetryConfig{MaxAttempts: 3, InitialDelay: time.Second}, neterr.NewClassifier(conn.IsOnline))
	exec.Sleep = func(context.Context, time.Duration) error { return nil }
	return NewManager(Options{
		Adapters: adapters,
		Balances: bal,
		Conn:     conn,
		Executor: exec,
		Store:    store,
	})
}

func testTransfer(t *testing.T) *domain.TxDescriptor {
	t.Helper()
	desc, err := domain.NewTransfer(addrB, 1000)
	require.NoError(t, err)
	return desc
}

func TestManager_RestoreBindsFirstAuthorizedAdapter(t *testing.T) {
	broken := &fakeAdapter{name: "suiet", probeErr: errors.New("extension not installed")}
	idle := &fakeAdapter{name: "sui-wallet"}
	ready := &fakeAdapter{name: "ethos", connected: true, accounts: []string{addrA}}
	bal := &fakeBalances{mist: 5_000_000_000}
	store := NewMemoryStore()

	m := newTestManager(&flag{online: true}, bal, store, broken, idle, ready)
	sess, err := m.Restore(context.Background())
	require.NoError(t, err)

	assert.True(t, sess.Connected)
	assert.Equal(t, "ethos", sess.Adapter)
	assert.Equal(t, addrA, sess.Address)
	assert.Equal(t, 5.0, sess.Balance)

	cached, ok, _ := store.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, sess, cached, "every transition is written to the store")
}

func TestManager_RestorePrefersCachedAdapter(t *testing.T) {
	first := &fakeAdapter{name: "suiet", connected: true, accounts: []string{addrA}}
	second := &fakeAdapter{name: "ethos", connected: true, accounts: []string{addrB}}
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), domain.Session{Adapter: "ethos", Address: addrB, Connected: true}))

	m := newTestManager(&flag{online: true}, &fakeBalances{}, store, first, second)
	sess, err := m.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ethos", sess.Adapter)
}

func TestManager_RestoreWithoutWallet(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(&flag{online: true}, &fakeBalances{}, store, &fakeAdapter{name: "suiet"})

	sess, err := m.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Connected)
	_, ok, _ := store.Load(context.Background())
	assert.False(t, ok)
}

func TestManager_ConnectFallsThroughAdapters(t *testing.T) {
	rejecting := &fakeAdapter{name: "suiet", connectErr: errors.New("user rejected the request")}
	empty := &fakeAdapter{name: "sui-wallet"}
	good := &fakeAdapter{name: "martian", accounts: []string{addrA}}
	bal := &fakeBalances{mist: 1_500_000_000}

	m := newTestManager(&flag{online: true}, bal, nil, rejecting, empty, good)
	sess, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "martian", sess.Adapter)
	assert.Equal(t, 1.5, sess.Balance)
	assert.Equal(t, 1, bal.calls, "balance is read on connect")
}

func TestManager_ConnectNoWallet(t *testing.T) {
	m := newTestManager(&flag{online: true}, &fakeBalances{}, nil,
		&fakeAdapter{name: "suiet", connectErr: errors.New("not installed")})

	_, err := m.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, neterr.IsCategory(err, neterr.WalletError))
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestManager_DisconnectResetsEvenOnError(t *testing.T) {
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}, discErr: errors.New("bridge gone")}
	store := NewMemoryStore()
	m := newTestManager(&flag{online: true}, &fakeBalances{}, store, a)

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	err = m.Disconnect(context.Background())
	assert.Error(t, err)
	assert.False(t, m.Session().Connected)
	assert.Empty(t, m.Session().Address)
	_, ok, _ := store.Load(context.Background())
	assert.False(t, ok)
}

func TestManager_SignAndExecuteRequiresWallet(t *testing.T) {
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}}
	m := newTestManager(&flag{online: true}, &fakeBalances{}, nil, a)

	_, err := m.SignAndExecute(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.True(t, neterr.IsCategory(err, neterr.WalletError))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 0, a.submitCount())
}

func TestManager_SignAndExecuteOfflineGate(t *testing.T) {
	conn := &flag{online: true}
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}}
	m := newTestManager(conn, &fakeBalances{}, nil, a)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	conn.online = false
	_, err = m.SignAndExecute(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.Equal(t, neterr.Offline, neterr.CategoryOf(err))
	assert.Equal(t, 0, a.submitCount(), "no network call while offline")
}

func TestManager_SignAndExecuteRetriesAndRefreshes(t *testing.T) {
	a := &fakeAdapter{
		name:     "suiet",
		accounts: []string{addrA},
		submitErr: []error{
			errors.New("internal server error"),
			errors.New("request timeout"),
			nil,
		},
	}
	bal := &fakeBalances{mist: 2_000_000_000}
	m := newTestManager(&flag{online: true}, bal, nil, a)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	bal.mist = 1_000_000_000
	receipt, err := m.SignAndExecute(context.Background(), testTransfer(t))
	require.NoError(t, err)

	assert.Equal(t, "digest-1", receipt.Digest)
	assert.Equal(t, 3, a.submitCount())
	assert.Equal(t, 1.0, m.Session().Balance, "balance is refreshed after submission")
}

func TestManager_SignAndExecuteWalletRejectionNotRetried(t *testing.T) {
	a := &fakeAdapter{
		name:      "suiet",
		accounts:  []string{addrA},
		submitErr: []error{errors.New("User rejected the request")},
	}
	bal := &fakeBalances{mist: 2_000_000_000}
	m := newTestManager(&flag{online: true}, bal, nil, a)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	calls := bal.calls

	_, err = m.SignAndExecute(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.Equal(t, neterr.WalletError, neterr.CategoryOf(err))
	assert.Equal(t, 1, a.submitCount())
	assert.Equal(t, calls, bal.calls, "no refresh after a failed submission")
}

func TestManager_SignAndExecuteRejectsInvalidDescriptor(t *testing.T) {
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}}
	m := newTestManager(&flag{online: true}, &fakeBalances{}, nil, a)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	_, err = m.SignAndExecute(context.Background(), &domain.TxDescriptor{})
	assert.ErrorIs(t, err, domain.ErrInvalidDescriptor)
	assert.Equal(t, 0, a.submitCount())
}

func TestManager_RefreshBalanceRequiresWallet(t *testing.T) {
	m := newTestManager(&flag{online: true}, &fakeBalances{}, nil)
	_, err := m.RefreshBalance(context.Background())
	assert.True(t, neterr.IsCategory(err, neterr.WalletError))
}

func TestManager_SignMessage(t *testing.T) {
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}}
	m := newTestManager(&flag{online: true}, &fakeBalances{}, nil, a)

	_, err := m.SignMessage(context.Background(), []byte("hi"))
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = m.Connect(context.Background())
	require.NoError(t, err)
	signed, err := m.SignMessage(context.Background(), []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "sig", signed.Signature)
}
