package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/health"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
)

type staticCheckpoint uint64

func (s staticCheckpoint) LatestCheckpoint(context.Context) (uint64, error) { return uint64(s), nil }

func TestOfflineEventBlocksSubmission(t *testing.T) {
	monitor := health.NewMonitor(staticCheckpoint(10), time.Second)
	require.NoError(t, monitor.Start(context.Background()))

	var notices []string
	cleanup := monitor.Subscribe(func() {
		notices = append(notices, neterr.Describe(nil, false))
	}, nil)
	defer cleanup()

	exec := routing.NewExecutor(routing.DefaultRetryConfig, neterr.NewClassifier(monitor.IsOnline))
	a := &fakeAdapter{name: "suiet", accounts: []string{addrA}}
	m := NewManager(Options{Adapters: []Adapter{a}, Conn: monitor, Executor: exec})
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	monitor.SetOnline(false)

	_, err = m.SignAndExecute(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.Equal(t, neterr.Offline, neterr.CategoryOf(err))
	assert.Equal(t, 0, a.submitCount())
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "offline")
}
