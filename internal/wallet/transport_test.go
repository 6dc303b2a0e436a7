package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
)

func TestManager_BridgeDroppedConnectionNotResent(t *testing.T) {
	var (
		mu      sync.Mutex
		submits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Method == bridgeSignAndExecute {
			mu.Lock()
			submits++
			mu.Unlock()
			// The wallet may already have executed; drop the connection.
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": []any{addrA}})
	}))
	defer srv.Close()

	conn := &flag{online: true}
	var delays []time.Duration
	exec := routing.NewExecutor(routing.RetryConfig{MaxAttempts: 3, InitialDelay: time.Second}, neterr.NewClassifier(conn.IsOnline))
	exec.Sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	m := NewManager(Options{
		Adapters: []Adapter{NewBridge("suiet", provider.NewHTTPProvider("suiet", srv.URL, 5*time.Second))},
		Balances: &fakeBalances{},
		Conn:     conn,
		Executor: exec,
	})

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	_, err = m.SignAndExecute(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.Equal(t, neterr.Unknown, neterr.CategoryOf(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, submits)
	assert.Empty(t, delays)
}
