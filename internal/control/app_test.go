package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/core/config"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
	"github.com/vietddude/suiwork/internal/infra/storage"
)

const testKey = "0x0101010101010101010101010101010101010101010101010101010101010101"

// fullnode answers the read-only calls the mount sequence makes.
func fullnode(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var result any
		switch req.Method {
		case "sui_getLatestCheckpointSequenceNumber":
			result = "1234"
		case "suix_getBalance":
			result = map[string]any{"coinType": sui.SUICoinType, "totalBalance": "1500000000"}
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, rpcURL string) config.AppConfig {
	t.Helper()
	t.Setenv(config.EnvNetwork, "")
	t.Setenv(config.EnvPackageID, "")
	cfg, err := config.Parse([]byte(`
network: localnet
package_id: "0x42"
wallet:
  adapters:
    - name: local
      private_key: ` + testKey + `
`))
	require.NoError(t, err)
	cfg.RPC.URL = rpcURL
	return *cfg
}

func TestApp_MountAndConnect(t *testing.T) {
	srv := fullnode(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t, srv.URL))
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	defer func() { assert.NoError(t, app.Stop(context.Background())) }()

	state := app.Monitor().State()
	assert.True(t, state.Online)
	assert.True(t, state.Reachable)

	// keystore starts disconnected, so mount restores nothing
	assert.False(t, app.Wallet().Session().Connected)

	session, err := app.Wallet().Connect(ctx)
	require.NoError(t, err)

	key, err := sui.ParsePrivateKey(testKey)
	require.NoError(t, err)
	assert.Equal(t, "local", session.Adapter)
	assert.Equal(t, key.Address(), session.Address)
	assert.InDelta(t, 1.5, session.Balance, 1e-9)

	rec := httptest.NewRecorder()
	app.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_MemoryRecordStore(t *testing.T) {
	srv := fullnode(t)
	ctx := context.Background()

	app, err := NewApp(ctx, testConfig(t, srv.URL))
	require.NoError(t, err)

	row, err := app.Records().Insert(ctx, storage.Users, storage.Row{
		"wallet_address": "0xabc",
		"role":           "client",
		"username":       "bo",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, row["id"])

	n, err := app.Records().Count(ctx, storage.Users)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApp_BadKeystoreKey(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Wallet.Adapters[0].PrivateKey = "not-a-key"

	_, err := NewApp(context.Background(), cfg)
	assert.ErrorIs(t, err, sui.ErrInvalidKey)
}

func TestApp_FallbackEndpoint(t *testing.T) {
	srv := fullnode(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.RPC.FallbackURLs = []string{srv.URL}
	cfg.Link.Addr = srv.Listener.Addr().String()

	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	defer func() { assert.NoError(t, app.Stop(context.Background())) }()

	assert.True(t, app.Monitor().IsReachable())

	checkpoint, err := app.Client().LatestCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), checkpoint)
}
