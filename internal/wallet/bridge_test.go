package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
)

func bridgeServer(t *testing.T, handle func(method string, params []any) (any, *provider.RPCError)) *Bridge {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string `json:"id"`
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := handle(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return NewBridge("suiet", provider.NewHTTPProvider("suiet", srv.URL, 5*time.Second))
}

func TestBridge_Accounts(t *testing.T) {
	b := bridgeServer(t, func(method string, _ []any) (any, *provider.RPCError) {
		switch method {
		case bridgeIsConnected:
			return true, nil
		case bridgeGetAccounts:
			return []any{addrA}, nil
		case bridgeConnect:
			return map[string]any{"accounts": []any{map[string]any{"address": addrB}}}, nil
		case bridgeDisconnect:
			return nil, nil
		}
		return nil, &provider.RPCError{Code: -32601, Message: "method not found"}
	})
	ctx := context.Background()

	ok, err := b.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	accounts, err := b.GetAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addrA}, accounts)

	accounts, err = b.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addrB}, accounts)

	assert.NoError(t, b.Disconnect(ctx))
}

func TestBridge_SignAndExecute(t *testing.T) {
	var gotKind string
	b := bridgeServer(t, func(method string, params []any) (any, *provider.RPCError) {
		if method != bridgeSignAndExecute {
			return nil, &provider.RPCError{Code: -32601, Message: "method not found"}
		}
		desc := params[0].(map[string]any)
		gotKind, _ = desc["kind"].(string)
		return map[string]any{
			"digest":  "Dg9",
			"effects": map[string]any{"status": map[string]any{"status": "success"}},
		}, nil
	})

	receipt, err := b.SignAndExecuteTransaction(context.Background(), testTransfer(t))
	require.NoError(t, err)
	assert.Equal(t, "Dg9", receipt.Digest)
	assert.Equal(t, "transfer", gotKind)
}

func TestBridge_RejectionClassifiesAsWalletError(t *testing.T) {
	b := bridgeServer(t, func(string, []any) (any, *provider.RPCError) {
		return nil, &provider.RPCError{Code: 4001, Message: "User rejected the request"}
	})

	_, err := b.SignAndExecuteTransaction(context.Background(), testTransfer(t))
	require.Error(t, err)
	assert.Equal(t, neterr.WalletError, neterr.Classify(err, true))
}

func TestBridge_SignMessage(t *testing.T) {
	b := bridgeServer(t, func(method string, params []any) (any, *provider.RPCError) {
		return map[string]any{"signature": "c2ln", "bytes": params[0]}, nil
	})

	signed, err := b.SignMessage(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "c2ln", signed.Signature)
	assert.Equal(t, "aGVsbG8=", signed.Bytes)
}
