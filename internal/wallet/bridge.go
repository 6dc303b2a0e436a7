package wallet

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
)

// Bridge methods exposed by a remote wallet.
const (
	bridgeIsConnected    = "wallet_isConnected"
	bridgeGetAccounts    = "wallet_getAccounts"
	bridgeConnect        = "wallet_connect"
	bridgeDisconnect     = "wallet_disconnect"
	bridgeSignAndExecute = "wallet_signAndExecuteTransaction"
	bridgeSignMessage    = "wallet_signMessage"
)

// Bridge is a remote wallet (browser extension relay, mobile signer) reached
// over JSON-RPC. The wallet builds, signs and executes descriptors itself.
type Bridge struct {
	name string
	rpc  provider.Provider
}

func NewBridge(name string, rpc provider.Provider) *Bridge {
	return &Bridge{name: name, rpc: rpc}
}

func (b *Bridge) Name() string { return b.name }

func (b *Bridge) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	if params == nil {
		params = []any{}
	}
	raw, err := b.rpc.Call(ctx, method, params)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("wallet %s: %w", b.name, err)
	}
	return gjson.ParseBytes(raw), nil
}

func (b *Bridge) IsConnected(ctx context.Context) (bool, error) {
	res, err := b.call(ctx, bridgeIsConnected)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

func (b *Bridge) GetAccounts(ctx context.Context) ([]string, error) {
	res, err := b.call(ctx, bridgeGetAccounts)
	if err != nil {
		return nil, err
	}
	return accountsOf(res), nil
}

func (b *Bridge) Connect(ctx context.Context) ([]string, error) {
	res, err := b.call(ctx, bridgeConnect)
	if err != nil {
		return nil, err
	}
	if acc := res.Get("accounts"); acc.Exists() {
		return accountsOf(acc), nil
	}
	return accountsOf(res), nil
}

func (b *Bridge) Disconnect(ctx context.Context) error {
	_, err := b.call(ctx, bridgeDisconnect)
	return err
}

func (b *Bridge) SignAndExecuteTransaction(ctx context.Context, desc *domain.TxDescriptor) (*Receipt, error) {
	res, err := b.call(ctx, bridgeSignAndExecute, desc)
	if err != nil {
		return nil, err
	}
	digest := res.Get("digest").String()
	if digest == "" {
		return nil, fmt.Errorf("wallet %s: transaction result has no digest", b.name)
	}
	if status := res.Get("effects.status.status").String(); status != "" && status != "success" {
		return nil, fmt.Errorf("wallet %s: transaction execution failed (%s): %s",
			b.name, digest, res.Get("effects.status.error").String())
	}
	return &Receipt{Digest: digest}, nil
}

func (b *Bridge) SignMessage(ctx context.Context, msg []byte) (*SignedMessage, error) {
	encoded := base64.StdEncoding.EncodeToString(msg)
	res, err := b.call(ctx, bridgeSignMessage, encoded)
	if err != nil {
		return nil, err
	}
	sig := res.Get("signature").String()
	if sig == "" {
		return nil, fmt.Errorf("wallet %s: sign message returned no signature", b.name)
	}
	return &SignedMessage{Bytes: encoded, Signature: sig}, nil
}

// Wallets report accounts either as address strings or as objects with an
// address field.
func accountsOf(res gjson.Result) []string {
	var out []string
	for _, item := range res.Array() {
		addr := item.String()
		if item.IsObject() {
			addr = item.Get("address").String()
		}
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
