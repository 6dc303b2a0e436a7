package wallet

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
)

// Ledger is what the keystore needs from a Sui client.
type Ledger interface {
	sui.ChainReader
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*sui.ExecutionResult, error)
}

// Keystore signs locally with an Ed25519 key and submits over RPC.
type Keystore struct {
	name   string
	key    *sui.Keypair
	ledger Ledger
	gas    sui.GasConfig

	mu        sync.Mutex
	connected bool
}

// NewKeystore creates a keystore adapter. It starts disconnected; Connect
// authorizes it.
func NewKeystore(name string, key *sui.Keypair, ledger Ledger, gas sui.GasConfig) *Keystore {
	if name == "" {
		name = "keystore"
	}
	return &Keystore{name: name, key: key, ledger: ledger, gas: gas}
}

func (k *Keystore) Name() string { return k.name }

// Address returns the key's account address.
func (k *Keystore) Address() string { return k.key.Address() }

func (k *Keystore) IsConnected(context.Context) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.connected, nil
}

func (k *Keystore) GetAccounts(context.Context) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.connected {
		return nil, nil
	}
	return []string{k.key.Address()}, nil
}

func (k *Keystore) Connect(context.Context) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.connected = true
	return []string{k.key.Address()}, nil
}

func (k *Keystore) Disconnect(context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.connected = false
	return nil
}

// SignAndExecuteTransaction builds TransactionData for desc, signs it and
// executes it. Object versions and gas coins are re-resolved on every call.
func (k *Keystore) SignAndExecuteTransaction(ctx context.Context, desc *domain.TxDescriptor) (*Receipt, error) {
	if ok, _ := k.IsConnected(ctx); !ok {
		return nil, ErrNotConnected
	}
	txBytes, err := sui.BuildTransactionData(ctx, k.ledger, desc, k.key.Address(), k.gas)
	if err != nil {
		return nil, err
	}
	sig := k.key.SignTransaction(txBytes)

	res, err := k.ledger.ExecuteTransactionBlock(ctx, base64.StdEncoding.EncodeToString(txBytes), []string{sig})
	if err != nil {
		return nil, err
	}
	return &Receipt{Digest: res.Digest, GasUsed: res.GasUsed}, nil
}

// SignMessage signs msg under the personal message intent.
func (k *Keystore) SignMessage(ctx context.Context, msg []byte) (*SignedMessage, error) {
	if ok, _ := k.IsConnected(ctx); !ok {
		return nil, ErrNotConnected
	}
	return &SignedMessage{
		Bytes:     base64.StdEncoding.EncodeToString(msg),
		Signature: k.key.SignPersonalMessage(msg),
	}, nil
}
