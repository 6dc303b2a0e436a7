// Package wallet binds the application to a wallet adapter and owns the
// connected session: account, balance and transaction submission.
package wallet

import (
	"context"
	"errors"

	"github.com/vietddude/suiwork/internal/core/domain"
)

var (
	ErrNoWallet     = errors.New("no wallet found")
	ErrNotConnected = errors.New("wallet not connected")
	ErrOffline      = errors.New("network offline")
)

// Receipt is the outcome of a submitted transaction.
type Receipt struct {
	Digest  string `json:"digest"`
	GasUsed uint64 `json:"gasUsed,omitempty"`
}

// SignedMessage is a personal message signature.
type SignedMessage struct {
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
}

// Adapter is one wallet implementation. Adapters are tried in the order they
// are given to the Manager.
type Adapter interface {
	Name() string
	IsConnected(ctx context.Context) (bool, error)
	GetAccounts(ctx context.Context) ([]string, error)
	Connect(ctx context.Context) ([]string, error)
	Disconnect(ctx context.Context) error
	SignAndExecuteTransaction(ctx context.Context, desc *domain.TxDescriptor) (*Receipt, error)
	SignMessage(ctx context.Context, msg []byte) (*SignedMessage, error)
}

// BalanceReader reads an owner's coin balance in MIST.
type BalanceReader interface {
	Balance(ctx context.Context, owner, coinType string) (uint64, error)
}

// Connectivity reports the platform online flag.
type Connectivity interface {
	IsOnline() bool
}
