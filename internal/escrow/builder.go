// Package escrow assembles and submits calls to the on-chain escrow module.
package escrow

import (
	"errors"
	"fmt"

	"github.com/vietddude/suiwork/internal/core/domain"
)

// Module is the Move module holding the escrow entry points.
const Module = "escrow"

// Escrow entry points.
const (
	FnCreateEscrow  = "create_escrow"
	FnLockFunds     = "lock_funds"
	FnReleaseFunds  = "release_funds"
	FnRaiseDispute  = "raise_dispute"
	FnDisputeRefund = "dispute_refund"
)

// ErrInvalidParams is returned before any network call when a builder input
// is unusable.
var ErrInvalidParams = errors.New("invalid escrow parameters")

// Builder produces escrow transaction descriptors for one deployed package.
type Builder struct {
	PackageID string
}

func NewBuilder(packageID string) *Builder {
	return &Builder{PackageID: packageID}
}

// Target returns "{package}::escrow::{function}".
func (b *Builder) Target(function string) (string, error) {
	if b.PackageID == "" {
		return "", fmt.Errorf("%w: package id is not configured", ErrInvalidParams)
	}
	pkg, err := domain.NormalizeAddress(b.PackageID)
	if err != nil {
		return "", fmt.Errorf("%w: package id: %v", ErrInvalidParams, err)
	}
	return pkg + "::" + Module + "::" + function, nil
}

// CreateEscrow calls create_escrow(job_id, client, freelancer, amount).
func (b *Builder) CreateEscrow(jobID uint64, client, freelancer string, amount uint64) (*domain.TxDescriptor, error) {
	target, err := b.Target(FnCreateEscrow)
	if err != nil {
		return nil, err
	}
	if jobID == 0 {
		return nil, fmt.Errorf("%w: job id must be set", ErrInvalidParams)
	}
	clientAddr, err := address("client", client)
	if err != nil {
		return nil, err
	}
	freelancerAddr, err := address("freelancer", freelancer)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidParams)
	}

	tx := domain.NewTxBuilder()
	tx.MoveCall(target,
		tx.Pure(domain.PureU64, jobID),
		tx.Pure(domain.PureAddress, clientAddr),
		tx.Pure(domain.PureAddress, freelancerAddr),
		tx.Pure(domain.PureU64, amount),
	)
	return tx.Build(domain.TxKindContractCall, target), nil
}

// LockFunds splits amount off the gas coin and passes it to lock_funds.
func (b *Builder) LockFunds(escrowID string, amount uint64) (*domain.TxDescriptor, error) {
	target, err := b.Target(FnLockFunds)
	if err != nil {
		return nil, err
	}
	id, err := address("escrow id", escrowID)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidParams)
	}

	tx := domain.NewTxBuilder()
	coin := tx.SplitCoins(domain.GasCoin(), tx.Pure(domain.PureU64, amount))
	tx.MoveCall(target, tx.Object(id), coin[0])
	return tx.Build(domain.TxKindContractCall, target), nil
}

// ReleaseFunds calls release_funds and transfers the returned coin to the
// freelancer in the same transaction.
func (b *Builder) ReleaseFunds(escrowID, freelancer string) (*domain.TxDescriptor, error) {
	return b.payout(FnReleaseFunds, escrowID, "freelancer", freelancer)
}

// RaiseDispute calls raise_dispute.
func (b *Builder) RaiseDispute(escrowID string) (*domain.TxDescriptor, error) {
	target, err := b.Target(FnRaiseDispute)
	if err != nil {
		return nil, err
	}
	id, err := address("escrow id", escrowID)
	if err != nil {
		return nil, err
	}

	tx := domain.NewTxBuilder()
	tx.MoveCall(target, tx.Object(id))
	return tx.Build(domain.TxKindContractCall, target), nil
}

// DisputeRefund calls dispute_refund and transfers the returned coin back to
// the client.
func (b *Builder) DisputeRefund(escrowID, client string) (*domain.TxDescriptor, error) {
	return b.payout(FnDisputeRefund, escrowID, "client", client)
}

func (b *Builder) payout(function, escrowID, role, recipient string) (*domain.TxDescriptor, error) {
	target, err := b.Target(function)
	if err != nil {
		return nil, err
	}
	id, err := address("escrow id", escrowID)
	if err != nil {
		return nil, err
	}
	to, err := address(role, recipient)
	if err != nil {
		return nil, err
	}

	tx := domain.NewTxBuilder()
	coin := tx.MoveCall(target, tx.Object(id))
	tx.TransferObjects([]domain.Argument{coin}, tx.Pure(domain.PureAddress, to))
	return tx.Build(domain.TxKindContractCall, target), nil
}

func address(field, v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidParams, field)
	}
	a, err := domain.NormalizeAddress(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidParams, field, err)
	}
	return a, nil
}
