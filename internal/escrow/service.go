package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
	"github.com/vietddude/suiwork/internal/wallet"
)

// Submitter signs and executes descriptors. wallet.Manager implements it.
type Submitter interface {
	SignAndExecute(ctx context.Context, desc *domain.TxDescriptor) (*wallet.Receipt, error)
}

// ObjectReader reads on-chain objects.
type ObjectReader interface {
	Object(ctx context.Context, id string) (*sui.ObjectInfo, error)
}

// CreateParams describes a new escrow. Amount is in SUI.
type CreateParams struct {
	JobID      uint64  `json:"jobId"`
	Client     string  `json:"client"`
	Freelancer string  `json:"freelancer"`
	Amount     float64 `json:"amount"`
}

// Info is the escrow object as read from the chain.
type Info struct {
	ObjectID string          `json:"objectId"`
	Type     string          `json:"type"`
	Version  uint64          `json:"version"`
	Shared   bool            `json:"shared"`
	Fields   json.RawMessage `json:"fields,omitempty"`
}

// Field returns a top-level Move field as a string, or "" if absent.
func (i *Info) Field(name string) string {
	if len(i.Fields) == 0 {
		return ""
	}
	return gjson.GetBytes(i.Fields, name).String()
}

// Service builds escrow descriptors and submits them through a wallet.
type Service struct {
	builder   *Builder
	submitter Submitter
	objects   ObjectReader
	log       *slog.Logger
}

func NewService(builder *Builder, submitter Submitter, objects ObjectReader) *Service {
	return &Service{
		builder:   builder,
		submitter: submitter,
		objects:   objects,
		log:       slog.Default().With("component", "escrow"),
	}
}

// CreateEscrow converts the SUI amount to MIST and calls create_escrow.
func (s *Service) CreateEscrow(ctx context.Context, p CreateParams) (*wallet.Receipt, error) {
	amount, err := domain.ToMist(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	desc, err := s.builder.CreateEscrow(p.JobID, p.Client, p.Freelancer, amount)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, desc, "job_id", p.JobID, "amount_mist", amount)
}

// LockFunds deposits amount MIST into the escrow.
func (s *Service) LockFunds(ctx context.Context, escrowID string, amount uint64) (*wallet.Receipt, error) {
	desc, err := s.builder.LockFunds(escrowID, amount)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, desc, "escrow", escrowID, "amount_mist", amount)
}

// ReleaseFunds pays the escrow out to the freelancer.
func (s *Service) ReleaseFunds(ctx context.Context, escrowID, freelancer string) (*wallet.Receipt, error) {
	desc, err := s.builder.ReleaseFunds(escrowID, freelancer)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, desc, "escrow", escrowID, "freelancer", freelancer)
}

// RaiseDispute flags the escrow as disputed.
func (s *Service) RaiseDispute(ctx context.Context, escrowID string) (*wallet.Receipt, error) {
	desc, err := s.builder.RaiseDispute(escrowID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, desc, "escrow", escrowID)
}

// DisputeRefund returns the escrowed funds to the client.
func (s *Service) DisputeRefund(ctx context.Context, escrowID, client string) (*wallet.Receipt, error) {
	desc, err := s.builder.DisputeRefund(escrowID, client)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, desc, "escrow", escrowID, "client", client)
}

// EscrowInfo reads the escrow object and its fields.
func (s *Service) EscrowInfo(ctx context.Context, escrowID string) (*Info, error) {
	id, err := address("escrow id", escrowID)
	if err != nil {
		return nil, err
	}
	obj, err := s.objects.Object(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get escrow %s: %w", id, err)
	}
	return &Info{
		ObjectID: obj.ObjectID,
		Type:     obj.Type,
		Version:  obj.Version,
		Shared:   obj.Owner == sui.OwnerShared,
		Fields:   obj.Fields,
	}, nil
}

func (s *Service) submit(ctx context.Context, desc *domain.TxDescriptor, attrs ...any) (*wallet.Receipt, error) {
	receipt, err := s.submitter.SignAndExecute(ctx, desc)
	if err != nil {
		return nil, err
	}
	s.log.Info("Escrow transaction executed",
		append([]any{"target", desc.Target, "digest", receipt.Digest}, attrs...)...)
	return receipt, nil
}
