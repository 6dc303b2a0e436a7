package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/vietddude/suiwork/internal/core/domain"
)

// Default gas budget in MIST when none is configured.
const DefaultGasBudget uint64 = 50_000_000

// Sui caps the number of gas payment coins.
const maxGasPayment = 256

var ErrInsufficientGas = errors.New("insufficient gas coins")

// ChainReader is the subset of Client needed to resolve a descriptor.
type ChainReader interface {
	Object(ctx context.Context, id string) (*ObjectInfo, error)
	Coins(ctx context.Context, owner, coinType, cursor string) (*CoinPage, error)
	ReferenceGasPrice(ctx context.Context) (uint64, error)
}

// GasConfig controls gas selection. Zero values are resolved over RPC or
// defaulted.
type GasConfig struct {
	Budget uint64
	Price  uint64
}

// BuildTransactionData resolves the descriptor's objects and gas payment and
// returns BCS-encoded TransactionData ready for signing.
func BuildTransactionData(ctx context.Context, chain ChainReader, desc *domain.TxDescriptor, sender string, gas GasConfig) ([]byte, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	senderBytes, err := domain.AddressBytes(sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}

	objects := make(map[string]*ObjectInfo)
	for _, in := range desc.Inputs {
		if in.Kind != domain.InputObject {
			continue
		}
		id, err := domain.NormalizeAddress(in.ObjectID)
		if err != nil {
			return nil, err
		}
		if _, ok := objects[id]; ok {
			continue
		}
		obj, err := chain.Object(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve object %s: %w", id, err)
		}
		objects[id] = obj
	}

	if gas.Budget == 0 {
		gas.Budget = DefaultGasBudget
	}
	if gas.Price == 0 {
		if gas.Price, err = chain.ReferenceGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("reference gas price: %w", err)
		}
	}

	need, err := gasCoinDemand(desc)
	if err != nil {
		return nil, err
	}
	if need > math.MaxUint64-gas.Budget {
		return nil, fmt.Errorf("%w: amount overflows", domain.ErrInvalidAmount)
	}
	payment, err := selectGas(ctx, chain, sender, need+gas.Budget, objects)
	if err != nil {
		return nil, err
	}

	var e Encoder
	e.Variant(0) // TransactionData::V1
	e.Variant(0) // TransactionKind::ProgrammableTransaction

	e.ULEB128(uint64(len(desc.Inputs)))
	for i, in := range desc.Inputs {
		if err := encodeCallArg(&e, in, objects); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}
	e.ULEB128(uint64(len(desc.Commands)))
	for i, c := range desc.Commands {
		if err := encodeCommand(&e, c); err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
	}

	e.Fixed(senderBytes[:])

	// GasData
	e.ULEB128(uint64(len(payment)))
	for _, c := range payment {
		if err := encodeObjectRef(&e, c.ObjectID, c.Version, c.Digest); err != nil {
			return nil, err
		}
	}
	e.Fixed(senderBytes[:])
	e.U64(gas.Price)
	e.U64(gas.Budget)

	e.Variant(0) // TransactionExpiration::None
	return e.Bytes(), nil
}

// gasCoinDemand sums the pure amounts split off the gas coin.
func gasCoinDemand(desc *domain.TxDescriptor) (uint64, error) {
	var total uint64
	for _, c := range desc.Commands {
		if c.Kind != domain.CommandSplitCoins || c.Coin == nil || c.Coin.Kind != domain.ArgGasCoin {
			continue
		}
		for _, a := range c.Amounts {
			if a.Kind != domain.ArgInput {
				continue
			}
			v, err := toUint64(desc.Inputs[a.Index].Value)
			if err != nil {
				return 0, err
			}
			if v > math.MaxUint64-total {
				return 0, fmt.Errorf("%w: amount overflows", domain.ErrInvalidAmount)
			}
			total += v
		}
	}
	return total, nil
}

func selectGas(ctx context.Context, chain ChainReader, owner string, need uint64, exclude map[string]*ObjectInfo) ([]Coin, error) {
	var (
		picked []Coin
		sum    uint64
		cursor string
	)
	for {
		page, err := chain.Coins(ctx, owner, SUICoinType, cursor)
		if err != nil {
			return nil, fmt.Errorf("list gas coins: %w", err)
		}
		for _, c := range page.Coins {
			if id, err := domain.NormalizeAddress(c.ObjectID); err == nil {
				if _, used := exclude[id]; used {
					continue
				}
			}
			picked = append(picked, c)
			sum += c.Balance
			if sum >= need {
				return picked, nil
			}
			if len(picked) == maxGasPayment {
				return nil, fmt.Errorf("%w: need %d MIST within %d coins", ErrInsufficientGas, need, maxGasPayment)
			}
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return nil, fmt.Errorf("%w: need %d MIST, have %d", ErrInsufficientGas, need, sum)
}

func encodeCallArg(e *Encoder, in domain.Input, objects map[string]*ObjectInfo) error {
	switch in.Kind {
	case domain.InputPure:
		pure, err := encodePure(in.Type, in.Value)
		if err != nil {
			return err
		}
		e.Variant(0) // CallArg::Pure
		e.Vec(pure)
		return nil

	case domain.InputObject:
		id, _ := domain.NormalizeAddress(in.ObjectID)
		obj := objects[id]
		e.Variant(1) // CallArg::Object
		switch obj.Owner {
		case OwnerShared:
			idBytes, err := domain.AddressBytes(id)
			if err != nil {
				return err
			}
			e.Variant(1) // ObjectArg::SharedObject
			e.Fixed(idBytes[:])
			e.U64(obj.InitialSharedVersion)
			e.Bool(true)
			return nil
		case OwnerAddress, OwnerImmutable:
			e.Variant(0) // ObjectArg::ImmOrOwnedObject
			return encodeObjectRef(e, id, obj.Version, obj.Digest)
		default:
			return fmt.Errorf("object %s owned by %s cannot be used as input", id, obj.Owner)
		}

	default:
		return fmt.Errorf("%w: unknown input kind %q", domain.ErrInvalidDescriptor, in.Kind)
	}
}

func encodePure(t domain.PureType, v any) ([]byte, error) {
	var e Encoder
	switch t {
	case domain.PureU64:
		n, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		e.U64(n)
	case domain.PureAddress:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: address input is %T", domain.ErrInvalidDescriptor, v)
		}
		b, err := domain.AddressBytes(s)
		if err != nil {
			return nil, err
		}
		e.Fixed(b[:])
	case domain.PureBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: bool input is %T", domain.ErrInvalidDescriptor, v)
		}
		e.Bool(b)
	case domain.PureString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: string input is %T", domain.ErrInvalidDescriptor, v)
		}
		e.String(s)
	default:
		return nil, fmt.Errorf("%w: unsupported pure type %q", domain.ErrInvalidDescriptor, t)
	}
	return e.Bytes(), nil
}

// toUint64 also accepts the float64 and json.Number forms a descriptor takes
// after a JSON round trip.
func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int:
		if n >= 0 {
			return uint64(n), nil
		}
	case int64:
		if n >= 0 {
			return uint64(n), nil
		}
	case float64:
		if n >= 0 && n < math.MaxUint64 && n == math.Trunc(n) {
			return uint64(n), nil
		}
	case json.Number:
		var u uint64
		if _, err := fmt.Sscan(n.String(), &u); err == nil {
			return u, nil
		}
	}
	return 0, fmt.Errorf("%w: %v is not a u64", domain.ErrInvalidDescriptor, v)
}

func encodeObjectRef(e *Encoder, id string, version uint64, digest string) error {
	idBytes, err := domain.AddressBytes(id)
	if err != nil {
		return err
	}
	d, err := base58.Decode(digest)
	if err != nil || len(d) != 32 {
		return fmt.Errorf("%w: bad digest %q for %s", ErrMalformed, digest, id)
	}
	e.Fixed(idBytes[:])
	e.U64(version)
	e.Vec(d)
	return nil
}

func encodeCommand(e *Encoder, c domain.Command) error {
	switch c.Kind {
	case domain.CommandMoveCall:
		pkg, module, function, err := domain.ParseTarget(c.Target)
		if err != nil {
			return err
		}
		pkgBytes, _ := domain.AddressBytes(pkg)
		e.Variant(0) // Command::MoveCall
		e.Fixed(pkgBytes[:])
		e.String(module)
		e.String(function)
		e.ULEB128(0) // type arguments
		encodeArgs(e, c.Arguments)
	case domain.CommandTransferObjects:
		e.Variant(1)
		encodeArgs(e, c.Objects)
		encodeArg(e, *c.Recipient)
	case domain.CommandSplitCoins:
		e.Variant(2)
		encodeArg(e, *c.Coin)
		encodeArgs(e, c.Amounts)
	default:
		return fmt.Errorf("%w: unknown command %q", domain.ErrInvalidDescriptor, c.Kind)
	}
	return nil
}

func encodeArgs(e *Encoder, args []domain.Argument) {
	e.ULEB128(uint64(len(args)))
	for _, a := range args {
		encodeArg(e, a)
	}
}

func encodeArg(e *Encoder, a domain.Argument) {
	switch a.Kind {
	case domain.ArgGasCoin:
		e.Variant(0)
	case domain.ArgInput:
		e.Variant(1)
		e.U16(a.Index)
	case domain.ArgResult:
		e.Variant(2)
		e.U16(a.Index)
	case domain.ArgNestedResult:
		e.Variant(3)
		e.U16(a.Index)
		e.U16(a.ResultIndex)
	}
}

// DescribeTarget renders a move call target for logs.
func DescribeTarget(desc *domain.TxDescriptor) string {
	if desc.Target != "" {
		return desc.Target
	}
	parts := make([]string, 0, len(desc.Commands))
	for _, c := range desc.Commands {
		parts = append(parts, string(c.Kind))
	}
	return strings.Join(parts, "+")
}
