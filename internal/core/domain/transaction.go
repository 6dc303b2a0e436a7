package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptor is returned when a descriptor references missing
// inputs or results.
var ErrInvalidDescriptor = errors.New("invalid transaction descriptor")

// TxKind distinguishes plain transfers from contract calls.
type TxKind string

const (
	TxKindTransfer     TxKind = "transfer"
	TxKindContractCall TxKind = "contract_call"
)

// PureType is the Move type of a pure input.
type PureType string

const (
	PureU64     PureType = "u64"
	PureAddress PureType = "address"
	PureBool    PureType = "bool"
	PureString  PureType = "string"
)

type InputKind string

const (
	InputPure   InputKind = "pure"
	InputObject InputKind = "object"
)

// Input is a transaction input: either a typed pure value or an object id.
type Input struct {
	Kind     InputKind `json:"kind"`
	Type     PureType  `json:"type,omitempty"`
	Value    any       `json:"value,omitempty"`
	ObjectID string    `json:"objectId,omitempty"`
}

type ArgKind string

const (
	ArgGasCoin      ArgKind = "gas"
	ArgInput        ArgKind = "input"
	ArgResult       ArgKind = "result"
	ArgNestedResult ArgKind = "nested_result"
)

// Argument references the gas coin, an input, or an earlier command's result.
type Argument struct {
	Kind        ArgKind `json:"kind"`
	Index       uint16  `json:"index,omitempty"`
	ResultIndex uint16  `json:"resultIndex,omitempty"`
}

func GasCoin() Argument             { return Argument{Kind: ArgGasCoin} }
func InputArg(i uint16) Argument    { return Argument{Kind: ArgInput, Index: i} }
func ResultArg(cmd uint16) Argument { return Argument{Kind: ArgResult, Index: cmd} }
func NestedResultArg(cmd, i uint16) Argument {
	return Argument{Kind: ArgNestedResult, Index: cmd, ResultIndex: i}
}

type CommandKind string

const (
	CommandMoveCall        CommandKind = "move_call"
	CommandSplitCoins      CommandKind = "split_coins"
	CommandTransferObjects CommandKind = "transfer_objects"
)

// Command is one step of a descriptor. Only the fields for Kind are set.
type Command struct {
	Kind CommandKind `json:"kind"`

	// MoveCall
	Target    string     `json:"target,omitempty"`
	Arguments []Argument `json:"arguments,omitempty"`

	// SplitCoins
	Coin    *Argument  `json:"coin,omitempty"`
	Amounts []Argument `json:"amounts,omitempty"`

	// TransferObjects
	Objects   []Argument `json:"objects,omitempty"`
	Recipient *Argument  `json:"recipient,omitempty"`
}

// TxDescriptor is an assembled, not yet submitted transaction. Results of
// earlier commands can feed later ones, so a coin returned by a move call is
// transferred in the same descriptor.
type TxDescriptor struct {
	Kind     TxKind    `json:"kind"`
	Target   string    `json:"target,omitempty"`
	Inputs   []Input   `json:"inputs"`
	Commands []Command `json:"commands"`
}

// Arguments returns the ordered arguments of the descriptor's target call.
func (d *TxDescriptor) Arguments() []Argument {
	for _, c := range d.Commands {
		if c.Kind == CommandMoveCall && c.Target == d.Target {
			return c.Arguments
		}
	}
	return nil
}

// MovesValue reports whether the descriptor splits or transfers coins.
func (d *TxDescriptor) MovesValue() bool {
	for _, c := range d.Commands {
		if c.Kind == CommandSplitCoins || c.Kind == CommandTransferObjects {
			return true
		}
	}
	return false
}

// Validate checks that every argument points at an existing input or at an
// earlier command.
func (d *TxDescriptor) Validate() error {
	if d == nil || len(d.Commands) == 0 {
		return fmt.Errorf("%w: no commands", ErrInvalidDescriptor)
	}
	for i, c := range d.Commands {
		var args []Argument
		switch c.Kind {
		case CommandMoveCall:
			if _, _, _, err := ParseTarget(c.Target); err != nil {
				return err
			}
			args = c.Arguments
		case CommandSplitCoins:
			if c.Coin == nil || len(c.Amounts) == 0 {
				return fmt.Errorf("%w: command %d: split needs coin and amounts", ErrInvalidDescriptor, i)
			}
			args = append([]Argument{*c.Coin}, c.Amounts...)
		case CommandTransferObjects:
			if c.Recipient == nil || len(c.Objects) == 0 {
				return fmt.Errorf("%w: command %d: transfer needs objects and recipient", ErrInvalidDescriptor, i)
			}
			args = append([]Argument{*c.Recipient}, c.Objects...)
		default:
			return fmt.Errorf("%w: command %d: unknown kind %q", ErrInvalidDescriptor, i, c.Kind)
		}
		for _, a := range args {
			switch a.Kind {
			case ArgGasCoin:
			case ArgInput:
				if int(a.Index) >= len(d.Inputs) {
					return fmt.Errorf("%w: command %d: input %d out of range", ErrInvalidDescriptor, i, a.Index)
				}
			case ArgResult, ArgNestedResult:
				if int(a.Index) >= i {
					return fmt.Errorf("%w: command %d: result %d is not an earlier command", ErrInvalidDescriptor, i, a.Index)
				}
			default:
				return fmt.Errorf("%w: command %d: unknown argument kind %q", ErrInvalidDescriptor, i, a.Kind)
			}
		}
	}
	return nil
}

// ParseTarget splits "pkg::module::function".
func ParseTarget(target string) (pkg, module, function string, err error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("%w: bad target %q", ErrInvalidDescriptor, target)
	}
	pkg, err = NormalizeAddress(parts[0])
	if err != nil {
		return "", "", "", fmt.Errorf("%w: bad target package: %v", ErrInvalidDescriptor, err)
	}
	return pkg, parts[1], parts[2], nil
}

// TxBuilder accumulates inputs and commands.
type TxBuilder struct {
	inputs   []Input
	commands []Command
}

func NewTxBuilder() *TxBuilder { return &TxBuilder{} }

// Pure adds a typed pure input.
func (b *TxBuilder) Pure(t PureType, v any) Argument {
	b.inputs = append(b.inputs, Input{Kind: InputPure, Type: t, Value: v})
	return InputArg(uint16(len(b.inputs) - 1))
}

// Object adds an object input by id.
func (b *TxBuilder) Object(id string) Argument {
	b.inputs = append(b.inputs, Input{Kind: InputObject, ObjectID: id})
	return InputArg(uint16(len(b.inputs) - 1))
}

// MoveCall appends a call and returns a reference to its (single) result.
func (b *TxBuilder) MoveCall(target string, args ...Argument) Argument {
	b.commands = append(b.commands, Command{Kind: CommandMoveCall, Target: target, Arguments: args})
	return ResultArg(uint16(len(b.commands) - 1))
}

// SplitCoins splits amounts off coin and returns one argument per new coin.
func (b *TxBuilder) SplitCoins(coin Argument, amounts ...Argument) []Argument {
	b.commands = append(b.commands, Command{Kind: CommandSplitCoins, Coin: &coin, Amounts: amounts})
	idx := uint16(len(b.commands) - 1)
	out := make([]Argument, len(amounts))
	for i := range amounts {
		out[i] = NestedResultArg(idx, uint16(i))
	}
	return out
}

// TransferObjects sends objects to recipient.
func (b *TxBuilder) TransferObjects(objects []Argument, recipient Argument) {
	b.commands = append(b.commands, Command{Kind: CommandTransferObjects, Objects: objects, Recipient: &recipient})
}

// Build finalizes the descriptor.
func (b *TxBuilder) Build(kind TxKind, target string) *TxDescriptor {
	return &TxDescriptor{Kind: kind, Target: target, Inputs: b.inputs, Commands: b.commands}
}

// NewTransfer builds a descriptor sending amount MIST from the gas coin to
// recipient.
func NewTransfer(recipient string, amount uint64) (*TxDescriptor, error) {
	to, err := NormalizeAddress(recipient)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidAmount)
	}
	b := NewTxBuilder()
	coins := b.SplitCoins(GasCoin(), b.Pure(PureU64, amount))
	b.TransferObjects(coins, b.Pure(PureAddress, to))
	return b.Build(TxKindTransfer, ""), nil
}

// NewContractCall builds a single move call. String arguments starting with
// 0x are treated as object ids, everything else as pure values.
func NewContractCall(target string, args ...any) (*TxDescriptor, error) {
	if _, _, _, err := ParseTarget(target); err != nil {
		return nil, err
	}
	b := NewTxBuilder()
	callArgs := make([]Argument, 0, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			if strings.HasPrefix(v, "0x") {
				id, err := NormalizeAddress(v)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i, err)
				}
				callArgs = append(callArgs, b.Object(id))
			} else {
				callArgs = append(callArgs, b.Pure(PureString, v))
			}
		case uint64:
			callArgs = append(callArgs, b.Pure(PureU64, v))
		case int:
			if v < 0 {
				return nil, fmt.Errorf("%w: argument %d is negative", ErrInvalidDescriptor, i)
			}
			callArgs = append(callArgs, b.Pure(PureU64, uint64(v)))
		case bool:
			callArgs = append(callArgs, b.Pure(PureBool, v))
		default:
			return nil, fmt.Errorf("%w: argument %d has unsupported type %T", ErrInvalidDescriptor, i, a)
		}
	}
	b.MoveCall(target, callArgs...)
	return b.Build(TxKindContractCall, target), nil
}
