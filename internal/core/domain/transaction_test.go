package domain

import (
	"errors"
	"strings"
	"testing"
)

const testPkg = "0xabc"

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0x2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 66 || !strings.HasSuffix(got, "02") {
		t.Errorf("NormalizeAddress(0x2) = %s", got)
	}

	for _, bad := range []string{"", "2", "0x", "0xzz", "0x" + strings.Repeat("1", 65)} {
		if _, err := NormalizeAddress(bad); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("NormalizeAddress(%q) error = %v, want ErrInvalidAddress", bad, err)
		}
	}
}

func TestNewTransfer(t *testing.T) {
	d, err := NewTransfer("0x1", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Kind != TxKindTransfer {
		t.Errorf("expected transfer kind, got %s", d.Kind)
	}
	if len(d.Commands) != 2 {
		t.Fatalf("expected split + transfer, got %d commands", len(d.Commands))
	}
	if d.Commands[0].Kind != CommandSplitCoins || d.Commands[0].Coin.Kind != ArgGasCoin {
		t.Errorf("first command should split the gas coin: %+v", d.Commands[0])
	}
	transfer := d.Commands[1]
	if transfer.Objects[0] != NestedResultArg(0, 0) {
		t.Errorf("transfer should move the split coin, got %+v", transfer.Objects[0])
	}
	if !d.MovesValue() {
		t.Error("transfer should move value")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if _, err := NewTransfer("0x1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v", err)
	}
}

func TestNewContractCall_ArgumentKinds(t *testing.T) {
	target := testPkg + "::escrow::raise_dispute"
	d, err := NewContractCall(target, "0x5", uint64(7), "memo", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := []InputKind{InputObject, InputPure, InputPure, InputPure}
	if len(d.Inputs) != len(wantKinds) {
		t.Fatalf("expected %d inputs, got %d", len(wantKinds), len(d.Inputs))
	}
	for i, k := range wantKinds {
		if d.Inputs[i].Kind != k {
			t.Errorf("input %d kind = %s, want %s", i, d.Inputs[i].Kind, k)
		}
	}
	if len(d.Arguments()) != 4 {
		t.Errorf("expected 4 call arguments, got %d", len(d.Arguments()))
	}
	if d.MovesValue() {
		t.Error("plain call should not move value")
	}

	if _, err := NewContractCall("not-a-target"); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("bad target error = %v", err)
	}
	if _, err := NewContractCall(target, 1.5); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("float argument error = %v", err)
	}
}

func TestValidate_RejectsForwardResult(t *testing.T) {
	b := NewTxBuilder()
	recipient := b.Pure(PureAddress, "0x1")
	b.TransferObjects([]Argument{ResultArg(1)}, recipient)
	b.MoveCall(testPkg + "::escrow::release_funds")
	d := b.Build(TxKindContractCall, testPkg+"::escrow::release_funds")

	if err := d.Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestValidate_RejectsMissingInput(t *testing.T) {
	d := &TxDescriptor{
		Kind:     TxKindContractCall,
		Target:   testPkg + "::escrow::raise_dispute",
		Commands: []Command{{Kind: CommandMoveCall, Target: testPkg + "::escrow::raise_dispute", Arguments: []Argument{InputArg(0)}}},
	}
	if err := d.Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}
