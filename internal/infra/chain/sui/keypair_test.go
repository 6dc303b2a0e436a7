package sui

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func testSeed() []byte {
	return bytes.Repeat([]byte{0x01}, 32)
}

func TestParsePrivateKey_Formats(t *testing.T) {
	seed := testSeed()
	want, err := NewKeypairFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	inputs := map[string]string{
		"hex":        "0x" + hex.EncodeToString(seed),
		"bare hex":   hex.EncodeToString(seed),
		"keystore":   base64.StdEncoding.EncodeToString(append([]byte{0x00}, seed...)),
		"raw base64": base64.StdEncoding.EncodeToString(seed),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			kp, err := ParsePrivateKey(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kp.Address() != want.Address() {
				t.Errorf("address mismatch: %s vs %s", kp.Address(), want.Address())
			}
		})
	}
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a key!", base64.StdEncoding.EncodeToString([]byte{1, 2, 3})} {
		if _, err := ParsePrivateKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParsePrivateKey(%q) err = %v, want ErrInvalidKey", in, err)
		}
	}
}

func TestKeypair_Address(t *testing.T) {
	kp, _ := NewKeypairFromSeed(testSeed())
	h := blake2b.Sum256(append([]byte{0x00}, kp.PublicKey()...))

	addr := kp.Address()
	if addr != "0x"+hex.EncodeToString(h[:]) {
		t.Errorf("unexpected address %s", addr)
	}
	if len(addr) != 66 || !strings.HasPrefix(addr, "0x") {
		t.Errorf("address should be 32 bytes hex, got %s", addr)
	}
}

func TestKeypair_SignTransaction(t *testing.T) {
	kp, _ := NewKeypairFromSeed(testSeed())
	tx := []byte{0, 1, 2, 3}

	sig := kp.SignTransaction(tx)
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 97 || raw[0] != 0x00 {
		t.Fatalf("serialized signature should be flag||sig||pubkey, got %d bytes", len(raw))
	}
	if !bytes.Equal(raw[65:], kp.PublicKey()) {
		t.Error("signature should carry the public key")
	}

	ok, err := VerifyTransactionSignature(tx, sig)
	if err != nil || !ok {
		t.Errorf("signature should verify: ok=%v err=%v", ok, err)
	}
	ok, _ = VerifyTransactionSignature([]byte{9}, sig)
	if ok {
		t.Error("signature must not verify for different bytes")
	}
}

func TestKeypair_SignPersonalMessageUsesDistinctIntent(t *testing.T) {
	kp, _ := NewKeypairFromSeed(testSeed())
	msg := []byte("hello")

	personal := kp.SignPersonalMessage(msg)
	if personal == kp.SignTransaction(msg) {
		t.Error("personal message and transaction signatures must differ")
	}
	if ok, _ := VerifyTransactionSignature(msg, personal); ok {
		t.Error("personal message signature must not verify as a transaction")
	}
}
