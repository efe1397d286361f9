package keyvault

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"blip/internal/model"

	"github.com/ethereum/go-ethereum/crypto"
)

func keyHex(id *SigningIdentity) string {
	return hex.EncodeToString(crypto.FromECDSA(id.PrivateKey))
}

func tempVault(t *testing.T) *Vault {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "keystore.blip"))
}

func TestGenerateDistinct(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if a.Address == b.Address {
		t.Fatal("two generated identities share an address")
	}
}

func TestPersistReconstructRoundTrip(t *testing.T) {
	v := tempVault(t)
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}

	password := []byte("correct horse")
	if err := v.Persist(id, "user@example.com", password); err != nil {
		t.Fatal(err)
	}

	got, email, err := v.Reconstruct(password)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != id.Address {
		t.Fatalf("reconstructed address %s, want %s", got.Address.Hex(), id.Address.Hex())
	}
	if email != "user@example.com" {
		t.Fatalf("reconstructed email %q", email)
	}

	addr, err := v.Address()
	if err != nil {
		t.Fatal(err)
	}
	if addr != id.Address {
		t.Fatalf("header address %s, want %s", addr.Hex(), id.Address.Hex())
	}
}

func TestReconstructWrongPassword(t *testing.T) {
	v := tempVault(t)
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Persist(id, "user@example.com", []byte("right")); err != nil {
		t.Fatal(err)
	}

	if _, _, err := v.Reconstruct([]byte("wrong")); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestReconstructNoKey(t *testing.T) {
	v := tempVault(t)
	_, _, err := v.Reconstruct([]byte("any"))
	if !errors.Is(err, model.ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	v := tempVault(t)
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Persist(id, "user@example.com", []byte("secret")); err != nil {
		t.Fatal(err)
	}

	ok, err := v.VerifyPassword([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	if _, err := v.VerifyPassword([]byte("nope")); err == nil {
		t.Fatal("wrong password should fail to decrypt")
	}
}

func TestClear(t *testing.T) {
	v := tempVault(t)
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Persist(id, "user@example.com", []byte("pw")); err != nil {
		t.Fatal(err)
	}
	if !v.HasKey() {
		t.Fatal("HasKey false after persist")
	}

	if err := v.Clear(); err != nil {
		t.Fatal(err)
	}
	if v.HasKey() {
		t.Fatal("HasKey true after clear")
	}
	// Clearing an already-empty vault is a no-op, not an error.
	if err := v.Clear(); err != nil {
		t.Fatal(err)
	}
}

func TestPersistOverwrites(t *testing.T) {
	v := tempVault(t)
	first, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	password := []byte("pw")

	if err := v.Persist(first, "a@example.com", password); err != nil {
		t.Fatal(err)
	}
	if err := v.Persist(second, "b@example.com", password); err != nil {
		t.Fatal(err)
	}

	got, email, err := v.Reconstruct(password)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != second.Address || email != "b@example.com" {
		t.Fatalf("overwrite did not take: %s %s", got.Address.Hex(), email)
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	v := New(filepath.Join(dir, "keystore.blip"))
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Persist(id, "user@example.com", []byte("pw")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the keystore file, found %d entries", len(entries))
	}
}

func TestFromHex(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	// Round-trip through hex with and without the 0x prefix.
	hexKey := "0x" + keyHex(id)
	for _, in := range []string{hexKey, hexKey[2:], "  " + hexKey + "  "} {
		got, err := FromHex(in)
		if err != nil {
			t.Fatalf("FromHex(%q): %v", in, err)
		}
		if got.Address != id.Address {
			t.Fatalf("FromHex(%q) address mismatch", in)
		}
	}

	if _, err := FromHex("zz"); err == nil {
		t.Fatal("expected error for garbage key")
	}
}

func TestSignVerify(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("bind this session")

	sig, err := id.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length %d, want 65", len(sig))
	}
	if !Verify(id.Address, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(id.Address, []byte("other message"), sig) {
		t.Fatal("signature accepted for wrong message")
	}

	other, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if Verify(other.Address, msg, sig) {
		t.Fatal("signature accepted for wrong address")
	}
	if Verify(id.Address, msg, sig[:64]) {
		t.Fatal("truncated signature accepted")
	}
}
