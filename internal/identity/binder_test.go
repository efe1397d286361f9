package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"blip/internal/gateway"
	"blip/internal/keyvault"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

type fakeAuth struct {
	wallet    common.Address
	loginOK   bool
	loginErr  error
	lastHash  [32]byte
	lastEmail string
}

func (f *fakeAuth) Login(ctx context.Context, emailHash [32]byte, password string) (bool, error) {
	f.lastHash = emailHash
	return f.loginOK, f.loginErr
}

func (f *fakeAuth) WalletByEmailHash(ctx context.Context, emailHash [32]byte) (common.Address, error) {
	f.lastHash = emailHash
	return f.wallet, nil
}

func (f *fakeAuth) Signup(ctx context.Context, email, password string) (*gateway.Receipt, error) {
	f.lastEmail = email
	return &gateway.Receipt{BlockNumber: 1}, nil
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"\tUSER@EXAMPLE.COM\n", "user@example.com"},
		{"user@example.com", "user@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmailHashVector(t *testing.T) {
	want := "cfb15ca7270395d72219fd758f75a0c95e3f0a61d959222402f24051d08e9b32"
	for _, in := range []string{"user@example.com", "  USER@example.com "} {
		got := EmailHash(in)
		if hex.EncodeToString(got[:]) != want {
			t.Errorf("EmailHash(%q) = %x, want %s", in, got, want)
		}
	}
}

func TestResolveWallet(t *testing.T) {
	bound := common.HexToAddress("0x1111111111111111111111111111111111111111")
	b := NewBinder(&fakeAuth{wallet: bound})

	got, err := b.ResolveWallet(context.Background(), "user@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got != bound {
		t.Fatalf("resolved %s, want %s", got.Hex(), bound.Hex())
	}
}

func TestResolveWalletNotRegistered(t *testing.T) {
	b := NewBinder(&fakeAuth{}) // zero address answer
	_, err := b.ResolveWallet(context.Background(), "ghost@example.com")
	if !errors.Is(err, model.ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
}

func TestVerifyBinding(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}

	if err := VerifyBinding(id, id.Address); err != nil {
		t.Fatalf("matching binding rejected: %v", err)
	}

	other := common.HexToAddress("0x2222222222222222222222222222222222222222")
	if err := VerifyBinding(id, other); !errors.Is(err, model.ErrWalletMismatch) {
		t.Fatalf("got %v, want ErrWalletMismatch", err)
	}

	if err := VerifyBinding(nil, other); !errors.Is(err, model.ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
}

func TestCheckCredentialsHashesEmail(t *testing.T) {
	auth := &fakeAuth{loginOK: true}
	b := NewBinder(auth)

	ok, err := b.CheckCredentials(context.Background(), "  User@Example.com ", "pw")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if auth.lastHash != EmailHash("user@example.com") {
		t.Fatal("credential check did not normalize before hashing")
	}
}

func TestSignupNormalizesEmail(t *testing.T) {
	auth := &fakeAuth{}
	b := NewBinder(auth)

	if _, err := b.Signup(context.Background(), " USER@Example.com ", "pw"); err != nil {
		t.Fatal(err)
	}
	if auth.lastEmail != "user@example.com" {
		t.Fatalf("signup sent email %q", auth.lastEmail)
	}
}
