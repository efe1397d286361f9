// Package identity maps emails to on-chain wallet addresses and guards the
// invariant that the session's signing key matches the ledger's bound
// address before any write is attempted.
package identity

import (
	"context"
	"strings"

	"blip/internal/gateway"
	"blip/internal/keyvault"
	"blip/internal/logger"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// AuthSurface is the slice of the contract gateway the binder needs.
type AuthSurface interface {
	Login(ctx context.Context, emailHash [32]byte, password string) (bool, error)
	WalletByEmailHash(ctx context.Context, emailHash [32]byte) (common.Address, error)
	Signup(ctx context.Context, email, password string) (*gateway.Receipt, error)
}

// Binder resolves and verifies email-to-wallet bindings.
type Binder struct {
	auth AuthSurface
}

// NewBinder creates a Binder over an auth surface.
func NewBinder(auth AuthSurface) *Binder {
	return &Binder{auth: auth}
}

// NormalizeEmail trims and lowercases an email. Every hash and every contract
// argument goes through this; normalization drift would make the account
// permanently unreachable since the hash is the only lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailHash computes keccak256 of the normalized email.
func EmailHash(email string) [32]byte {
	return crypto.Keccak256Hash([]byte(NormalizeEmail(email)))
}

// ResolveWallet looks up the wallet bound to an email. Returns
// model.ErrNotRegistered when the ledger answers with the zero address.
func (b *Binder) ResolveWallet(ctx context.Context, email string) (common.Address, error) {
	addr, err := b.auth.WalletByEmailHash(ctx, EmailHash(email))
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, model.ErrNotRegistered
	}
	return addr, nil
}

// VerifyBinding fails with model.ErrWalletMismatch when the identity's
// derived address disagrees with the expected on-chain address. Mandatory
// before every session-establishing flow; the sole safeguard against a stale
// or corrupted local key signing for the wrong account.
func VerifyBinding(id *keyvault.SigningIdentity, expected common.Address) error {
	if id == nil {
		return model.ErrKeyNotFound
	}
	if id.Address != expected {
		logger.Error("wallet mismatch detected",
			zap.String("derived", id.Address.Hex()),
			zap.String("expected", expected.Hex()))
		return model.ErrWalletMismatch
	}
	return nil
}

// CheckCredentials runs the ledger's black-box credential check.
func (b *Binder) CheckCredentials(ctx context.Context, email, password string) (bool, error) {
	return b.auth.Login(ctx, EmailHash(email), strings.TrimSpace(password))
}

// Signup submits the write binding the email's hash to the currently bound
// signer's address. The caller must have funded the signer and bound it to
// the gateway first.
func (b *Binder) Signup(ctx context.Context, email, password string) (*gateway.Receipt, error) {
	return b.auth.Signup(ctx, NormalizeEmail(email), strings.TrimSpace(password))
}
