// Package session owns the process-wide "current signer" state: one logical
// user bound at a time, established at login or signup, revalidated at
// defined re-entry points, and dropped at logout. Rebinding is a critical
// section: session-changing calls take the write lock, while every social
// operation runs under the read lock, so no write can be in flight with an
// identity that has since been replaced or cleared.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"blip/internal/gateway"
	"blip/internal/identity"
	"blip/internal/keyvault"
	"blip/internal/logger"
	"blip/internal/model"
	"blip/internal/social"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Chain is everything the session layer needs from the contract gateway.
// *gateway.Gateway satisfies it.
type Chain interface {
	social.ProfileSurface
	social.PostSurface
	identity.AuthSurface
	Rebind(signer *keyvault.SigningIdentity)
	Fund(ctx context.Context, funder *keyvault.SigningIdentity, to common.Address, amountWei *big.Int) (*gateway.Receipt, error)
}

// Session is the explicit per-login context handed to every operation.
type Session struct {
	Email    string
	Identity *keyvault.SigningIdentity
	Social   *social.Client
}

// Address returns the session identity's derived address.
func (s *Session) Address() common.Address {
	return s.Identity.Address
}

// Options configures a Manager.
type Options struct {
	Vault      *keyvault.Vault
	Chain      Chain
	Password   func() ([]byte, error) // keystore password source
	FunderHex  string
	FundingWei *big.Int
}

// Manager guards the single active session.
type Manager struct {
	mu         sync.RWMutex
	vault      *keyvault.Vault
	chain      Chain
	binder     *identity.Binder
	password   func() ([]byte, error)
	funderHex  string
	fundingWei *big.Int
	current    *Session
}

// NewManager creates a session manager. No session is active until Login,
// Signup, or Resume succeeds.
func NewManager(opts Options) *Manager {
	return &Manager{
		vault:      opts.Vault,
		chain:      opts.Chain,
		binder:     identity.NewBinder(opts.Chain),
		password:   opts.Password,
		funderHex:  opts.FunderHex,
		fundingWei: opts.FundingWei,
	}
}

// WithSession runs fn under the read lock with the active session. Social
// operations go through here so a concurrent rebind cannot swap the identity
// out from under an in-flight write.
func (m *Manager) WithSession(fn func(*Session) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return model.ErrNoSession
	}
	return fn(m.current)
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Login establishes a session: ledger credential check, wallet resolution,
// key reconstruction (or import), and the mandatory binding verification.
// A wallet mismatch clears the stored key and fails the login.
func (m *Manager) Login(ctx context.Context, email, password, privateKeyHex string) (*Session, error) {
	email = identity.NormalizeEmail(email)

	ok, err := m.binder.CheckCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}

	bound, err := m.binder.ResolveWallet(ctx, email)
	if err != nil {
		return nil, err
	}

	ksPassword, err := m.password()
	if err != nil {
		return nil, err
	}
	defer clear(ksPassword)

	var id *keyvault.SigningIdentity
	imported := false
	if strings.TrimSpace(privateKeyHex) != "" {
		id, err = keyvault.FromHex(privateKeyHex)
		if err != nil {
			return nil, &model.ValidationError{Field: "privateKeyHex", Message: err.Error()}
		}
		imported = true
	} else {
		var storedEmail string
		id, storedEmail, err = m.vault.Reconstruct(ksPassword)
		if err != nil {
			return nil, err
		}
		if storedEmail != "" && storedEmail != email {
			// The stored key belongs to a different account; treat exactly
			// like a swapped key.
			logger.Warn("stored key belongs to another account",
				zap.String("stored", storedEmail), zap.String("login", email))
		}
	}

	if err := identity.VerifyBinding(id, bound); err != nil {
		// The local key cannot sign for this account. Never ignored: scrub
		// it so the next login must import the right key.
		if clearErr := m.vault.Clear(); clearErr != nil {
			logger.Error("failed to clear mismatched key", zap.Error(clearErr))
		}
		return nil, err
	}

	if imported {
		if err := m.vault.Persist(id, email, ksPassword); err != nil {
			return nil, err
		}
	}

	return m.establish(email, id), nil
}

// Signup creates a fresh identity, funds it so it can pay transaction fees,
// binds it on chain to the email, persists it, and establishes the session.
// Funding must confirm before the signup transaction is attempted.
func (m *Manager) Signup(ctx context.Context, email, password string) (*Session, *gateway.Receipt, error) {
	email = identity.NormalizeEmail(email)

	// Precheck saves a doomed transaction; the contract enforces uniqueness
	// regardless.
	if _, err := m.binder.ResolveWallet(ctx, email); err == nil {
		return nil, nil, &model.ValidationError{Field: "email", Message: "email is already registered"}
	} else if !errors.Is(err, model.ErrNotRegistered) {
		return nil, nil, err
	}

	id, err := keyvault.Generate()
	if err != nil {
		return nil, nil, err
	}

	if m.funderHex == "" {
		return nil, nil, fmt.Errorf("no funder configured: cannot fund a fresh identity")
	}
	funder, err := keyvault.FromHex(m.funderHex)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid funder key: %w", err)
	}
	if _, err := m.chain.Fund(ctx, funder, id.Address, m.fundingWei); err != nil {
		return nil, nil, fmt.Errorf("failed to fund new identity: %w", err)
	}

	m.mu.Lock()
	m.chain.Rebind(id)
	m.mu.Unlock()

	receipt, err := m.binder.Signup(ctx, email, password)
	if err != nil {
		m.unbind()
		return nil, nil, err
	}

	// The binding is immutable once created; confirm the ledger recorded
	// the address we signed with. Every failure from here until the session
	// is established must drop the signer again, or the fresh key stays
	// bound with no session owning it.
	bound, err := m.binder.ResolveWallet(ctx, email)
	if err != nil {
		m.unbind()
		return nil, nil, err
	}
	if err := identity.VerifyBinding(id, bound); err != nil {
		m.unbind()
		return nil, nil, err
	}

	ksPassword, err := m.password()
	if err != nil {
		m.unbind()
		return nil, nil, err
	}
	defer clear(ksPassword)
	if err := m.vault.Persist(id, email, ksPassword); err != nil {
		m.unbind()
		return nil, nil, err
	}

	return m.establish(email, id), receipt, nil
}

// unbind drops the chain signer without touching keystore or session state.
func (m *Manager) unbind() {
	m.mu.Lock()
	m.chain.Rebind(nil)
	m.mu.Unlock()
}

// Resume re-establishes or revalidates the session at a re-entry point (app
// foreground, daemon restart). With no live session it reconstructs from the
// keystore; with one it re-checks the binding against the ledger. Any
// mismatch tears the session down.
func (m *Manager) Resume(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current != nil {
		bound, err := m.binder.ResolveWallet(ctx, current.Email)
		if err != nil {
			return nil, err
		}
		if err := identity.VerifyBinding(current.Identity, bound); err != nil {
			m.Logout()
			return nil, err
		}
		return current, nil
	}

	if !m.vault.HasKey() {
		return nil, model.ErrKeyNotFound
	}

	ksPassword, err := m.password()
	if err != nil {
		return nil, err
	}
	defer clear(ksPassword)

	id, email, err := m.vault.Reconstruct(ksPassword)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, model.ErrKeyNotFound
	}

	bound, err := m.binder.ResolveWallet(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := identity.VerifyBinding(id, bound); err != nil {
		if clearErr := m.vault.Clear(); clearErr != nil {
			logger.Error("failed to clear mismatched key", zap.Error(clearErr))
		}
		return nil, err
	}

	return m.establish(email, id), nil
}

// Logout drops the signer binding and erases the stored key. Blocks until
// in-flight operations complete.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chain.Rebind(nil)
	m.current = nil
	if err := m.vault.Clear(); err != nil {
		return err
	}
	logger.Info("session ended")
	return nil
}

// establish swaps in the new session under the write lock, rebinding all
// three surfaces so no stale signer survives an account switch.
func (m *Manager) establish(email string, id *keyvault.SigningIdentity) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chain.Rebind(id)
	m.current = &Session{
		Email:    email,
		Identity: id,
		Social:   social.NewClient(m.chain, m.chain, id.Address, email),
	}
	logger.Info("session established",
		zap.String("email", email),
		zap.String("address", id.Address.Hex()))
	return m.current
}
