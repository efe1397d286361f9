package session

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"blip/internal/gateway"
	"blip/internal/keyvault"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// funderKeyHex is a throwaway key for funding-path tests.
const funderKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// fakeChain implements Chain with programmable auth answers. The social and
// post surfaces answer with zero values; session flows only exercise auth,
// funding and rebinding.
type fakeChain struct {
	mu       sync.Mutex
	wallet   common.Address
	loginOK  bool
	loginErr error
	fundErr  error

	// When set, Signup records this wallet instead of the bound signer's,
	// simulating a binding the ledger disagrees about.
	signupWallet common.Address

	bound     *keyvault.SigningIdentity
	fundCalls int
	fundedTo  common.Address
}

func (f *fakeChain) Login(ctx context.Context, emailHash [32]byte, password string) (bool, error) {
	return f.loginOK, f.loginErr
}

func (f *fakeChain) WalletByEmailHash(ctx context.Context, emailHash [32]byte) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallet, nil
}

func (f *fakeChain) Signup(ctx context.Context, email, password string) (*gateway.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// The contract binds msg.sender; mirror that with the rebound signer.
	if f.signupWallet != (common.Address{}) {
		f.wallet = f.signupWallet
	} else if f.bound != nil {
		f.wallet = f.bound.Address
	}
	return &gateway.Receipt{TxHash: common.HexToHash("0x1"), BlockNumber: 1}, nil
}

func (f *fakeChain) Rebind(signer *keyvault.SigningIdentity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = signer
}

func (f *fakeChain) Fund(ctx context.Context, funder *keyvault.SigningIdentity, to common.Address, amountWei *big.Int) (*gateway.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fundCalls++
	f.fundedTo = to
	if f.fundErr != nil {
		return nil, f.fundErr
	}
	return &gateway.Receipt{TxHash: common.HexToHash("0x2"), BlockNumber: 2}, nil
}

func (f *fakeChain) boundSigner() *keyvault.SigningIdentity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound
}

// Unused surfaces for these flows.

func (f *fakeChain) CreateProfile(ctx context.Context, name, email, bio string) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) UpdateBio(ctx context.Context, bio string) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) UpdateName(ctx context.Context, name string) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) GetProfile(ctx context.Context, wallet common.Address) (*model.Profile, error) {
	return &model.Profile{Wallet: wallet}, nil
}
func (f *fakeChain) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return &model.Profile{}, nil
}
func (f *fakeChain) GetFriends(ctx context.Context, wallet common.Address) ([]common.Address, error) {
	return nil, nil
}
func (f *fakeChain) IsFriend(ctx context.Context, a, b common.Address) (bool, error) {
	return false, nil
}
func (f *fakeChain) AddFriend(ctx context.Context, friend common.Address) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) RemoveFriend(ctx context.Context, friend common.Address) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) SendFriendRequest(ctx context.Context, to common.Address) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) AcceptFriendRequest(ctx context.Context, from common.Address) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) RejectFriendRequest(ctx context.Context, from common.Address) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) ListFriendRequests(ctx context.Context) ([]common.Address, error) {
	return nil, nil
}
func (f *fakeChain) CreatePost(ctx context.Context, text string, isPublic bool) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) LikePost(ctx context.Context, postID uint64) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) CommentOnPost(ctx context.Context, postID uint64, comment string) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) SharePost(ctx context.Context, postID uint64) (*gateway.Receipt, error) {
	return &gateway.Receipt{}, nil
}
func (f *fakeChain) GetUserPosts(ctx context.Context, user common.Address) ([]uint64, error) {
	return nil, nil
}
func (f *fakeChain) GetComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return nil, nil
}
func (f *fakeChain) GetLikes(ctx context.Context, postID uint64) ([]common.Address, error) {
	return nil, nil
}
func (f *fakeChain) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	return &model.Post{ID: postID}, nil
}

func newTestManager(t *testing.T, chain *fakeChain) (*Manager, *keyvault.Vault) {
	t.Helper()
	vault := keyvault.New(filepath.Join(t.TempDir(), "keystore.blip"))
	m := NewManager(Options{
		Vault:      vault,
		Chain:      chain,
		Password:   func() ([]byte, error) { return []byte("keystore pw"), nil },
		FunderHex:  funderKeyHex,
		FundingWei: big.NewInt(1000),
	})
	return m, vault
}

func TestLoginWithStoredKey(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{loginOK: true, wallet: id.Address}
	m, vault := newTestManager(t, chain)
	if err := vault.Persist(id, "user@example.com", []byte("keystore pw")); err != nil {
		t.Fatal(err)
	}

	sess, err := m.Login(context.Background(), "User@Example.com ", "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Email != "user@example.com" {
		t.Errorf("session email %q", sess.Email)
	}
	if sess.Address() != id.Address {
		t.Error("session bound to wrong address")
	}
	if signer := chain.boundSigner(); signer == nil || signer.Address != id.Address {
		t.Error("gateway not rebound to session identity")
	}
	if m.Current() != sess {
		t.Error("Current does not return the established session")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	chain := &fakeChain{loginOK: false}
	m, _ := newTestManager(t, chain)

	_, err := m.Login(context.Background(), "user@example.com", "wrong", "")
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if m.Current() != nil {
		t.Fatal("session established despite bad credentials")
	}
}

func TestLoginWalletMismatchClearsKey(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}
	other := common.HexToAddress("0x4444444444444444444444444444444444444444")
	chain := &fakeChain{loginOK: true, wallet: other}
	m, vault := newTestManager(t, chain)
	if err := vault.Persist(id, "user@example.com", []byte("keystore pw")); err != nil {
		t.Fatal(err)
	}

	_, err = m.Login(context.Background(), "user@example.com", "pw", "")
	if !errors.Is(err, model.ErrWalletMismatch) {
		t.Fatalf("got %v, want ErrWalletMismatch", err)
	}
	if vault.HasKey() {
		t.Fatal("mismatched key not cleared")
	}
	if m.Current() != nil {
		t.Fatal("session established despite mismatch")
	}
}

func TestLoginWithImportedKeyPersists(t *testing.T) {
	id, err := keyvault.FromHex(funderKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{loginOK: true, wallet: id.Address}
	m, vault := newTestManager(t, chain)

	sess, err := m.Login(context.Background(), "user@example.com", "pw", funderKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Address() != id.Address {
		t.Error("wrong address from imported key")
	}
	if !vault.HasKey() {
		t.Fatal("imported key not persisted")
	}
	got, _, err := vault.Reconstruct([]byte("keystore pw"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != id.Address {
		t.Error("persisted key does not round-trip")
	}
}

func TestLoginNoKeyNoImport(t *testing.T) {
	chain := &fakeChain{loginOK: true, wallet: common.HexToAddress("0x5555555555555555555555555555555555555555")}
	m, _ := newTestManager(t, chain)

	_, err := m.Login(context.Background(), "user@example.com", "pw", "")
	if !errors.Is(err, model.ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
}

func TestSignupFlow(t *testing.T) {
	chain := &fakeChain{} // no wallet bound yet
	m, vault := newTestManager(t, chain)

	sess, receipt, err := m.Signup(context.Background(), "new@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if receipt == nil || receipt.BlockNumber != 1 {
		t.Fatalf("receipt %+v", receipt)
	}
	if chain.fundCalls != 1 {
		t.Fatalf("fund called %d times, want 1", chain.fundCalls)
	}
	if chain.fundedTo != sess.Address() {
		t.Error("funding sent to the wrong address")
	}
	if !vault.HasKey() {
		t.Fatal("new identity not persisted")
	}
	if signer := chain.boundSigner(); signer == nil || signer.Address != sess.Address() {
		t.Error("gateway not rebound to new identity")
	}
}

func TestSignupAlreadyRegistered(t *testing.T) {
	chain := &fakeChain{wallet: common.HexToAddress("0x6666666666666666666666666666666666666666")}
	m, _ := newTestManager(t, chain)

	_, _, err := m.Signup(context.Background(), "taken@example.com", "pw")
	var valErr *model.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if chain.fundCalls != 0 {
		t.Fatal("funding attempted for a registered email")
	}
}

func TestSignupFundingFailure(t *testing.T) {
	chain := &fakeChain{fundErr: &model.NetworkError{Op: "fund", Err: errors.New("down")}}
	m, vault := newTestManager(t, chain)

	_, _, err := m.Signup(context.Background(), "new@example.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if vault.HasKey() {
		t.Fatal("unfunded identity should not be persisted")
	}
	if m.Current() != nil {
		t.Fatal("session established despite funding failure")
	}
}

func TestSignupBindingMismatchUnwindsSigner(t *testing.T) {
	chain := &fakeChain{signupWallet: common.HexToAddress("0x7777777777777777777777777777777777777777")}
	m, vault := newTestManager(t, chain)

	_, _, err := m.Signup(context.Background(), "new@example.com", "pw")
	if !errors.Is(err, model.ErrWalletMismatch) {
		t.Fatalf("got %v, want ErrWalletMismatch", err)
	}
	if chain.boundSigner() != nil {
		t.Fatal("signer still bound after failed signup")
	}
	if vault.HasKey() {
		t.Fatal("mismatched identity should not be persisted")
	}
	if m.Current() != nil {
		t.Fatal("session established despite binding mismatch")
	}
}

func TestSignupPersistFailureUnwindsSigner(t *testing.T) {
	chain := &fakeChain{}
	vault := keyvault.New(filepath.Join(t.TempDir(), "keystore.blip"))
	m := NewManager(Options{
		Vault:      vault,
		Chain:      chain,
		Password:   func() ([]byte, error) { return nil, errors.New("prompt closed") },
		FunderHex:  funderKeyHex,
		FundingWei: big.NewInt(1000),
	})

	_, _, err := m.Signup(context.Background(), "new@example.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if chain.boundSigner() != nil {
		t.Fatal("signer still bound after failed signup")
	}
	if vault.HasKey() {
		t.Fatal("nothing should be persisted without a keystore password")
	}
	if m.Current() != nil {
		t.Fatal("session established despite persist failure")
	}
}

func TestLogout(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{loginOK: true, wallet: id.Address}
	m, vault := newTestManager(t, chain)
	if err := vault.Persist(id, "user@example.com", []byte("keystore pw")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Login(context.Background(), "user@example.com", "pw", ""); err != nil {
		t.Fatal(err)
	}

	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}
	if m.Current() != nil {
		t.Fatal("session survives logout")
	}
	if chain.boundSigner() != nil {
		t.Fatal("signer still bound after logout")
	}
	if vault.HasKey() {
		t.Fatal("key survives logout")
	}
	if err := m.WithSession(func(*Session) error { return nil }); !errors.Is(err, model.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestResumeFromKeystore(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{wallet: id.Address}
	m, vault := newTestManager(t, chain)
	if err := vault.Persist(id, "user@example.com", []byte("keystore pw")); err != nil {
		t.Fatal(err)
	}

	sess, err := m.Resume(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sess.Email != "user@example.com" || sess.Address() != id.Address {
		t.Fatalf("resumed session %q %s", sess.Email, sess.Address().Hex())
	}
}

func TestResumeNoKey(t *testing.T) {
	m, _ := newTestManager(t, &fakeChain{})
	_, err := m.Resume(context.Background())
	if !errors.Is(err, model.ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
}

func TestResumeDetectsRebinding(t *testing.T) {
	id, err := keyvault.Generate()
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{loginOK: true, wallet: id.Address}
	m, vault := newTestManager(t, chain)
	if err := vault.Persist(id, "user@example.com", []byte("keystore pw")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Login(context.Background(), "user@example.com", "pw", ""); err != nil {
		t.Fatal(err)
	}

	// The ledger binding changes out from under the session (e.g. account
	// re-registered elsewhere). Resume must tear the session down.
	chain.mu.Lock()
	chain.wallet = common.HexToAddress("0x7777777777777777777777777777777777777777")
	chain.mu.Unlock()

	_, err = m.Resume(context.Background())
	if !errors.Is(err, model.ErrWalletMismatch) {
		t.Fatalf("got %v, want ErrWalletMismatch", err)
	}
	if m.Current() != nil {
		t.Fatal("session survives a detected mismatch")
	}
}

func TestFunderKeyDerivation(t *testing.T) {
	// Guards the fixture: the funder hex must parse to a valid identity.
	priv, err := crypto.HexToECDSA(funderKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	id, err := keyvault.FromHex(funderKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	if id.Address != crypto.PubkeyToAddress(priv.PublicKey) {
		t.Fatal("address derivation disagrees")
	}
}
