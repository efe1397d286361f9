// Package keyvault owns the lifecycle of the single signing key per
// logged-in user: generation, encrypted persistence, reconstruction, and
// secure erase, plus sign/verify primitives over keccak256 digests.
package keyvault

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"
	"time"

	"blip/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SigningIdentity is a private key plus its derived public address.
// Exactly one is alive per logged-in session.
type SigningIdentity struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// Vault manages the encrypted keystore file at a fixed path.
type Vault struct {
	path string
}

// New creates a Vault over the given keystore path.
func New(path string) *Vault {
	return &Vault{path: path}
}

// Generate produces a fresh random secp256k1 identity. crypto/rand is the
// only entropy source; a failure here is fatal to the caller, never
// silently degraded.
func Generate() (*SigningIdentity, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return &SigningIdentity{
		PrivateKey: priv,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
	}, nil
}

// FromHex reconstructs an identity from a hex-encoded 32-byte private key.
func FromHex(privHex string) (*SigningIdentity, error) {
	privHex = strings.TrimPrefix(strings.TrimSpace(privHex), "0x")
	priv, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &SigningIdentity{
		PrivateKey: priv,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
	}, nil
}

// Persist stores the identity, session email, and a password-verification
// hash in the encrypted keystore, overwriting any prior value. The write is
// atomic: either the whole identity is stored or the prior state is retained.
// password must be []byte for security (caller should zero it after use)
func (v *Vault) Persist(id *SigningIdentity, email string, password []byte) error {
	raw := crypto.FromECDSA(id.PrivateKey)
	defer clear(raw)

	data := &model.KeystoreData{
		PrivateKey:   raw,
		Email:        email,
		PasswordHash: passwordDigest(password),
		CreatedAt:    time.Now().Format(time.RFC3339),
	}

	if err := encryptKeystore(v.path, id.Address.Hex(), data, password); err != nil {
		return fmt.Errorf("failed to persist identity: %w", err)
	}
	return nil
}

// Reconstruct loads the private key from storage and re-derives the address.
// Returns model.ErrKeyNotFound if no key is stored.
// password must be []byte for security (caller should zero it after use)
func (v *Vault) Reconstruct(password []byte) (*SigningIdentity, string, error) {
	_, data, err := decryptKeystore(v.path, password)
	if err != nil {
		return nil, "", err
	}
	defer clear(data.PrivateKey)

	priv, err := crypto.ToECDSA(data.PrivateKey)
	if err != nil {
		return nil, "", fmt.Errorf("stored key is corrupt: %w", err)
	}

	return &SigningIdentity{
		PrivateKey: priv,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
	}, data.Email, nil
}

// Address returns the address recorded in the keystore without decrypting it.
func (v *Vault) Address() (common.Address, error) {
	addr, err := readKeystoreAddress(v.path)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(addr), nil
}

// HasKey reports whether a keystore file with content exists.
func (v *Vault) HasKey() bool {
	info, err := os.Stat(v.path)
	return err == nil && info.Size() > 0
}

// VerifyPassword checks a password against the cached verification hash
// without a full scrypt decryption. Used for cheap local re-prompts; the
// ledger's own credential check remains authoritative.
// password must be []byte for security (caller should zero it after use)
func (v *Vault) VerifyPassword(password []byte) (bool, error) {
	// The hash lives inside the encrypted payload, so verification still
	// requires the correct password to decrypt. A successful decrypt with a
	// matching digest is the strongest local signal available.
	_, data, err := decryptKeystore(v.path, password)
	if err != nil {
		return false, err
	}
	return bytes.Equal(data.PasswordHash, passwordDigest(password)), nil
}

// Clear erases the stored key and cached password hash. It is the only
// sanctioned way to end a session's identity; called on logout and on
// wallet-mismatch detection.
func (v *Vault) Clear() error {
	info, err := os.Stat(v.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat keystore: %w", err)
	}

	// Overwrite file contents before unlinking so the ciphertext does not
	// linger on disk.
	junk := make([]byte, info.Size())
	if werr := os.WriteFile(v.path, junk, 0600); werr != nil {
		return fmt.Errorf("failed to scrub keystore: %w", werr)
	}
	if err := os.Remove(v.path); err != nil {
		return fmt.Errorf("failed to remove keystore: %w", err)
	}
	return nil
}

// Sign produces a 65-byte [R || S || V] secp256k1 signature over the
// keccak256 digest of msg.
func (id *SigningIdentity) Sign(msg []byte) ([]byte, error) {
	digest := crypto.Keccak256(msg)
	sig, err := crypto.Sign(digest, id.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig, nil
}

// Verify reports whether sig over msg was produced by the key bound to addr.
func Verify(addr common.Address, msg, sig []byte) bool {
	if len(sig) != 65 {
		return false
	}
	digest := crypto.Keccak256(msg)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == addr
}

// passwordDigest derives the cached password-verification hash. Keccak over
// a fixed domain prefix; never leaves the device.
func passwordDigest(password []byte) []byte {
	return crypto.Keccak256([]byte("blip-password-v1:"), password)
}
