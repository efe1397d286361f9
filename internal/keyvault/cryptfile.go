package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"blip/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the local keystore.
	// Security is prioritized over performance.
	//
	// N=2^18 (~256MB RAM, 0.5-2s) - maximum security while staying within
	// mobile per-app memory limits. N=2^20 (~1GB) fails on Android.
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12

	networkName = "blip"
)

// encryptKeystore encrypts keystore data and writes it to path atomically:
// the file is written to a temp sibling and renamed over the target, so a
// failure mid-write retains the prior state.
// password must be []byte for security (caller should zero it after use)
func encryptKeystore(path string, address string, data *model.KeystoreData, password []byte) error {
	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Derive key from password
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal keystore data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	ksFile := model.KeystoreFile{
		Network:    networkName,
		Address:    address,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(ksFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create keystore directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".keystore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp keystore: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp keystore: %w", err)
	}
	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp keystore: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp keystore: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace keystore: %w", err)
	}

	return nil
}

// decryptKeystore reads and decrypts the keystore file
// password must be []byte for security (caller should zero it after use)
func decryptKeystore(path string, password []byte) (*model.KeystoreFile, *model.KeystoreData, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, model.ErrKeyNotFound
		}
		return nil, nil, fmt.Errorf("failed to stat keystore: %w", err)
	}

	if fileInfo.Size() == 0 {
		return nil, nil, model.ErrKeyNotFound
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var ksFile model.KeystoreFile
	if err := json.Unmarshal(fileData, &ksFile); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal keystore file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(ksFile.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(ksFile.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ksFile.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, errors.New("invalid keystore password")
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var data model.KeystoreData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal keystore data: %w", err)
	}

	return &ksFile, &data, nil
}

// readKeystoreAddress reads only the address from the keystore file
// (without decryption)
func readKeystoreAddress(path string) (string, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", model.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to stat keystore: %w", err)
	}

	if fileInfo.Size() == 0 {
		return "", model.ErrKeyNotFound
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read keystore: %w", err)
	}

	var ksFile model.KeystoreFile
	if err := json.Unmarshal(fileData, &ksFile); err != nil {
		return "", fmt.Errorf("failed to unmarshal keystore file: %w", err)
	}

	return ksFile.Address, nil
}
