package model

// KeystoreFile represents the on-disk encrypted keystore structure
type KeystoreFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// KeystoreData represents decrypted keystore contents
type KeystoreData struct {
	PrivateKey   []byte `json:"privateKey"` // 32-byte secp256k1 secret (base64 in JSON)
	Email        string `json:"email"`      // normalized session email
	PasswordHash []byte `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}
