package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the daemon.
// Note: the keystore password is prompted at runtime and kept in memory -
// use GetKeystorePasswordBytes()
type Config struct {
	Port                string `envconfig:"PORT" default:"8080"`
	Debug               bool   `envconfig:"DEBUG" default:"false"`
	RPCURL              string `envconfig:"RPC_URL" required:"true"`
	ChainID             int64  `envconfig:"CHAIN_ID" default:"1337"`
	AuthContract        string `envconfig:"AUTH_CONTRACT" required:"true"`
	ProfileContract     string `envconfig:"PROFILE_CONTRACT" required:"true"`
	PostContract        string `envconfig:"POST_CONTRACT" required:"true"`
	KeystorePath        string `envconfig:"KEYSTORE_PATH" required:"true"`
	OTPServiceURL       string `envconfig:"OTP_SERVICE_URL" required:"true"`
	IPFSAPIURL          string `envconfig:"IPFS_API_URL" default:"http://127.0.0.1:5001"`
	FunderPrivateKey    string `envconfig:"FUNDER_PRIVATE_KEY"`
	FundingWei          string `envconfig:"FUNDING_WEI" default:"100000000000000000"`
	ConfirmTimeoutSecs  int    `envconfig:"CONFIRM_TIMEOUT_SECONDS" default:"120"`
	OffchainTimeoutSecs int    `envconfig:"OFFCHAIN_TIMEOUT_SECONDS" default:"15"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Set replaces the global configuration. Test helper.
func Set(c *Config) {
	cfg = c
}

var passwordBytes []byte

// PromptForPassword prompts for the keystore password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the daemon interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter keystore password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// SetPasswordBytes stores the keystore password directly. Test helper.
func SetPasswordBytes(p []byte) {
	passwordBytes = make([]byte, len(p))
	copy(passwordBytes, p)
}

// GetKeystorePasswordBytes returns a copy of the password stored in memory.
// Caller must zero the returned slice after use.
func GetKeystorePasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
