// Offline keystore maintenance: prints the stored address and account email
// after decrypting with the current password, and optionally re-encrypts the
// file under a new password with fresh salt and nonce.
// Usage: go run ./cmd/keystore-inspect [-rekey] <keystore path>
package main

import (
	"flag"
	"fmt"
	"os"

	"blip/internal/keyvault"

	"golang.org/x/term"
)

func main() {
	rekey := flag.Bool("rekey", false, "re-encrypt the keystore under a new password")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: keystore-inspect [-rekey] <keystore path>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *rekey); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(path string, rekey bool) error {
	vault := keyvault.New(path)

	addr, err := vault.Address()
	if err != nil {
		return err
	}
	fmt.Println("address:", addr.Hex())

	password, err := promptPassword("Enter keystore password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	id, email, err := vault.Reconstruct(password)
	if err != nil {
		return err
	}
	fmt.Println("email:  ", email)
	if id.Address != addr {
		fmt.Println("warning: plaintext address disagrees with file header")
	}

	if !rekey {
		return nil
	}

	newPassword, err := promptPassword("Enter new keystore password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)
	confirm, err := promptPassword("Repeat new keystore password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if string(newPassword) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	if err := vault.Persist(id, email, newPassword); err != nil {
		return err
	}
	fmt.Println("keystore re-encrypted")
	return nil
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	return raw, nil
}
