package gateway

import (
	"context"

	"blip/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Login performs the ledger-side credential check. The password handling is
// opaque to this layer; the contract answers true or false.
func (g *Gateway) Login(ctx context.Context, emailHash [32]byte, password string) (bool, error) {
	var out []interface{}
	if err := g.auth.Call(g.callOpts(ctx), &out, "login", emailHash, password); err != nil {
		return false, &model.NetworkError{Op: "login", Err: err}
	}
	ok := *abi.ConvertType(out[0], new(bool)).(*bool)
	return ok, nil
}

// WalletByEmailHash looks up the wallet bound to an email hash. The zero
// address means the email was never registered.
func (g *Gateway) WalletByEmailHash(ctx context.Context, emailHash [32]byte) (common.Address, error) {
	var out []interface{}
	if err := g.auth.Call(g.callOpts(ctx), &out, "getUserByEmailHash", emailHash); err != nil {
		return common.Address{}, &model.NetworkError{Op: "getUserByEmailHash", Err: err}
	}
	addr := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return addr, nil
}

// Signup submits the binding of the normalized email to the signer's address
// together with the password credential.
func (g *Gateway) Signup(ctx context.Context, email, password string) (*Receipt, error) {
	return g.transact(ctx, g.auth, "signup", email, password)
}
