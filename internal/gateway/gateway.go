// Package gateway binds a signer to the three deployed contract surfaces
// (Auth, Profile, Post) and exposes typed operations with transaction
// confirmation semantics. Reads need only the provider; writes need the
// bound signer and block until the transaction is mined and checked for
// revert.
package gateway

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"blip/internal/keyvault"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Receipt is the confirmed outcome of a write. A Receipt is only returned
// for transactions that were included and executed without revert.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// confirmBackend is the slice of the RPC client the confirmation path needs:
// receipt polling for WaitMined and call replay for revert-reason recovery.
// *ethclient.Client satisfies it; tests substitute a stub.
type confirmBackend interface {
	bind.DeployBackend
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Gateway holds the provider connection and the three bound surfaces.
// The signer is process-wide shared state: Rebind replaces it atomically and
// every write reads it fresh, so a stale binding can never sign.
type Gateway struct {
	client         *ethclient.Client
	backend        confirmBackend
	chainID        *big.Int
	confirmTimeout time.Duration

	auth    *bind.BoundContract
	profile *bind.BoundContract
	post    *bind.BoundContract

	mu     sync.RWMutex
	signer *keyvault.SigningIdentity
}

// Options configures a Gateway.
type Options struct {
	RPCURL          string
	ChainID         int64
	AuthContract    common.Address
	ProfileContract common.Address
	PostContract    common.Address
	ConfirmTimeout  time.Duration
}

// Dial connects the provider and binds the three read-only surfaces.
// No signer is attached; writes fail with ErrNoSession until Rebind.
func Dial(ctx context.Context, opts Options) (*Gateway, error) {
	client, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC node: %w", err)
	}

	confirmTimeout := opts.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = 2 * time.Minute
	}

	g := &Gateway{
		client:         client,
		backend:        client,
		chainID:        big.NewInt(opts.ChainID),
		confirmTimeout: confirmTimeout,
	}
	g.auth = bind.NewBoundContract(opts.AuthContract, authABI, client, client, client)
	g.profile = bind.NewBoundContract(opts.ProfileContract, profileABI, client, client, client)
	g.post = bind.NewBoundContract(opts.PostContract, postABI, client, client, client)
	return g, nil
}

// Rebind attaches a new signer to all three surfaces, replacing any prior
// binding. Pass nil to drop the signer (logout). Must be called whenever the
// active identity changes; write operations started before the swap still
// complete under the identity they captured, but no new write observes it.
func (g *Gateway) Rebind(signer *keyvault.SigningIdentity) {
	g.mu.Lock()
	g.signer = signer
	g.mu.Unlock()
}

// Signer returns the currently bound signer, or nil.
func (g *Gateway) Signer() *keyvault.SigningIdentity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.signer
}

// SignerAddress returns the bound signer's address and whether one is bound.
func (g *Gateway) SignerAddress() (common.Address, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.signer == nil {
		return common.Address{}, false
	}
	return g.signer.Address, true
}

// Close tears down the provider connection.
func (g *Gateway) Close() {
	g.client.Close()
}

func (g *Gateway) callOpts(ctx context.Context) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx}
	if addr, ok := g.SignerAddress(); ok {
		// Views that read msg.sender (listFriendRequests) need From set.
		opts.From = addr
	}
	return opts
}
