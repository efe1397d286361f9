package gateway

import (
	"context"
	"fmt"
	"math/big"

	"blip/internal/keyvault"
	"blip/internal/logger"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const transferGasLimit = 21000

// Fund transfers amountWei of native currency from the funder key to `to`
// and waits for confirmation. A fresh identity cannot pay its own signup fee,
// so this must complete before the signup transaction is attempted.
func (g *Gateway) Fund(ctx context.Context, funder *keyvault.SigningIdentity, to common.Address, amountWei *big.Int) (*Receipt, error) {
	if amountWei == nil || amountWei.Sign() <= 0 {
		return nil, fmt.Errorf("invalid funding amount")
	}

	nonce, err := g.client.PendingNonceAt(ctx, funder.Address)
	if err != nil {
		return nil, &model.NetworkError{Op: "fund", Err: err}
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &model.NetworkError{Op: "fund", Err: err}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amountWei,
		Gas:      transferGasLimit,
		GasPrice: gasPrice,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), funder.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign funding transaction: %w", err)
	}

	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return nil, &model.NetworkError{Op: "fund", Err: err}
	}

	logger.Info("funding transaction submitted",
		zap.String("to", to.Hex()),
		zap.String("tx", signed.Hash().Hex()))

	waitCtx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, g.backend, signed)
	if err != nil {
		return nil, &model.NetworkError{Op: "fund", Err: err}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, &model.RevertError{Raw: "funding transfer reverted"}
	}

	return &Receipt{
		TxHash:      signed.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}
