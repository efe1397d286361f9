package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"blip/internal/keyvault"
	"blip/internal/logger"
	"blip/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// transact submits a state-changing call under the currently bound signer and
// awaits confirmation. "Success" means included AND executed without revert;
// an included-but-reverted transaction comes back as *model.RevertError.
func (g *Gateway) transact(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (*Receipt, error) {
	g.mu.RLock()
	signer := g.signer
	g.mu.RUnlock()
	if signer == nil {
		return nil, model.ErrNoSession
	}

	opts, err := bind.NewKeyedTransactorWithChainID(signer.PrivateKey, g.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		// Gas estimation replays the call, so contract-side rejections
		// surface here before anything is submitted.
		return nil, classifySubmitError(method, err)
	}

	logger.Debug("transaction submitted",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()))

	return g.waitConfirmed(ctx, signer, tx, method)
}

// waitConfirmed blocks until the transaction is mined, then checks the
// receipt status. Inclusion time is variable; the only bound is the
// configured confirmation timeout.
func (g *Gateway) waitConfirmed(ctx context.Context, signer *keyvault.SigningIdentity, tx *types.Transaction, method string) (*Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, g.backend, tx)
	if err != nil {
		return nil, &model.NetworkError{Op: method, Err: err}
	}

	if receipt.Status == types.ReceiptStatusFailed {
		reason := g.revertReason(ctx, signer, tx, receipt.BlockNumber.Uint64())
		logger.Warn("transaction reverted",
			zap.String("method", method),
			zap.String("tx", tx.Hash().Hex()),
			zap.String("reason", reason))
		return nil, &model.RevertError{Reason: reason, Raw: fmt.Sprintf("%s reverted in block %d", method, receipt.BlockNumber)}
	}

	logger.Info("transaction confirmed",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()))

	return &Receipt{
		TxHash:      tx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// revertReason replays the reverted transaction as a call at its block to
// recover the Error(string) payload. Best effort: an empty string means the
// reason could not be extracted.
func (g *Gateway) revertReason(ctx context.Context, signer *keyvault.SigningIdentity, tx *types.Transaction, blockNumber uint64) string {
	msg := ethereum.CallMsg{
		From:     signer.Address,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	ret, err := g.backend.CallContract(ctx, msg, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return reasonFromError(err)
	}
	if reason, uerr := abi.UnpackRevert(ret); uerr == nil {
		return reason
	}
	return ""
}

// classifySubmitError separates contract rejections (revert at gas
// estimation) from transport failures.
func classifySubmitError(method string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &model.NetworkError{Op: method, Err: err}
	}
	if reason := reasonFromError(err); reason != "" {
		return &model.RevertError{Reason: reason, Raw: err.Error()}
	}
	if strings.Contains(err.Error(), "execution reverted") {
		return &model.RevertError{Raw: err.Error()}
	}
	return &model.NetworkError{Op: method, Err: err}
}

// reasonFromError digs a revert reason out of an RPC error, either from
// attached return data or the conventional "execution reverted: ..." text.
func reasonFromError(err error) string {
	type dataError interface {
		ErrorData() interface{}
	}
	var de dataError
	if errors.As(err, &de) {
		if hexData, ok := de.ErrorData().(string); ok {
			if data := common.FromHex(hexData); len(data) > 0 {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return reason
				}
			}
		}
	}
	const marker = "execution reverted: "
	if idx := strings.Index(err.Error(), marker); idx >= 0 {
		return err.Error()[idx+len(marker):]
	}
	return ""
}
