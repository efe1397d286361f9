// blipd is the local daemon the mobile UI talks to. It owns the encrypted
// keystore, the RPC connection to the ledger, and the single active session;
// the UI never touches key material directly.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "blip/docs"
	"blip/internal/api"
	"blip/internal/client"
	"blip/internal/config"
	"blip/internal/gateway"
	"blip/internal/keyvault"
	"blip/internal/logger"
	"blip/internal/model"
	"blip/internal/session"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// @title           blipd API
// @version         1.0
// @description     Local daemon for the wallet-backed social client.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	if err := logger.Init(cfg.Debug); err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.PromptForPassword(); err != nil {
		return err
	}

	for _, c := range []struct{ name, addr string }{
		{"AUTH_CONTRACT", cfg.AuthContract},
		{"PROFILE_CONTRACT", cfg.ProfileContract},
		{"POST_CONTRACT", cfg.PostContract},
	} {
		if !common.IsHexAddress(c.addr) {
			return fmt.Errorf("%s is not a valid contract address", c.name)
		}
	}

	fundingWei, ok := new(big.Int).SetString(cfg.FundingWei, 10)
	if !ok {
		return fmt.Errorf("FUNDING_WEI is not a valid integer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gw, err := gateway.Dial(ctx, gateway.Options{
		RPCURL:          cfg.RPCURL,
		ChainID:         cfg.ChainID,
		AuthContract:    common.HexToAddress(cfg.AuthContract),
		ProfileContract: common.HexToAddress(cfg.ProfileContract),
		PostContract:    common.HexToAddress(cfg.PostContract),
		ConfirmTimeout:  time.Duration(cfg.ConfirmTimeoutSecs) * time.Second,
	})
	cancel()
	if err != nil {
		return err
	}
	defer gw.Close()

	offchainTimeout := time.Duration(cfg.OffchainTimeoutSecs) * time.Second
	otp := client.NewOTPClient(cfg.OTPServiceURL, offchainTimeout)
	ipfs := client.NewIPFSClient(cfg.IPFSAPIURL, offchainTimeout)

	sessions := session.NewManager(session.Options{
		Vault:      keyvault.New(cfg.KeystorePath),
		Chain:      gw,
		Password:   config.GetKeystorePasswordBytes,
		FunderHex:  cfg.FunderPrivateKey,
		FundingWei: fundingWei,
	})

	// Best effort: pick up where the last run left off. A missing key just
	// means nobody is logged in yet.
	resumeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if sess, err := sessions.Resume(resumeCtx); err != nil {
		if !errors.Is(err, model.ErrKeyNotFound) {
			logger.Warn("could not resume previous session", zap.Error(err))
		}
	} else {
		logger.Info("resumed session", zap.String("email", sess.Email))
	}
	cancel()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.SetupRouter(sessions, otp, ipfs),
	}

	go func() {
		logger.Info("daemon listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
