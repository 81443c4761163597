package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/tinybank-dev/tinybank-contract/contracts"
	"github.com/tinybank-dev/tinybank-contract/deploy"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	rpcEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := flag.String("wallet", "", "Path to the NEP-6 wallet with the deploying account")
	accAddress := flag.String("address", "", "Address of the deploying account (default account of the wallet if empty)")
	managers := flag.String("managers", "", "Comma-separated addresses of the bank managers")
	threshold := flag.Int64("threshold", 0, "Number of manager confirmations required to change reward (all managers if zero)")
	name := flag.String("name", "MyToken", "Token name")
	symbol := flag.String("symbol", "MT", "Token symbol")
	decimals := flag.Int64("decimals", 18, "Token decimals")
	supply := flag.Int64("supply", 100, "Amount of whole tokens minted to the deploying account")
	reward := flag.String("reward", "", "Reward per staked block in the smallest token units (one whole token if empty)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Deployment timeout")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	switch {
	case *rpcEndpoint == "":
		logger.Fatal("missing Neo RPC endpoint")
	case *walletPath == "":
		logger.Fatal("missing wallet")
	case *managers == "":
		logger.Fatal("missing bank managers")
	}

	prm := deploy.Prm{
		Logger: logger,
		TokenContract: deploy.TokenContractPrm{
			Name:          *name,
			Symbol:        *symbol,
			Decimals:      *decimals,
			InitialSupply: *supply,
		},
		BankContract: deploy.BankContractPrm{
			Threshold: *threshold,
		},
	}

	prm.BankContract.Managers, err = parseAddresses(*managers)
	if err != nil {
		logger.Fatal("invalid bank managers", zap.Error(err))
	}

	if prm.BankContract.Threshold == 0 {
		prm.BankContract.Threshold = int64(len(prm.BankContract.Managers))
	}

	if *reward != "" {
		var ok bool
		prm.BankContract.RewardPerBlock, ok = new(big.Int).SetString(*reward, 10)
		if !ok {
			logger.Fatal("invalid reward per block", zap.String("value", *reward))
		}
	}

	err = readEmbeddedContracts(&prm)
	if err != nil {
		logger.Fatal("failed to read embedded contracts", zap.Error(err))
	}

	prm.LocalAccount, err = openAccount(*walletPath, *accAddress)
	if err != nil {
		logger.Fatal("failed to open deploying account", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := rpcclient.New(ctx, *rpcEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		logger.Fatal("RPC client dial", zap.Error(err))
	}
	defer c.Close()

	err = c.Init()
	if err != nil {
		logger.Fatal("RPC client init", zap.Error(err))
	}

	prm.Blockchain = c

	res, err := deploy.Deploy(ctx, prm)
	if err != nil {
		logger.Fatal("deployment failed", zap.Error(err))
	}

	fmt.Printf("token:       %s\n", address.Uint160ToString(res.Token))
	fmt.Printf("bank:        %s\n", address.Uint160ToString(res.Bank))
	fmt.Printf("native bank: %s\n", address.Uint160ToString(res.NativeBank))
}

func parseAddresses(s string) ([]util.Uint160, error) {
	parts := strings.Split(s, ",")
	res := make([]util.Uint160, len(parts))

	for i := range parts {
		var err error
		res[i], err = address.StringToUint160(strings.TrimSpace(parts[i]))
		if err != nil {
			return nil, fmt.Errorf("address #%d: %w", i, err)
		}
	}

	return res, nil
}

func openAccount(walletPath, addr string) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	var acc *wallet.Account
	if addr == "" {
		if len(w.Accounts) == 0 {
			return nil, errors.New("wallet has no accounts")
		}
		acc = w.Accounts[0]
		for i := range w.Accounts {
			if w.Accounts[i].Default {
				acc = w.Accounts[i]
				break
			}
		}
	} else {
		h, err := address.StringToUint160(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid account address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", addr)
		}
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", acc.Address)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	err = acc.Decrypt(string(pass), w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}

func readEmbeddedContracts(prm *deploy.Prm) error {
	cs, err := contracts.GetAll()
	if err != nil {
		return fmt.Errorf("read embedded contracts: %w", err)
	}

	mRequired := map[string]*deploy.CommonDeployPrm{
		contracts.TokenName:      &prm.TokenContract.Common,
		contracts.BankName:       &prm.BankContract.Common,
		contracts.NativeBankName: &prm.NativeBankContract.Common,
	}

	for i := range cs {
		p, ok := mRequired[cs[i].Manifest.Name]
		if ok {
			p.Manifest = cs[i].Manifest
			p.NEF = cs[i].NEF

			delete(mRequired, cs[i].Manifest.Name)
		}
	}

	if len(mRequired) > 0 {
		missing := make([]string, 0, len(mRequired))
		for name := range mRequired {
			missing = append(missing, name)
		}

		return fmt.Errorf("some contracts are required but not embedded: %v", missing)
	}

	return nil
}
