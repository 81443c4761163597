package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	tokenrpc "github.com/tinybank-dev/tinybank-contract/rpc/token"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for TinyBank deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// TokenContractPrm groups deployment parameters of the token contract.
type TokenContractPrm struct {
	Common CommonDeployPrm

	Name     string
	Symbol   string
	Decimals int64
	// Amount of whole tokens minted to the local account at deployment.
	InitialSupply int64
}

// BankContractPrm groups deployment parameters of the staking bank contract.
type BankContractPrm struct {
	Common CommonDeployPrm

	Managers  []util.Uint160
	Threshold int64
	// Optional, one whole token per block if nil.
	RewardPerBlock *big.Int
}

// NativeBankContractPrm groups deployment parameters of the GAS deposit
// contract.
type NativeBankContractPrm struct {
	Common CommonDeployPrm
}

// Prm groups all parameters of the TinyBank deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy contracts to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It owns the initial token supply.
	LocalAccount *wallet.Account

	TokenContract      TokenContractPrm
	BankContract       BankContractPrm
	NativeBankContract NativeBankContractPrm
}

// Result holds addresses of the deployed contracts.
type Result struct {
	Token      util.Uint160
	Bank       util.Uint160
	NativeBank util.Uint160
}

// Deploy deploys TinyBank contracts to the Neo network represented by given
// Prm.Blockchain and passes token mint authority to the staking bank.
//
// Contracts already deployed by the local account are left as is, so Deploy
// can be repeated after a failure. Stages:
//  1. token contract deployment
//  2. staking bank deployment
//  3. token manager change to the staking bank
//  4. GAS deposit contract deployment
func Deploy(ctx context.Context, prm Prm) (Result, error) {
	var res Result

	if len(prm.BankContract.Managers) == 0 {
		return res, errors.New("empty bank manager set")
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return res, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	syncPrm := syncContractPrm{
		logger:     prm.Logger,
		blockchain: prm.Blockchain,
		actor:      act,
	}

	prm.Logger.Info("synchronizing token contract...")

	syncPrm.common = prm.TokenContract.Common
	syncPrm.buildDeployData = func() []any {
		return tokenDeployData(prm.TokenContract, prm.LocalAccount.ScriptHash())
	}

	res.Token, err = syncContract(ctx, syncPrm)
	if err != nil {
		return res, fmt.Errorf("sync token contract: %w", err)
	}

	prm.Logger.Info("token contract successfully synchronized", zap.Stringer("address", res.Token))

	prm.Logger.Info("synchronizing bank contract...")

	syncPrm.common = prm.BankContract.Common
	syncPrm.buildDeployData = func() []any {
		return bankDeployData(prm.BankContract, res.Token)
	}

	res.Bank, err = syncContract(ctx, syncPrm)
	if err != nil {
		return res, fmt.Errorf("sync bank contract: %w", err)
	}

	prm.Logger.Info("bank contract successfully synchronized", zap.Stringer("address", res.Bank))

	err = setTokenManager(ctx, prm.Logger, act, res.Token, res.Bank)
	if err != nil {
		return res, fmt.Errorf("pass mint authority to the bank: %w", err)
	}

	prm.Logger.Info("synchronizing native bank contract...")

	syncPrm.common = prm.NativeBankContract.Common
	syncPrm.buildDeployData = func() []any { return nil }

	res.NativeBank, err = syncContract(ctx, syncPrm)
	if err != nil {
		return res, fmt.Errorf("sync native bank contract: %w", err)
	}

	prm.Logger.Info("native bank contract successfully synchronized", zap.Stringer("address", res.NativeBank))

	return res, nil
}

type syncContractPrm struct {
	logger     *zap.Logger
	blockchain Blockchain
	actor      *actor.Actor

	common CommonDeployPrm

	// called only when the contract is not deployed yet
	buildDeployData func() []any
}

// syncContract deploys the contract unless it has already been deployed by
// the same sender and returns its address.
func syncContract(ctx context.Context, prm syncContractPrm) (util.Uint160, error) {
	addr := state.CreateContractHash(prm.actor.Sender(), prm.common.NEF.Checksum, prm.common.Manifest.Name)
	l := prm.logger.With(zap.String("contract", prm.common.Manifest.Name), zap.Stringer("address", addr))

	_, err := prm.blockchain.GetContractStateByHash(addr)
	if err == nil {
		l.Info("contract is already deployed, skip")
		return addr, nil
	}

	if !isErrContractNotFound(err) {
		return addr, fmt.Errorf("get contract state: %w", err)
	}

	l.Info("contract is missing on the chain, deploying...")

	var data any
	if args := prm.buildDeployData(); args != nil {
		data = args
	}

	txHash, vub, err := management.New(prm.actor).Deploy(&prm.common.NEF, &prm.common.Manifest, data)
	err = waitHalt(ctx, prm.actor, txHash, vub, err)
	if err != nil {
		return addr, fmt.Errorf("deploy contract: %w", err)
	}

	l.Info("contract successfully deployed", zap.Stringer("tx", txHash))

	return addr, nil
}

// setTokenManager makes the bank the token manager unless it is already.
func setTokenManager(ctx context.Context, l *zap.Logger, act *actor.Actor, tokenAddr, bankAddr util.Uint160) error {
	token := tokenrpc.New(act, tokenAddr)

	manager, err := token.Manager()
	if err != nil {
		return fmt.Errorf("get current token manager: %w", err)
	}

	if manager.Equals(bankAddr) {
		l.Info("bank is already the token manager, skip")
		return nil
	}

	if !manager.Equals(act.Sender()) {
		return fmt.Errorf("token is managed by %s, not by the local account", manager.StringLE())
	}

	txHash, vub, err := token.SetManager(bankAddr)
	err = waitHalt(ctx, act, txHash, vub, err)
	if err != nil {
		return err
	}

	l.Info("token manager changed to the bank", zap.Stringer("tx", txHash))

	return nil
}

// waitHalt waits for the sent transaction to be accepted and checks that it
// has been successfully executed.
func waitHalt(ctx context.Context, act *actor.Actor, txHash util.Uint256, vub uint32, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	res, err := act.WaitAny(ctx, vub, txHash)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", txHash.StringLE(), res.FaultException)
	}

	return nil
}

func tokenDeployData(prm TokenContractPrm, owner util.Uint160) []any {
	return []any{
		prm.Name,
		prm.Symbol,
		prm.Decimals,
		prm.InitialSupply,
		owner,
	}
}

func bankDeployData(prm BankContractPrm, token util.Uint160) []any {
	managers := make([]any, len(prm.Managers))
	for i := range prm.Managers {
		managers[i] = prm.Managers[i]
	}

	res := []any{token, managers, prm.Threshold}
	if prm.RewardPerBlock != nil {
		res = append(res, prm.RewardPerBlock)
	}

	return res
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
