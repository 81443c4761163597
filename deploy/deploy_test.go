package deploy

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/consensus"
	"github.com/nspcc-dev/neo-go/pkg/core"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/network"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/services/rpcsrv"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	bankrpc "github.com/tinybank-dev/tinybank-contract/rpc/bank"
	nativebankrpc "github.com/tinybank-dev/tinybank-contract/rpc/nativebank"
	tokenrpc "github.com/tinybank-dev/tinybank-contract/rpc/token"
	"go.uber.org/zap/zaptest"
)

func TestBankDeployData(t *testing.T) {
	var (
		token = util.Uint160{1}
		m1    = util.Uint160{2}
		m2    = util.Uint160{3}
	)

	prm := BankContractPrm{
		Managers:  []util.Uint160{m1, m2},
		Threshold: 2,
	}

	require.Equal(t, []any{token, []any{m1, m2}, int64(2)}, bankDeployData(prm, token))

	prm.RewardPerBlock = big.NewInt(5)
	require.Equal(t, []any{token, []any{m1, m2}, int64(2), big.NewInt(5)}, bankDeployData(prm, token))
}

func TestTokenDeployData(t *testing.T) {
	owner := util.Uint160{1, 2, 3}

	require.Equal(t, []any{"MyToken", "MT", int64(18), int64(100), owner}, tokenDeployData(TokenContractPrm{
		Name:          "MyToken",
		Symbol:        "MT",
		Decimals:      18,
		InitialSupply: 100,
	}, owner))
}

func TestContractDeploy(t *testing.T) {
	validatorAcc, err := wallet.NewAccount()
	require.NoError(t, err)

	var validatorMulti = new(wallet.Account)
	*validatorMulti = *validatorAcc
	err = validatorMulti.ConvertMultisig(1, []*keys.PublicKey{validatorAcc.PublicKey()})
	require.NoError(t, err)

	walletPath := filepath.Join(t.TempDir(), "wallet.json")

	wlt, err := wallet.NewWallet(walletPath)
	require.NoError(t, err)

	err = validatorAcc.Encrypt("", keys.NEP2ScryptParams())
	require.NoError(t, err)
	wlt.AddAccount(validatorAcc)
	require.NoError(t, wlt.Save())

	var (
		cfg = config.Config{
			ApplicationConfiguration: config.ApplicationConfiguration{
				RPC: config.RPC{
					BasicService: config.BasicService{
						Enabled: true,
					},
					MaxGasInvoke: fixedn.Fixed8FromInt64(50),
				},
				Consensus: config.Consensus{
					Enabled: true,
					UnlockWallet: config.Wallet{
						Path:     walletPath,
						Password: "",
					},
				},
			},
			ProtocolConfiguration: config.ProtocolConfiguration{
				Magic:                       netmode.UnitTestNet,
				MaxTraceableBlocks:          1000,
				MaxValidUntilBlockIncrement: 1000 / 2,
				TimePerBlock:                50 * time.Millisecond,
				StandbyCommittee:            []string{hex.EncodeToString(validatorAcc.PublicKey().Bytes())},
				ValidatorsCount:             1,
				VerifyTransactions:          true,
			},
		}
		logger = zaptest.NewLogger(t)
		store  = storage.NewMemoryStore()
	)

	bc, err := core.NewBlockchain(store, config.Blockchain{ProtocolConfiguration: cfg.ProtocolConfiguration}, logger)
	require.NoError(t, err)
	go bc.Run()
	t.Cleanup(bc.Close)

	serverConfig, err := network.NewServerConfig(config.Config{ProtocolConfiguration: cfg.ProtocolConfiguration})
	require.NoError(t, err)
	serverConfig.UserAgent = fmt.Sprintf(config.UserAgentFormat, "something")
	netSrv, err := network.NewServer(serverConfig, bc, bc.GetStateSyncModule(), logger)
	require.NoError(t, err)
	cons, err := consensus.NewService(consensus.Config{
		Logger:                logger,
		Broadcast:             netSrv.BroadcastExtensible,
		Chain:                 bc,
		BlockQueue:            netSrv.GetBlockQueue(),
		ProtocolConfiguration: cfg.ProtocolConfiguration,
		RequestTx:             netSrv.RequestTx,
		StopTxFlow:            netSrv.StopTxFlow,
		TimePerBlock:          cfg.ProtocolConfiguration.TimePerBlock,
		Wallet:                cfg.ApplicationConfiguration.Consensus.UnlockWallet,
	})
	require.NoError(t, err)
	netSrv.AddConsensusService(cons, cons.OnPayload, cons.OnTransaction)
	go netSrv.Start()
	t.Cleanup(netSrv.Shutdown)

	errCh := make(chan error, 2)
	rpcServer := rpcsrv.New(bc, cfg.ApplicationConfiguration.RPC, netSrv, nil, logger, errCh)
	rpcServer.Start()
	t.Cleanup(rpcServer.Shutdown)

	rpcClient, err := rpcclient.NewInternal(context.TODO(), rpcServer.RegisterLocal)
	require.NoError(t, err)
	require.NoError(t, rpcClient.Init())

	// committee multi-sig account owns all GAS of the fresh network
	owner := validatorMulti.ScriptHash()
	manager := util.Uint160{1, 2, 3}

	deployPrm := Prm{
		Logger:       logger,
		Blockchain:   rpcClient,
		LocalAccount: validatorMulti,
		TokenContract: TokenContractPrm{
			Name:          "MyToken",
			Symbol:        "MT",
			Decimals:      18,
			InitialSupply: 100,
		},
		BankContract: BankContractPrm{
			Managers:  []util.Uint160{owner, manager},
			Threshold: 2,
		},
	}

	compileContract(t, owner, "token", &deployPrm.TokenContract.Common)
	compileContract(t, owner, "bank", &deployPrm.BankContract.Common)
	compileContract(t, owner, "nativebank", &deployPrm.NativeBankContract.Common)

	ctx, cancel := context.WithTimeout(context.TODO(), 2*time.Minute)
	res, err := Deploy(ctx, deployPrm)
	cancel()
	require.NoError(t, err)

	inv := invoker.New(rpcClient, nil)

	token := tokenrpc.NewReader(inv, res.Token)
	tokenManager, err := token.Manager()
	require.NoError(t, err)
	require.Equal(t, res.Bank, tokenManager)

	decimals, err := token.Decimals()
	require.NoError(t, err)
	require.EqualValues(t, 18, decimals)

	supply, err := token.BalanceOf(owner)
	require.NoError(t, err)
	require.Equal(t, "100000000000000000000", supply.String())

	bank := bankrpc.NewReader(inv, res.Bank)
	bankToken, err := bank.Token()
	require.NoError(t, err)
	require.Equal(t, res.Token, bankToken)

	managers, err := bank.Managers()
	require.NoError(t, err)
	require.Equal(t, []util.Uint160{owner, manager}, managers)

	threshold, err := bank.Threshold()
	require.NoError(t, err)
	require.EqualValues(t, 2, threshold.Int64())

	balance, err := nativebankrpc.NewReader(inv, res.NativeBank).BalanceOf(owner)
	require.NoError(t, err)
	require.Zero(t, balance.Sign())

	t.Run("repeated", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.TODO(), 2*time.Minute)
		defer cancel()

		again, err := Deploy(ctx, deployPrm)
		require.NoError(t, err)
		require.Equal(t, res, again)
	})
}

func compileContract(t *testing.T, sender util.Uint160, name string, prm *CommonDeployPrm) {
	ctrPath := filepath.Join("..", "contracts", name)
	c := neotest.CompileFile(t, sender, ctrPath, filepath.Join(ctrPath, "config.yml"))

	prm.NEF = *c.NEF
	prm.Manifest = *c.Manifest
}
