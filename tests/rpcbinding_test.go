package tests

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	bankrpc "github.com/tinybank-dev/tinybank-contract/rpc/bank"
	nativebankrpc "github.com/tinybank-dev/tinybank-contract/rpc/nativebank"
	tokenrpc "github.com/tinybank-dev/tinybank-contract/rpc/token"
)

func applicationLog(t *testing.T, e *neotest.Executor, h util.Uint256) *result.ApplicationLog {
	aer := e.GetTxExecResult(t, h)
	return &result.ApplicationLog{
		Container:  aer.Container,
		Executions: []state.Execution{aer.Execution},
	}
}

func requireAmount(t *testing.T, expected, actual *big.Int) {
	require.Zero(t, expected.Cmp(actual), "expected %s, got %s", expected, actual)
}

func TestTokenEventsFromApplicationLog(t *testing.T) {
	c := newTokenInvoker(t)
	acc := c.NewAccount(t)

	_, err := tokenrpc.TransferEventsFromApplicationLog(nil)
	require.Error(t, err)

	h := c.Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), mt("5"))
	transfers, err := tokenrpc.TransferEventsFromApplicationLog(applicationLog(t, c.Executor, h))
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, util.Uint160{}, transfers[0].From)
	require.Equal(t, acc.ScriptHash(), transfers[0].To)
	requireAmount(t, mt("5"), transfers[0].Amount)

	h = c.Invoke(t, stackitem.Null{}, "approve", c.CommitteeHash, acc.ScriptHash(), mt("2"))
	approvals, err := tokenrpc.ApprovalEventsFromApplicationLog(applicationLog(t, c.Executor, h))
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	require.Equal(t, acc.ScriptHash(), approvals[0].Spender)
	requireAmount(t, mt("2"), approvals[0].Amount)

	h = c.Invoke(t, stackitem.Null{}, "setManager", acc.ScriptHash())
	managers, err := tokenrpc.SetManagerEventsFromApplicationLog(applicationLog(t, c.Executor, h))
	require.NoError(t, err)
	require.Equal(t, []*tokenrpc.SetManagerEvent{{Manager: acc.ScriptHash()}}, managers)
}

func TestBankEventsFromApplicationLog(t *testing.T) {
	b := newBankTest(t)

	h := b.stake(t, b.e.Committee, mt("50"))
	log := applicationLog(t, b.e, h)

	stakes, err := bankrpc.StakeEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	require.Equal(t, b.e.CommitteeHash, stakes[0].Account)
	requireAmount(t, mt("50"), stakes[0].Amount)

	rewards, err := bankrpc.RewardEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Empty(t, rewards)

	h = b.bank.Invoke(t, stackitem.Null{}, "withdraw", b.e.CommitteeHash, mt("50"))
	log = applicationLog(t, b.e, h)

	withdrawals, err := bankrpc.WithdrawEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	require.Equal(t, b.e.CommitteeHash, withdrawals[0].Account)
	requireAmount(t, mt("50"), withdrawals[0].Amount)

	rewards, err = bankrpc.RewardEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	require.Equal(t, b.e.CommitteeHash, rewards[0].Account)
	require.Equal(t, 1, rewards[0].Amount.Sign())

	h = b.bank.WithSigners(b.managers[1]).Invoke(t, stackitem.Null{}, "confirm")
	confirmations, err := bankrpc.ConfirmationEventsFromApplicationLog(applicationLog(t, b.e, h))
	require.NoError(t, err)
	require.Len(t, confirmations, 1)
	require.Equal(t, b.managers[1].ScriptHash(), confirmations[0].Manager)
	require.EqualValues(t, 1, confirmations[0].Count.Int64())

	b.bank.WithSigners(b.managers[0]).Invoke(t, stackitem.Null{}, "confirm")
	b.bank.WithSigners(b.managers[2]).Invoke(t, stackitem.Null{}, "confirm")
	h = b.bank.Invoke(t, stackitem.Null{}, "setRewardPerBlock", mt("3"))

	values, err := bankrpc.RewardPerBlockEventsFromApplicationLog(applicationLog(t, b.e, h))
	require.NoError(t, err)
	require.Len(t, values, 1)
	requireAmount(t, mt("3"), values[0].Value)
}

func TestNativeBankEventsFromApplicationLog(t *testing.T) {
	c, gas := newNativeBankInvoker(t)
	acc := c.NewAccount(t)

	h := gas.WithSigners(acc).Invoke(t, true, "transfer", acc.ScriptHash(), c.Hash, int64(10_0000_0000), nil)
	deposits, err := nativebankrpc.DepositEventsFromApplicationLog(applicationLog(t, c.Executor, h))
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, acc.ScriptHash(), deposits[0].From)
	require.EqualValues(t, 10_0000_0000, deposits[0].Amount.Int64())

	h = c.WithSigners(acc).Invoke(t, stackitem.Null{}, "withdraw", acc.ScriptHash())
	withdrawals, err := nativebankrpc.WithdrawEventsFromApplicationLog(applicationLog(t, c.Executor, h))
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	require.Equal(t, acc.ScriptHash(), withdrawals[0].Account)
	require.EqualValues(t, 10_0000_0000, withdrawals[0].Amount.Int64())
}
