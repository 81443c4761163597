package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"github.com/tinybank-dev/tinybank-contract/common"
	"github.com/tinybank-dev/tinybank-contract/contracts/token"
)

const tokenPath = "../contracts/token"

const (
	tokenName     = "MyToken"
	tokenSymbol   = "MT"
	tokenDecimals = 18
	mintingAmount = 100
)

func deployTokenContract(t *testing.T, e *neotest.Executor, owner util.Uint160) util.Uint160 {
	args := make([]any, 5)
	args[0] = tokenName
	args[1] = tokenSymbol
	args[2] = int64(tokenDecimals)
	args[3] = int64(mintingAmount)
	args[4] = owner

	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, c, args)
	return c.Hash
}

func newTokenInvoker(t *testing.T) *neotest.ContractInvoker {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	return e.CommitteeInvoker(h)
}

// mt converts decimal amount of MT tokens to the integer amount.
func mt(amount string) *big.Int {
	return parseUnits(amount, tokenDecimals)
}

func TestTokenGeneric(t *testing.T) {
	c := newTokenInvoker(t)

	c.Invoke(t, tokenName, "name")
	c.Invoke(t, tokenSymbol, "symbol")
	c.Invoke(t, tokenDecimals, "decimals")
	c.Invoke(t, mt("100"), "totalSupply")
	c.Invoke(t, mt("100"), "balanceOf", c.CommitteeHash)
	c.Invoke(t, 0, "balanceOf", c.NewAccount(t).ScriptHash())
	c.Invoke(t, stackitem.NewBuffer(c.CommitteeHash.BytesBE()), "manager")
}

func TestTokenTransfer(t *testing.T) {
	c := newTokenInvoker(t)
	acc := c.NewAccount(t)

	h := c.Invoke(t, stackitem.Null{}, "transfer", c.CommitteeHash, acc.ScriptHash(), mt("0.5"))
	checkNotification(t, c.Executor, h, c.Hash, "Transfer", c.CommitteeHash, acc.ScriptHash(), mt("0.5"))

	c.Invoke(t, mt("0.5"), "balanceOf", acc.ScriptHash())
	c.Invoke(t, mt("99.5"), "balanceOf", c.CommitteeHash)

	t.Run("insufficient balance", func(t *testing.T) {
		c.InvokeFail(t, token.ErrInsufficientBalance, "transfer",
			c.CommitteeHash, acc.ScriptHash(), mt("101"))

		c.Invoke(t, mt("0.5"), "balanceOf", acc.ScriptHash())
		c.Invoke(t, mt("99.5"), "balanceOf", c.CommitteeHash)
	})

	t.Run("not witnessed by sender", func(t *testing.T) {
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "transfer",
			c.CommitteeHash, acc.ScriptHash(), mt("1"))
	})

	t.Run("negative amount", func(t *testing.T) {
		c.InvokeFail(t, token.ErrNegativeAmount, "transfer",
			c.CommitteeHash, acc.ScriptHash(), int64(-1))
	})

	t.Run("self transfer", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, "transfer", c.CommitteeHash, c.CommitteeHash, mt("10"))
		c.Invoke(t, mt("99.5"), "balanceOf", c.CommitteeHash)
	})

	t.Run("whole balance", func(t *testing.T) {
		cAcc := c.WithSigners(acc)
		cAcc.Invoke(t, stackitem.Null{}, "transfer", acc.ScriptHash(), c.CommitteeHash, mt("0.5"))
		c.Invoke(t, 0, "balanceOf", acc.ScriptHash())
		c.Invoke(t, mt("100"), "balanceOf", c.CommitteeHash)
	})
}

func TestTokenApproveTransferFrom(t *testing.T) {
	c := newTokenInvoker(t)
	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	t.Run("without approval", func(t *testing.T) {
		cAcc.InvokeFail(t, token.ErrInsufficientAllowance, "transferFrom",
			acc.ScriptHash(), c.CommitteeHash, acc.ScriptHash(), mt("1"))
	})

	h := c.Invoke(t, stackitem.Null{}, "approve", c.CommitteeHash, acc.ScriptHash(), mt("10"))
	checkNotification(t, c.Executor, h, c.Hash, "Approval", acc.ScriptHash(), mt("10"))
	c.Invoke(t, mt("10"), "allowance", c.CommitteeHash, acc.ScriptHash())

	t.Run("approval is not additive", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, "approve", c.CommitteeHash, acc.ScriptHash(), mt("3"))
		c.Invoke(t, mt("3"), "allowance", c.CommitteeHash, acc.ScriptHash())
		c.Invoke(t, stackitem.Null{}, "approve", c.CommitteeHash, acc.ScriptHash(), mt("10"))
	})

	t.Run("only owner can approve", func(t *testing.T) {
		cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "approve",
			c.CommitteeHash, acc.ScriptHash(), mt("50"))
	})

	t.Run("only spender can spend", func(t *testing.T) {
		c.InvokeFail(t, common.ErrWitnessFailed, "transferFrom",
			acc.ScriptHash(), c.CommitteeHash, c.CommitteeHash, mt("1"))
	})

	h = cAcc.Invoke(t, stackitem.Null{}, "transferFrom",
		acc.ScriptHash(), c.CommitteeHash, acc.ScriptHash(), mt("10"))
	checkNotification(t, c.Executor, h, c.Hash, "Transfer", c.CommitteeHash, acc.ScriptHash(), mt("10"))

	c.Invoke(t, mt("10"), "balanceOf", acc.ScriptHash())
	c.Invoke(t, mt("90"), "balanceOf", c.CommitteeHash)
	c.Invoke(t, 0, "allowance", c.CommitteeHash, acc.ScriptHash())

	cAcc.InvokeFail(t, token.ErrInsufficientAllowance, "transferFrom",
		acc.ScriptHash(), c.CommitteeHash, acc.ScriptHash(), mt("10"))

	t.Run("allowance above balance", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, "approve", c.CommitteeHash, acc.ScriptHash(), mt("1000"))
		cAcc.InvokeFail(t, token.ErrInsufficientBalance, "transferFrom",
			acc.ScriptHash(), c.CommitteeHash, acc.ScriptHash(), mt("91"))
		c.Invoke(t, mt("1000"), "allowance", c.CommitteeHash, acc.ScriptHash())
	})
}

func TestTokenMint(t *testing.T) {
	c := newTokenInvoker(t)
	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	h := c.Invoke(t, stackitem.Null{}, "mint", acc.ScriptHash(), mt("5"))
	checkNotification(t, c.Executor, h, c.Hash, "Transfer", nil, acc.ScriptHash(), mt("5"))

	c.Invoke(t, mt("105"), "totalSupply")
	c.Invoke(t, mt("5"), "balanceOf", acc.ScriptHash())

	cAcc.InvokeFail(t, token.ErrUnauthorized, "mint", acc.ScriptHash(), mt("5"))
	cAcc.InvokeFail(t, token.ErrUnauthorized, "setManager", acc.ScriptHash())

	h = c.Invoke(t, stackitem.Null{}, "setManager", acc.ScriptHash())
	checkNotification(t, c.Executor, h, c.Hash, "SetManager", acc.ScriptHash())
	c.Invoke(t, stackitem.NewBuffer(acc.ScriptHash().BytesBE()), "manager")

	c.InvokeFail(t, token.ErrUnauthorized, "mint", c.CommitteeHash, mt("5"))
	cAcc.Invoke(t, stackitem.Null{}, "mint", c.CommitteeHash, mt("5"))

	c.Invoke(t, mt("110"), "totalSupply")
	c.Invoke(t, mt("105"), "balanceOf", c.CommitteeHash)
}

func TestTokenSupplyConservation(t *testing.T) {
	c := newTokenInvoker(t)

	accs := []neotest.Signer{c.Committee, c.NewAccount(t), c.NewAccount(t), c.NewAccount(t)}

	checkSupply := func(t *testing.T) {
		balances := make([]*big.Int, len(accs))
		for i := range accs {
			balances[i] = getInt(t, c, "balanceOf", accs[i].ScriptHash())
			require.True(t, balances[i].Sign() >= 0)
		}
		require.Equal(t, getInt(t, c, "totalSupply"), sum(balances...))
	}

	c.Invoke(t, stackitem.Null{}, "transfer", accs[0].ScriptHash(), accs[1].ScriptHash(), mt("30"))
	checkSupply(t)

	c.Invoke(t, stackitem.Null{}, "mint", accs[2].ScriptHash(), mt("7.25"))
	checkSupply(t)

	c.WithSigners(accs[1]).Invoke(t, stackitem.Null{}, "approve",
		accs[1].ScriptHash(), accs[3].ScriptHash(), mt("20"))
	c.WithSigners(accs[3]).Invoke(t, stackitem.Null{}, "transferFrom",
		accs[3].ScriptHash(), accs[1].ScriptHash(), accs[2].ScriptHash(), mt("12"))
	checkSupply(t)

	c.WithSigners(accs[2]).InvokeFail(t, token.ErrInsufficientBalance, "transfer",
		accs[2].ScriptHash(), accs[0].ScriptHash(), mt("20"))
	checkSupply(t)

	c.WithSigners(accs[2]).Invoke(t, stackitem.Null{}, "transfer",
		accs[2].ScriptHash(), accs[0].ScriptHash(), mt("19.25"))
	checkSupply(t)

	c.Invoke(t, 0, "balanceOf", accs[2].ScriptHash())
	c.Invoke(t, mt("107.25"), "totalSupply")
}
