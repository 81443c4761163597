package tests

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// getInt returns integer result of the read-only method invocation.
func getInt(t *testing.T, c *neotest.ContractInvoker, method string, args ...any) *big.Int {
	s, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)

	n, err := s.Pop().Item().TryInteger()
	require.NoError(t, err)
	return n
}

// txHeight returns index of the block with the transaction.
func txHeight(t *testing.T, e *neotest.Executor, h util.Uint256) int64 {
	_, height, err := e.Chain.GetTransaction(h)
	require.NoError(t, err)
	return int64(height)
}

// checkNotification checks that the transaction produced notification of
// the contract with the given name and arguments.
func checkNotification(t *testing.T, e *neotest.Executor, h util.Uint256, contract util.Uint160, name string, args ...any) {
	aer := e.GetTxExecResult(t, h)

	for _, ev := range aer.Events {
		if !ev.ScriptHash.Equals(contract) || ev.Name != name {
			continue
		}

		items, ok := ev.Item.Value().([]stackitem.Item)
		require.True(t, ok)
		require.Len(t, items, len(args), "arguments of %s notification", name)

		for i := range args {
			expected := stackitem.Make(args[i])
			require.True(t, expected.Equals(items[i]),
				"argument #%d of %s notification: expected %v, got %v", i, name, expected, items[i])
		}
		return
	}

	require.Failf(t, "missing notification", "%s notification was not produced", name)
}

// checkNoNotification checks that the transaction did not produce
// notification of the contract with the given name.
func checkNoNotification(t *testing.T, e *neotest.Executor, h util.Uint256, contract util.Uint160, name string) {
	aer := e.GetTxExecResult(t, h)

	for _, ev := range aer.Events {
		require.False(t, ev.ScriptHash.Equals(contract) && ev.Name == name,
			"unexpected %s notification", name)
	}
}
