/*
Package token implements the fungible token contract that is staked in the
bank contract and used to pay staking rewards.

Token balances change only through minting, transfers and allowance-based
transfers, so the sum of all balances is always equal to the total supply.
Minting is restricted to the manager account. The manager is the deploying
owner at first and is usually passed to the bank contract with SetManager,
so the bank can mint rewards.

Transfer methods are invoked either by the owner of the moved assets or by a
contract whose script hash is the owner (see common.IsUsableAddress). A
failed transfer aborts the transaction with "insufficient balance" or
"insufficient allowance" reason.

# Contract notifications

Transfer notification. It is produced on every balance movement including
minting, where `from` is null.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Approval notification. It is produced on every allowance change. Owner of
the allowance is the witness of the transaction.

	Approval:
	  - name: spender
	    type: Hash160
	  - name: amount
	    type: Integer

SetManager notification. It is produced when mint authority is passed to
another account.

	SetManager:
	  - name: manager
	    type: Hash160
*/
package token

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'name' -> string
    human readable token name
  - 'symbol' -> string
    ticker symbol
  - 'decimals' -> int
    precision of balances
  - 'totalSupply' -> int
    amount of minted tokens
  - 'manager' -> interop.Hash160
    mint authority
  - a<interop.Hash160> -> int
    non-zero balances
  - l<interop.Hash160 owner><interop.Hash160 spender> -> int
    non-zero allowances
*/
