/*
Package nativebank implements the contract that keeps deposits of native
GAS.

Any GAS transfer to the contract is a deposit of the sender. Deposited GAS
can only be withdrawn as a whole by its owner.

# Contract notifications

Deposit notification. It is produced when GAS is received.

	Deposit:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. It is produced when the whole deposit is returned.

	Withdraw:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package nativebank

/*
Contract storage model.

# Summary
Key-value storage format:
  - a<interop.Hash160> -> int
    non-zero GAS deposits
*/
