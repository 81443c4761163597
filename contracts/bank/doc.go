/*
Package bank implements the staking contract for the token contract.

Accounts stake tokens previously approved to the bank and earn a fixed
amount of tokens for every block their stake is kept in the bank. Rewards
are settled on every stake movement of the account (Stake, Withdraw, Claim)
and minted by the token contract, so the bank must be the token manager.

Reward per block is changed only after managers confirm the change in the
current confirmation round (see common.Confirm). The round is satisfied when
the number of confirmed managers reaches the threshold set at deploy time.
Applying the change starts a new empty round.

# Contract notifications

Stake notification. It is produced when an account locks tokens.

	Stake:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

Withdraw notification. It is produced when staked tokens are returned.

	Withdraw:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

Reward notification. It is produced when accrued reward is minted to the
account.

	Reward:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer

Confirmation notification. It is produced when a manager confirms the
current round for the first time. Count is the number of unique
confirmations in the round.

	Confirmation:
	  - name: manager
	    type: Hash160
	  - name: count
	    type: Integer

RewardPerBlock notification. It is produced when the reward per block is
changed.

	RewardPerBlock:
	  - name: amount
	    type: Integer
*/
package bank

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'token' -> interop.Hash160
    script hash of the staked token contract
  - 'rewardPerBlock' -> int
    amount of tokens paid for every staked block
  - 'totalStaked' -> int
    amount of tokens staked by all accounts
  - s<interop.Hash160> -> std.Serialize(Position)
    stake and the last settled block of the account
  - 'managers' -> std.Serialize([]interop.Hash160)
    fixed manager set
  - 'threshold' -> int
    confirmations required by a round
  - 'round' -> std.Serialize([]interop.Hash160)
    managers that confirmed the current round
*/
