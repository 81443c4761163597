package bank

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/math"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/ledger"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/tinybank-dev/tinybank-contract/common"
)

type (
	// Position is a stake of a single account.
	Position struct {
		// Amount of staked tokens
		Staked int
		// Index of the block rewards were settled at
		LastBlock int
	}
)

const (
	// ErrInsufficientStake is thrown when an account withdraws more than it
	// has staked.
	ErrInsufficientStake = "insufficient stake"
	// ErrNonPositiveAmount is thrown for zero or negative stake movements.
	ErrNonPositiveAmount = "amount must be positive"

	tokenKey       = "token"
	rewardKey      = "rewardPerBlock"
	totalStakedKey = "totalStaked"
	stakePrefix    = 's'
)

// _deploy stores token contract, manager set and initial reward per block.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.([]any)
	if len(args) < 3 {
		panic("token, managers and threshold must be provided")
	}

	tokenHash := args[0].(interop.Hash160)
	if len(tokenHash) != interop.Hash160Len {
		panic("incorrect length of token script hash")
	}

	common.InitGate(ctx, args[1].([]interop.Hash160), args[2].(int))

	var reward int
	if len(args) > 3 {
		reward = args[3].(int)
	} else {
		// one whole token per block
		decimals := contract.Call(tokenHash, "decimals", contract.ReadOnly).(int)
		reward = math.Pow(10, decimals)
	}

	if reward < 0 {
		panic("negative reward")
	}

	storage.Put(ctx, tokenKey, tokenHash)
	common.PutInt(ctx, rewardKey, reward)

	runtime.Log("bank contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic(common.ErrUpdateAccessDenied)
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("bank contract updated")
}

// Stake locks tokens of the account in the bank. The account must approve
// at least amount tokens to the bank in the token contract beforehand.
// Rewards accrued for the previous stake are paid before the new stake
// starts earning.
//
// It produces Stake notification and Reward notification if there was
// anything to pay.
func Stake(account interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(account)

	if amount <= 0 {
		panic(ErrNonPositiveAmount)
	}

	var (
		tokenHash = getToken(ctx)
		bank      = runtime.GetExecutingScriptHash()
	)

	reward, pos := settle(ctx, account)

	pos.Staked += amount
	putPosition(ctx, account, pos)
	common.PutInt(ctx, totalStakedKey, common.GetInt(ctx, totalStakedKey)+amount)

	payReward(tokenHash, account, reward)

	contract.Call(tokenHash, "transferFrom", contract.All, bank, account, bank, amount)

	runtime.Notify("Stake", account, amount)
}

// Withdraw returns amount of staked tokens back to the account. Accrued
// rewards are paid together with the returned stake.
//
// It produces Withdraw notification and Reward notification if there was
// anything to pay.
func Withdraw(account interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(account)

	if amount <= 0 {
		panic(ErrNonPositiveAmount)
	}

	reward, pos := settle(ctx, account)
	if pos.Staked < amount {
		panic(ErrInsufficientStake)
	}

	pos.Staked -= amount
	putPosition(ctx, account, pos)
	common.PutInt(ctx, totalStakedKey, common.GetInt(ctx, totalStakedKey)-amount)

	var (
		tokenHash = getToken(ctx)
		bank      = runtime.GetExecutingScriptHash()
	)

	payReward(tokenHash, account, reward)

	contract.Call(tokenHash, "transfer", contract.All, bank, account, amount)

	runtime.Notify("Withdraw", account, amount)
}

// Claim pays rewards accrued by the account stake without changing it.
//
// It produces Reward notification if there was anything to pay.
func Claim(account interop.Hash160) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(account)

	reward, pos := settle(ctx, account)
	putPosition(ctx, account, pos)

	payReward(getToken(ctx), account, reward)
}

// Confirm adds the invoking manager to the current confirmation round. It
// can be invoked only by one of the managers.
//
// It produces Confirmation notification on the first confirmation of the
// manager in the round.
func Confirm() {
	ctx := storage.GetContext()
	common.Confirm(ctx)
}

// SetRewardPerBlock changes amount of tokens paid for every staked block.
// It can be invoked by a manager when the current confirmation round has
// been satisfied. Successful call starts a new round, so the next change
// requires fresh confirmations.
//
// It produces RewardPerBlock notification.
func SetRewardPerBlock(value int) {
	ctx := storage.GetContext()

	common.CheckSatisfied(ctx)

	if len(common.ManagerInvoker(ctx)) == 0 {
		panic(common.ErrNotAManager)
	}

	if value < 0 {
		panic("negative reward")
	}

	common.PutInt(ctx, rewardKey, value)
	common.ResetRound(ctx)

	runtime.Log("reward per block changed")
	runtime.Notify("RewardPerBlock", value)
}

// Staked returns amount of tokens staked by the account.
func Staked(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getPosition(ctx, account).Staked
}

// TotalStaked returns amount of tokens staked by all accounts.
func TotalStaked() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, totalStakedKey)
}

// RewardPerBlock returns amount of tokens paid for every staked block.
func RewardPerBlock() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, rewardKey)
}

// Earned returns rewards accrued by the account and not paid yet.
func Earned(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	reward, _ := settle(ctx, account)
	return reward
}

// Token returns script hash of the staked token contract.
func Token() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getToken(ctx)
}

// Managers returns the manager set of the bank.
func Managers() []interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return common.Managers(ctx)
}

// Threshold returns the number of confirmations required to change reward.
func Threshold() int {
	ctx := storage.GetReadOnlyContext()
	return common.Threshold(ctx)
}

// Confirmations returns managers that confirmed the current round.
func Confirmations() []interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return common.Confirmations(ctx)
}

// IsSatisfied checks whether the current round collected enough
// confirmations.
func IsSatisfied() bool {
	ctx := storage.GetReadOnlyContext()
	return common.RoundState(ctx) == common.RoundSatisfied
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// accrued returns reward for the stake kept from block `from` to block `to`.
func accrued(staked, perBlock, from, to int) int {
	if staked <= 0 || to <= from {
		return 0
	}

	return perBlock * (to - from)
}

// settle returns reward accrued by the account up to the current block and
// the position moved to the current block. Position is not stored.
func settle(ctx storage.Context, account interop.Hash160) (int, Position) {
	var (
		pos     = getPosition(ctx, account)
		current = ledger.CurrentIndex()
		reward  = accrued(pos.Staked, common.GetInt(ctx, rewardKey), pos.LastBlock, current)
	)

	pos.LastBlock = current

	return reward, pos
}

func payReward(tokenHash, account interop.Hash160, reward int) {
	if reward == 0 {
		return
	}

	contract.Call(tokenHash, "mint", contract.All, account, reward)
	runtime.Notify("Reward", account, reward)
}

func getToken(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, tokenKey).(interop.Hash160)
}

func getPosition(ctx storage.Context, account interop.Hash160) Position {
	data := storage.Get(ctx, append([]byte{stakePrefix}, account...))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Position)
	}

	return Position{}
}

// putPosition stores the position or removes it when the whole stake has
// been withdrawn.
func putPosition(ctx storage.Context, account interop.Hash160, pos Position) {
	key := append([]byte{stakePrefix}, account...)
	if pos.Staked == 0 {
		storage.Delete(ctx, key)
		return
	}

	common.SetSerialized(ctx, key, pos)
}
