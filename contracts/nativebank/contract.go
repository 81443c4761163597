package nativebank

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/tinybank-dev/tinybank-contract/common"
)

const (
	// ErrNothingToWithdraw is thrown when withdrawing account has no
	// deposited GAS.
	ErrNothingToWithdraw = "nothing to withdraw"
	// ErrOnlyGAS is thrown when the contract receives anything but GAS.
	ErrOnlyGAS = "only GAS can be accepted for deposit"

	accPrefix = 'a'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("native bank contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic(common.ErrUpdateAccessDenied)
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("native bank contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Every GAS transfer to the contract is a deposit of the sender.
//
// It produces Deposit notification.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		panic(ErrOnlyGAS)
	}

	if amount <= 0 {
		panic("amount must be positive")
	}

	if len(from) != interop.Hash160Len {
		panic("invalid sender")
	}

	ctx := storage.GetContext()
	key := append([]byte{accPrefix}, from...)
	common.PutInt(ctx, key, common.GetInt(ctx, key)+amount)

	runtime.Log("funds have been deposited")
	runtime.Notify("Deposit", from, amount)
}

// Withdraw transfers the whole deposited GAS back to the account. It can be
// invoked only by the account owner.
//
// It produces Withdraw notification.
func Withdraw(account interop.Hash160) {
	common.CheckOwnerWitness(account)

	ctx := storage.GetContext()
	key := append([]byte{accPrefix}, account...)

	amount := common.GetInt(ctx, key)
	if amount == 0 {
		panic(ErrNothingToWithdraw)
	}

	storage.Delete(ctx, key)

	transferred := gas.Transfer(runtime.GetExecutingScriptHash(), account, amount, nil)
	if !transferred {
		panic("failed to transfer funds, aborting")
	}

	runtime.Log("funds have been transferred")
	runtime.Notify("Withdraw", account, amount)
}

// BalanceOf returns amount of GAS deposited by the account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, append([]byte{accPrefix}, account...))
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}
