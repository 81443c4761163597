package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/math"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/tinybank-dev/tinybank-contract/common"
)

type (
	// Token holds storage layout of the token metadata.
	Token struct {
		// Human readable token name
		NameKey string
		// Ticker symbol
		SymbolKey string
		// Amount of decimals
		DecimalsKey string
		// Storage key for circulation value
		CirculationKey string
		// Storage key of the mint authority
		ManagerKey string
	}
)

const (
	// ErrInsufficientBalance is thrown when the sender has less tokens than
	// it tries to move.
	ErrInsufficientBalance = "insufficient balance"
	// ErrInsufficientAllowance is thrown when the spender is allowed to move
	// less tokens than requested.
	ErrInsufficientAllowance = "insufficient allowance"
	// ErrUnauthorized is thrown when a manager-only method is invoked by
	// somebody else.
	ErrUnauthorized = "unauthorized"
	// ErrNegativeAmount is thrown for negative token amounts.
	ErrNegativeAmount = "negative amount"

	accPrefix       = 'a'
	allowancePrefix = 'l'
)

var token Token

func createToken() Token {
	return Token{
		NameKey:        "name",
		SymbolKey:      "symbol",
		DecimalsKey:    "decimals",
		CirculationKey: "totalSupply",
		ManagerKey:     "manager",
	}
}

func init() {
	token = createToken()
}

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		name          string
		symbol        string
		decimals      int
		initialSupply int
		owner         interop.Hash160
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	if args.decimals < 0 {
		panic("negative decimals")
	}

	if args.initialSupply < 0 {
		panic(ErrNegativeAmount)
	}

	storage.Put(ctx, token.NameKey, args.name)
	storage.Put(ctx, token.SymbolKey, args.symbol)
	storage.Put(ctx, token.DecimalsKey, args.decimals)
	storage.Put(ctx, token.ManagerKey, args.owner)

	token.mint(ctx, args.owner, args.initialSupply*math.Pow(10, args.decimals))

	runtime.Log("token contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic(common.ErrUpdateAccessDenied)
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("token contract updated")
}

// Name returns human readable name of the token.
func Name() string {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, token.NameKey).(string)
}

// Symbol returns ticker symbol of the token.
func Symbol() string {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, token.SymbolKey).(string)
}

// Decimals returns precision of token balances.
func Decimals() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, token.DecimalsKey)
}

// TotalSupply returns amount of minted tokens.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf returns token balance of the specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Allowance returns amount of tokens spender can still move from the owner's
// account.
func Allowance(owner, spender interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, allowanceKey(owner, spender))
}

// Manager returns the account that is allowed to mint tokens.
func Manager() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return token.getManager(ctx)
}

// SetManager passes mint authority to another account, usually to a
// contract paying rewards in this token. It can be invoked only by the
// current manager.
//
// It produces SetManager notification.
func SetManager(manager interop.Hash160) {
	ctx := storage.GetContext()

	if !isManager(token.getManager(ctx)) {
		panic(ErrUnauthorized)
	}

	if len(manager) != interop.Hash160Len {
		panic("incorrect length of manager script hash")
	}

	storage.Put(ctx, token.ManagerKey, manager)

	runtime.Log("token manager changed")
	runtime.Notify("SetManager", manager)
}

// Mint creates new tokens on the account. It can be invoked only by the
// manager.
//
// It produces Transfer notification with null sender.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !isManager(token.getManager(ctx)) {
		panic(ErrUnauthorized)
	}

	if len(to) != interop.Hash160Len {
		panic("invalid receiver")
	}

	token.mint(ctx, to, amount)
}

// Transfer moves tokens from one account to another. It can be invoked only
// by the sender account or by the contract with the sender script hash.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !common.IsUsableAddress(from) {
		panic(common.ErrOwnerWitnessFailed)
	}

	if len(to) != interop.Hash160Len {
		panic("invalid receiver")
	}

	token.transfer(ctx, from, to, amount)
}

// Approve allows spender to move up to amount tokens from the owner's
// account. The new value replaces the previous allowance. It can be invoked
// only by the owner.
//
// It produces Approval notification.
func Approve(owner, spender interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !common.IsUsableAddress(owner) {
		panic(common.ErrOwnerWitnessFailed)
	}

	if len(spender) != interop.Hash160Len {
		panic("invalid spender")
	}

	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	common.PutInt(ctx, allowanceKey(owner, spender), amount)

	runtime.Notify("Approval", spender, amount)
}

// TransferFrom moves tokens from one account to another on behalf of the
// spender that was approved by the sender. It can be invoked only by the
// spender. Allowance is decreased by the moved amount.
//
// It produces Transfer notification.
func TransferFrom(spender, from, to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !common.IsUsableAddress(spender) {
		panic(common.ErrWitnessFailed)
	}

	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("invalid script hashes")
	}

	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	key := allowanceKey(from, spender)
	allowed := common.GetInt(ctx, key)
	if allowed < amount {
		panic(ErrInsufficientAllowance)
	}

	common.PutInt(ctx, key, allowed-amount)

	token.transfer(ctx, from, to, amount)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	return common.GetInt(ctx, t.CirculationKey)
}

func (t Token) getManager(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, t.ManagerKey).(interop.Hash160)
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	return common.GetInt(ctx, append([]byte{accPrefix}, holder...))
}

func (t Token) mint(ctx storage.Context, to interop.Hash160, amount int) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	var from interop.Hash160

	toKey := append([]byte{accPrefix}, to...)
	common.PutInt(ctx, toKey, common.GetInt(ctx, toKey)+amount)

	storage.Put(ctx, t.CirculationKey, t.getSupply(ctx)+amount)

	runtime.Notify("Transfer", from, to, amount)
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	fromKey := append([]byte{accPrefix}, from...)

	balance := common.GetInt(ctx, fromKey)
	if balance < amount {
		panic(ErrInsufficientBalance)
	}

	common.PutInt(ctx, fromKey, balance-amount)

	// receiver is read after the sender has been written, so self-transfer
	// keeps the balance intact
	toKey := append([]byte{accPrefix}, to...)
	common.PutInt(ctx, toKey, common.GetInt(ctx, toKey)+amount)

	runtime.Notify("Transfer", from, to, amount)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}

// isManager checks that the manager invokes the token directly with its
// witness or that the manager contract is the caller.
func isManager(manager interop.Hash160) bool {
	caller := runtime.GetCallingScriptHash()
	if caller.Equals(runtime.GetEntryScriptHash()) {
		return runtime.CheckWitness(manager)
	}

	return caller.Equals(manager)
}
