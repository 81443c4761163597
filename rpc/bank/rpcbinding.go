// Package bank contains RPC wrappers for TinyBank staking contract.
package bank

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// StakeEvent represents "Stake" event emitted by the contract.
type StakeEvent struct {
	Account util.Uint160
	Amount  *big.Int
}

// WithdrawEvent represents "Withdraw" event emitted by the contract.
type WithdrawEvent struct {
	Account util.Uint160
	Amount  *big.Int
}

// RewardEvent represents "Reward" event emitted by the contract.
type RewardEvent struct {
	Account util.Uint160
	Amount  *big.Int
}

// ConfirmationEvent represents "Confirmation" event emitted by the contract.
type ConfirmationEvent struct {
	Manager util.Uint160
	Count   *big.Int
}

// RewardPerBlockEvent represents "RewardPerBlock" event emitted by the contract.
type RewardPerBlockEvent struct {
	Value *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Staked invokes `staked` method of contract.
func (c *ContractReader) Staked(account util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "staked", account))
}

// TotalStaked invokes `totalStaked` method of contract.
func (c *ContractReader) TotalStaked() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "totalStaked"))
}

// RewardPerBlock invokes `rewardPerBlock` method of contract.
func (c *ContractReader) RewardPerBlock() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "rewardPerBlock"))
}

// Earned invokes `earned` method of contract.
func (c *ContractReader) Earned(account util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "earned", account))
}

// Token invokes `token` method of contract.
func (c *ContractReader) Token() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "token"))
}

// Managers invokes `managers` method of contract.
func (c *ContractReader) Managers() ([]util.Uint160, error) {
	return unwrap.ArrayOfUint160(c.invoker.Call(c.hash, "managers"))
}

// Threshold invokes `threshold` method of contract.
func (c *ContractReader) Threshold() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "threshold"))
}

// Confirmations invokes `confirmations` method of contract.
func (c *ContractReader) Confirmations() ([]util.Uint160, error) {
	return unwrap.ArrayOfUint160(c.invoker.Call(c.hash, "confirmations"))
}

// IsSatisfied invokes `isSatisfied` method of contract.
func (c *ContractReader) IsSatisfied() (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isSatisfied"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// Stake creates a transaction invoking `stake` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Stake(account util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "stake", account, amount)
}

// StakeTransaction creates a transaction invoking `stake` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) StakeTransaction(account util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "stake", account, amount)
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Withdraw(account util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdraw", account, amount)
}

// WithdrawTransaction creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) WithdrawTransaction(account util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "withdraw", account, amount)
}

// Claim creates a transaction invoking `claim` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Claim(account util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "claim", account)
}

// Confirm creates a transaction invoking `confirm` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Confirm() (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "confirm")
}

// ConfirmUnsigned creates a transaction invoking `confirm` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) ConfirmUnsigned() (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "confirm", nil)
}

// SetRewardPerBlock creates a transaction invoking `setRewardPerBlock` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetRewardPerBlock(value *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setRewardPerBlock", value)
}

// SetRewardPerBlockUnsigned creates a transaction invoking `setRewardPerBlock` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetRewardPerBlockUnsigned(value *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setRewardPerBlock", nil, value)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// StakeEventsFromApplicationLog retrieves a set of all emitted events
// with "Stake" name from the provided [result.ApplicationLog].
func StakeEventsFromApplicationLog(log *result.ApplicationLog) ([]*StakeEvent, error) {
	var res []*StakeEvent
	err := eachEvent(log, "Stake", func(item *stackitem.Array) error {
		e := new(StakeEvent)
		err := e.FromStackItem(item)
		if err == nil {
			res = append(res, e)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to StakeEvent or
// returns an error if it's not possible to do to so.
func (e *StakeEvent) FromStackItem(item *stackitem.Array) error {
	var err error
	e.Account, e.Amount, err = accountAmount(item)
	return err
}

// WithdrawEventsFromApplicationLog retrieves a set of all emitted events
// with "Withdraw" name from the provided [result.ApplicationLog].
func WithdrawEventsFromApplicationLog(log *result.ApplicationLog) ([]*WithdrawEvent, error) {
	var res []*WithdrawEvent
	err := eachEvent(log, "Withdraw", func(item *stackitem.Array) error {
		e := new(WithdrawEvent)
		err := e.FromStackItem(item)
		if err == nil {
			res = append(res, e)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to WithdrawEvent or
// returns an error if it's not possible to do to so.
func (e *WithdrawEvent) FromStackItem(item *stackitem.Array) error {
	var err error
	e.Account, e.Amount, err = accountAmount(item)
	return err
}

// RewardEventsFromApplicationLog retrieves a set of all emitted events
// with "Reward" name from the provided [result.ApplicationLog].
func RewardEventsFromApplicationLog(log *result.ApplicationLog) ([]*RewardEvent, error) {
	var res []*RewardEvent
	err := eachEvent(log, "Reward", func(item *stackitem.Array) error {
		e := new(RewardEvent)
		err := e.FromStackItem(item)
		if err == nil {
			res = append(res, e)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to RewardEvent or
// returns an error if it's not possible to do to so.
func (e *RewardEvent) FromStackItem(item *stackitem.Array) error {
	var err error
	e.Account, e.Amount, err = accountAmount(item)
	return err
}

// ConfirmationEventsFromApplicationLog retrieves a set of all emitted events
// with "Confirmation" name from the provided [result.ApplicationLog].
func ConfirmationEventsFromApplicationLog(log *result.ApplicationLog) ([]*ConfirmationEvent, error) {
	var res []*ConfirmationEvent
	err := eachEvent(log, "Confirmation", func(item *stackitem.Array) error {
		e := new(ConfirmationEvent)
		err := e.FromStackItem(item)
		if err == nil {
			res = append(res, e)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to ConfirmationEvent or
// returns an error if it's not possible to do to so.
func (e *ConfirmationEvent) FromStackItem(item *stackitem.Array) error {
	var err error
	e.Manager, e.Count, err = accountAmount(item)
	return err
}

// RewardPerBlockEventsFromApplicationLog retrieves a set of all emitted events
// with "RewardPerBlock" name from the provided [result.ApplicationLog].
func RewardPerBlockEventsFromApplicationLog(log *result.ApplicationLog) ([]*RewardPerBlockEvent, error) {
	var res []*RewardPerBlockEvent
	err := eachEvent(log, "RewardPerBlock", func(item *stackitem.Array) error {
		e := new(RewardPerBlockEvent)
		err := e.FromStackItem(item)
		if err == nil {
			res = append(res, e)
		}
		return err
	})
	return res, err
}

// FromStackItem converts provided [stackitem.Array] to RewardPerBlockEvent or
// returns an error if it's not possible to do to so.
func (e *RewardPerBlockEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Value, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Value: %w", err)
	}

	return nil
}

// eachEvent calls f for every event with the given name from the log.
func eachEvent(log *result.ApplicationLog, name string, f func(*stackitem.Array) error) error {
	if log == nil {
		return errors.New("nil application log")
	}

	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != name {
				continue
			}
			if err := f(e.Item); err != nil {
				return fmt.Errorf("failed to deserialize %sEvent from stackitem (execution #%d, event #%d): %w", name, i, j, err)
			}
		}
	}

	return nil
}

func accountAmount(item *stackitem.Array) (util.Uint160, *big.Int, error) {
	arr, err := eventFields(item, 2)
	if err != nil {
		return util.Uint160{}, nil, err
	}

	b, err := arr[0].TryBytes()
	if err != nil {
		return util.Uint160{}, nil, fmt.Errorf("field Account: %w", err)
	}
	account, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, nil, fmt.Errorf("field Account: %w", err)
	}

	amount, err := arr[1].TryInteger()
	if err != nil {
		return util.Uint160{}, nil, fmt.Errorf("field Amount: %w", err)
	}

	return account, amount, nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}
