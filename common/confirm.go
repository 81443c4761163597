package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	// ErrNotAManager is thrown when confirmation is not witnessed by any
	// account of the manager set.
	ErrNotAManager = "You are not a manager"
	// ErrNotAllConfirmed is thrown when a gated action is applied before the
	// current round collected enough confirmations.
	ErrNotAllConfirmed = "Not all confirmed yet"
	// ErrInvalidThreshold is thrown when required confirmation count is out
	// of [1, len(managers)] range.
	ErrInvalidThreshold = "invalid confirmation threshold"
	// ErrInvalidManager is thrown when a manager is not a valid script hash.
	ErrInvalidManager = "invalid manager"
	// ErrDuplicateManager is thrown when the manager set contains the same
	// account twice.
	ErrDuplicateManager = "duplicate manager"
)

// States of a confirmation round.
const (
	// RoundPending means the round has not collected enough confirmations yet.
	RoundPending = iota
	// RoundSatisfied means the gated action can be applied.
	RoundSatisfied
)

const (
	managersKey  = "managers"
	thresholdKey = "threshold"
	roundKey     = "round"
)

// InitGate stores the fixed manager set and the number of confirmations
// required to satisfy a round. The first round starts empty.
func InitGate(ctx storage.Context, managers []interop.Hash160, threshold int) {
	if threshold < 1 || threshold > len(managers) {
		panic(ErrInvalidThreshold)
	}

	for i := range managers {
		if len(managers[i]) != interop.Hash160Len {
			panic(ErrInvalidManager)
		}

		for j := 0; j < i; j++ {
			if managers[j].Equals(managers[i]) {
				panic(ErrDuplicateManager)
			}
		}
	}

	SetSerialized(ctx, managersKey, managers)
	storage.Put(ctx, thresholdKey, threshold)
	SetSerialized(ctx, roundKey, []interop.Hash160{})
}

// Managers returns the manager set.
func Managers(ctx storage.Context) []interop.Hash160 {
	return GetHashList(ctx, managersKey)
}

// Threshold returns the number of confirmations required by a round.
func Threshold(ctx storage.Context) int {
	return GetInt(ctx, thresholdKey)
}

// Confirmations returns managers that confirmed the current round.
func Confirmations(ctx storage.Context) []interop.Hash160 {
	return GetHashList(ctx, roundKey)
}

// ManagerInvoker returns the manager that witnessed current invocation or
// nil if the invocation is not witnessed by any manager.
func ManagerInvoker(ctx storage.Context) interop.Hash160 {
	managers := Managers(ctx)
	for i := range managers {
		if runtime.CheckWitness(managers[i]) {
			return managers[i]
		}
	}

	return nil
}

// Confirm adds the invoking manager to the current round and returns amount
// of unique confirmations. A manager confirming twice is counted once.
func Confirm(ctx storage.Context) int {
	manager := ManagerInvoker(ctx)
	if len(manager) == 0 {
		panic(ErrNotAManager)
	}

	confirmed := Confirmations(ctx)
	for i := range confirmed {
		if confirmed[i].Equals(manager) {
			return len(confirmed)
		}
	}

	confirmed = append(confirmed, manager)
	SetSerialized(ctx, roundKey, confirmed)

	runtime.Notify("Confirmation", manager, len(confirmed))

	return len(confirmed)
}

// EvalRound returns the state of a round with the given number of unique
// confirmations. A round of an uninitialized gate is never satisfied.
func EvalRound(confirmed, threshold int) int {
	if threshold < 1 || confirmed < threshold {
		return RoundPending
	}

	return RoundSatisfied
}

// RoundState returns the state of the current round.
func RoundState(ctx storage.Context) int {
	return EvalRound(len(Confirmations(ctx)), Threshold(ctx))
}

// CheckSatisfied panics with ErrNotAllConfirmed if the current round is
// still pending.
func CheckSatisfied(ctx storage.Context) {
	if RoundState(ctx) != RoundSatisfied {
		panic(ErrNotAllConfirmed)
	}
}

// ResetRound starts a new empty round. It must be called right after the
// gated action has been applied.
func ResetRound(ctx storage.Context) {
	SetSerialized(ctx, roundKey, []interop.Hash160{})
	runtime.Log("confirmation round reset")
}
