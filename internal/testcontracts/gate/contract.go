package gate

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/tinybank-dev/tinybank-contract/common"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	args := data.(struct {
		managers  []interop.Hash160
		threshold int
	})

	common.InitGate(storage.GetContext(), args.managers, args.threshold)
}

// Confirm registers the manager confirmation in the current round.
func Confirm() int {
	return common.Confirm(storage.GetContext())
}

// State returns the state of the current round.
func State() int {
	return common.RoundState(storage.GetReadOnlyContext())
}

// Apply emulates a gated action.
func Apply() {
	ctx := storage.GetContext()
	common.CheckSatisfied(ctx)
	common.ResetRound(ctx)
}

// Confirmations returns managers that confirmed the current round.
func Confirmations() []interop.Hash160 {
	return common.Confirmations(storage.GetReadOnlyContext())
}
