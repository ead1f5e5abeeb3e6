package processor

import (
	"fmt"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/model"
)

// Initialize latches a freshly allocated escrow record to {true, 0, 0}.
// It runs exactly once per account and moves no value.
func Initialize(env *Env) error {
	if !env.Collateral.IsCollateralSufficient(env.Escrow) {
		return newError(CodeInsufficientCollateral, fmt.Sprintf("escrow %s is not rent exempt", env.Escrow))
	}

	state, err := codec.DecodeState(env.Storage)
	if err != nil {
		return wrapError(CodeDecode, "decode escrow state", err)
	}
	if state.IsInitialized {
		return newError(CodeAlreadyInitialized, fmt.Sprintf("escrow %s already initialized", env.Escrow))
	}

	state = model.EscrowState{IsInitialized: true}
	if err := codec.PutState(env.Storage, state); err != nil {
		return wrapError(CodeDecode, "encode escrow state", err)
	}

	env.log("Escrow initialized")
	return nil
}
