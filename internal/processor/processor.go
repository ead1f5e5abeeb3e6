// Package processor is the escrow program: it decodes an instruction, routes
// it to its handler, and applies the handler's state transition to the escrow
// record. It holds no state of its own; every runtime facility arrives on Env.
package processor

import (
	"fmt"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/model"
)

// Process decodes data and runs the matching handler against env.
func Process(env *Env, data []byte) error {
	ix, err := codec.DecodeInstruction(data)
	if err != nil {
		return wrapError(CodeDecode, "decode instruction", err)
	}
	return Dispatch(env, ix)
}

// Dispatch routes an already-decoded instruction.
func Dispatch(env *Env, ix model.Instruction) error {
	switch ix.Kind {
	case model.InstructionInitialize:
		return Initialize(env)
	case model.InstructionPlaceBet:
		_, err := PlaceBet(env, ix.Amount, ix.Side)
		return err
	default:
		return newError(CodeDecode, fmt.Sprintf("unknown instruction kind %d", ix.Kind))
	}
}
