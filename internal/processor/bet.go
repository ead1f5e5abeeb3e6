package processor

import (
	"fmt"
	"math/bits"

	"CoinFlip/internal/codec"
	"CoinFlip/internal/model"
)

// PlaceBet escrows amount from the bettor, flips the coin, updates the
// counters and pays 2*amount back on a win. The record is written last, so
// any failure leaves it untouched. Value already moved by the escrow transfer
// is not returned when a later step fails.
func PlaceBet(env *Env, amount uint64, side model.Side) (model.Settlement, error) {
	if !env.Signers.IsSigner(env.Bettor) {
		return model.Settlement{}, newError(CodeUnauthorized, fmt.Sprintf("bettor %s did not sign", env.Bettor))
	}

	state, err := codec.DecodeState(env.Storage)
	if err != nil {
		return model.Settlement{}, wrapError(CodeDecode, "decode escrow state", err)
	}
	if !state.IsInitialized {
		return model.Settlement{}, newError(CodeUninitialized, fmt.Sprintf("escrow %s not initialized", env.Escrow))
	}

	if amount == 0 {
		return model.Settlement{}, newError(CodeInvalidAmount, "bet amount must be positive")
	}
	payout, ok := mul2(amount)
	if !ok {
		return model.Settlement{}, newError(CodeAmountOverflow, fmt.Sprintf("payout for %d overflows", amount))
	}
	if _, ok := add(env.Bank.Balance(env.Escrow), amount); !ok {
		return model.Settlement{}, newError(CodeAmountOverflow, fmt.Sprintf("escrow balance plus %d overflows", amount))
	}

	if err := env.Bank.Transfer(env.Bettor, env.Escrow, amount); err != nil {
		return model.Settlement{}, wrapError(CodeTransferFailed, "escrow transfer", err)
	}

	result, err := env.Oracle.Flip()
	if err != nil {
		return model.Settlement{}, wrapError(CodeOutcomeFailed, "derive outcome", err)
	}
	won := side == result

	totalBets, ok := add(state.TotalBets, 1)
	if !ok {
		return model.Settlement{}, newError(CodeCounterOverflow, "total_bets overflows")
	}
	totalWagered, ok := add(state.TotalAmountWagered, amount)
	if !ok {
		return model.Settlement{}, newError(CodeCounterOverflow, "total_amount_wagered overflows")
	}
	state.TotalBets = totalBets
	state.TotalAmountWagered = totalWagered

	var paid uint64
	if won {
		if err := env.Bank.Transfer(env.Escrow, env.Bettor, payout); err != nil {
			return model.Settlement{}, wrapError(CodePayoutFailed, "payout transfer", err)
		}
		paid = payout
	}

	if err := codec.PutState(env.Storage, state); err != nil {
		return model.Settlement{}, wrapError(CodeDecode, "encode escrow state", err)
	}

	s := model.Settlement{
		Escrow:             env.Escrow,
		Bettor:             env.Bettor,
		Amount:             amount,
		Side:               side,
		Result:             result,
		Won:                won,
		Payout:             paid,
		TotalBets:          state.TotalBets,
		TotalAmountWagered: state.TotalAmountWagered,
	}
	env.log("Coin flip result: %s", result)
	if won {
		env.log("Player won!")
	} else {
		env.log("Player lost!")
	}
	env.settled(s)
	return s, nil
}

func add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

func mul2(a uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, 2)
	return lo, hi == 0
}
