package model

import "strings"

// EscrowState is the fixed-layout record persisted in an escrow account's storage.
type EscrowState struct {
	IsInitialized      bool   `json:"is_initialized"`
	TotalBets          uint64 `json:"total_bets"`
	TotalAmountWagered uint64 `json:"total_amount_wagered"`
}

// Side is the bettor's call. Heads is encoded as true on the wire.
type Side bool

const (
	Heads Side = true
	Tails Side = false
)

func (s Side) String() string {
	if s == Heads {
		return "Heads"
	}
	return "Tails"
}

// ParseSide accepts "heads"/"tails" (any case) or "h"/"t".
func ParseSide(v string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "heads", "h":
		return Heads, true
	case "tails", "t":
		return Tails, true
	}
	return Tails, false
}

// Settlement describes one completed bet.
type Settlement struct {
	Escrow             Address `json:"escrow"`
	Bettor             Address `json:"bettor"`
	Amount             uint64  `json:"amount"`
	Side               Side    `json:"side"`
	Result             Side    `json:"result"`
	Won                bool    `json:"won"`
	Payout             uint64  `json:"payout"`
	TotalBets          uint64  `json:"total_bets"`
	TotalAmountWagered uint64  `json:"total_amount_wagered"`
}
