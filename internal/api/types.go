package api

import "CoinFlip/internal/model"

// CreateAccountRequest allocates a program-owned account.
// The account is funded with the rent minimum for Space plus Bankroll.
type CreateAccountRequest struct {
	Address  model.Address `json:"address"`
	Space    int           `json:"space"`
	Bankroll uint64        `json:"bankroll"`
}

// AirdropRequest mints lamports into an account. Zero asks for the node's default amount.
type AirdropRequest struct {
	Address  model.Address `json:"address"`
	Lamports uint64        `json:"lamports"`
}

// EscrowView is an escrow account with its record decoded.
type EscrowView struct {
	Address  model.Address     `json:"address"`
	Lamports uint64            `json:"lamports"`
	State    model.EscrowState `json:"state"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code"`
	Logs  []string `json:"logs,omitempty"`
}
