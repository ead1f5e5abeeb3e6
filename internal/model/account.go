package model

import "time"

// Address identifies a ledger account: the hex-encoded compressed secp256k1 public key.
type Address string

// LamportsPerSOL is the number of lamports in one unit of the native token.
const LamportsPerSOL uint64 = 1_000_000_000

// Account is a host ledger account: a balance plus an opaque storage region.
type Account struct {
	Address   Address   `json:"address"`
	Lamports  uint64    `json:"lamports"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot alias ledger storage.
func (a Account) Clone() Account {
	c := a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return c
}
