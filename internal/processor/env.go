package processor

import (
	"fmt"

	"CoinFlip/internal/model"
)

// Bank moves value between accounts. Transfer is all-or-nothing.
type Bank interface {
	Transfer(from, to model.Address, amount uint64) error
	Balance(addr model.Address) uint64
}

// Collateral reports whether an account holds enough value to stay allocated.
type Collateral interface {
	IsCollateralSufficient(addr model.Address) bool
}

// Clock supplies the runtime's current Unix timestamp.
type Clock interface {
	UnixTimestamp() (int64, error)
}

// Signers reports which identities signed the current invocation.
type Signers interface {
	IsSigner(addr model.Address) bool
}

// Oracle decides the coin flip.
type Oracle interface {
	Flip() (model.Side, error)
}

// Sink receives program log lines and settlement events.
type Sink interface {
	Log(msg string)
	Settled(s model.Settlement)
}

// Env carries every capability a handler may touch for a single invocation.
// Storage is the escrow account's data region and is written in place.
type Env struct {
	Escrow     model.Address
	Storage    []byte
	Bettor     model.Address
	Bank       Bank
	Collateral Collateral
	Signers    Signers
	Oracle     Oracle
	Sink       Sink
}

func (e *Env) log(format string, args ...any) {
	if e.Sink != nil {
		e.Sink.Log(fmt.Sprintf(format, args...))
	}
}

func (e *Env) settled(s model.Settlement) {
	if e.Sink != nil {
		e.Sink.Settled(s)
	}
}

// ClockParity is the weak outcome source: heads when the timestamp is even.
// Anyone who can predict or influence the settlement time can predict the flip.
type ClockParity struct {
	Clock Clock
}

func (o ClockParity) Flip() (model.Side, error) {
	ts, err := o.Clock.UnixTimestamp()
	if err != nil {
		return model.Tails, fmt.Errorf("read clock: %w", err)
	}
	return model.Side(ts%2 == 0), nil
}

// SignerSet is a Signers backed by a set of verified addresses.
type SignerSet map[model.Address]struct{}

// NewSignerSet builds a SignerSet from the given addresses.
func NewSignerSet(addrs ...model.Address) SignerSet {
	s := make(SignerSet, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

func (s SignerSet) IsSigner(addr model.Address) bool {
	_, ok := s[addr]
	return ok
}
