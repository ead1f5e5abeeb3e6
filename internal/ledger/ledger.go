// Package ledger is the host runtime the escrow program runs on: it owns the
// accounts, moves lamports, charges rent, verifies signatures and serializes
// submissions so the program sees one writer at a time.
package ledger

import (
	"errors"
	"fmt"
	"log"
	"math/bits"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CoinFlip/internal/keys"
	"CoinFlip/internal/model"
	"CoinFlip/internal/processor"
)

var (
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrFaucetLimit       = errors.New("airdrop exceeds faucet limit")
	ErrInvalidTx         = errors.New("invalid transaction")
	ErrDuplicateTx       = fmt.Errorf("%w: already processed", ErrInvalidTx)
)

// Options configures a Ledger. Zero values pick the defaults.
type Options struct {
	Rent              Rent
	Clock             processor.Clock
	Oracle            processor.Oracle
	FaucetMaxLamports uint64
}

// Ledger holds every account in memory.
type Ledger struct {
	mu        sync.Mutex
	accounts  map[model.Address]*model.Account
	rent      Rent
	oracle    processor.Oracle
	faucetMax uint64
	seen      map[string]struct{} // ids of transactions the program has run
}

// New creates an empty Ledger.
func New(opts Options) *Ledger {
	if opts.Rent == (Rent{}) {
		opts.Rent = DefaultRent()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Oracle == nil {
		opts.Oracle = processor.ClockParity{Clock: opts.Clock}
	}
	return &Ledger{
		accounts:  make(map[model.Address]*model.Account),
		rent:      opts.Rent,
		oracle:    opts.Oracle,
		faucetMax: opts.FaucetMaxLamports,
		seen:      make(map[string]struct{}),
	}
}

// CreateAccount allocates a zeroed storage region of space bytes holding lamports.
// An existing account without storage (one that was only airdropped to) gets the
// region allocated and lamports added to its balance.
func (l *Ledger) CreateAccount(addr model.Address, lamports uint64, space int) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if space < 0 {
		return model.Account{}, fmt.Errorf("create account %s: negative space", addr)
	}
	acct, ok := l.accounts[addr]
	if ok {
		if len(acct.Data) > 0 || space == 0 {
			return model.Account{}, fmt.Errorf("create account %s: %w", addr, ErrAccountExists)
		}
		sum, carry := bits.Add64(acct.Lamports, lamports, 0)
		if carry != 0 {
			return model.Account{}, fmt.Errorf("create account %s: %w", addr, ErrBalanceOverflow)
		}
		acct.Lamports = sum
		acct.Data = make([]byte, space)
		acct.UpdatedAt = time.Now()
		log.Printf("[INFO] account %s allocated: %d bytes, balance now %d lamports", addr, space, sum)
		return acct.Clone(), nil
	}

	acct = &model.Account{
		Address:   addr,
		Lamports:  lamports,
		Data:      make([]byte, space),
		UpdatedAt: time.Now(),
	}
	l.accounts[addr] = acct
	log.Printf("[INFO] account %s created: %d lamports, %d bytes", addr, lamports, space)
	return acct.Clone(), nil
}

// Airdrop mints lamports into addr, creating a storage-less account if needed.
func (l *Ledger) Airdrop(addr model.Address, lamports uint64) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.faucetMax > 0 && lamports > l.faucetMax {
		return model.Account{}, fmt.Errorf("airdrop %d to %s: %w", lamports, addr, ErrFaucetLimit)
	}
	acct := l.accountLocked(addr)
	sum, carry := bits.Add64(acct.Lamports, lamports, 0)
	if carry != 0 {
		return model.Account{}, fmt.Errorf("airdrop to %s: %w", addr, ErrBalanceOverflow)
	}
	acct.Lamports = sum
	acct.UpdatedAt = time.Now()
	return acct.Clone(), nil
}

// Transfer moves amount lamports from one account to another.
func (l *Ledger) Transfer(from, to model.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(from, to, amount)
}

func (l *Ledger) transferLocked(from, to model.Address, amount uint64) error {
	src, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("transfer from %s: %w", from, ErrAccountNotFound)
	}
	if src.Lamports < amount {
		return fmt.Errorf("transfer %d from %s (balance %d): %w", amount, from, src.Lamports, ErrInsufficientFunds)
	}
	if from == to {
		return nil
	}
	dst := l.accountLocked(to)
	sum, carry := bits.Add64(dst.Lamports, amount, 0)
	if carry != 0 {
		return fmt.Errorf("transfer to %s: %w", to, ErrBalanceOverflow)
	}
	now := time.Now()
	src.Lamports -= amount
	src.UpdatedAt = now
	dst.Lamports = sum
	dst.UpdatedAt = now
	return nil
}

func (l *Ledger) accountLocked(addr model.Address) *model.Account {
	acct, ok := l.accounts[addr]
	if !ok {
		acct = &model.Account{Address: addr, UpdatedAt: time.Now()}
		l.accounts[addr] = acct
	}
	return acct
}

// Balance returns the lamports held by addr, zero if it does not exist.
func (l *Ledger) Balance(addr model.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acct, ok := l.accounts[addr]; ok {
		return acct.Lamports
	}
	return 0
}

// Account returns a copy of the account at addr.
func (l *Ledger) Account(addr model.Address) (model.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[addr]
	if !ok {
		return model.Account{}, false
	}
	return acct.Clone(), true
}

// Accounts returns a copy of every account ordered by address.
func (l *Ledger) Accounts() []model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Account, 0, len(l.accounts))
	for _, acct := range l.accounts {
		out = append(out, acct.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Restore replaces the ledger contents with accts.
func (l *Ledger) Restore(accts []model.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = make(map[model.Address]*model.Account, len(accts))
	for _, a := range accts {
		c := a.Clone()
		if c.Data == nil {
			c.Data = []byte{}
		}
		l.accounts[a.Address] = &c
	}
}

// MinimumBalance is the rent-exempt balance for space bytes of storage.
func (l *Ledger) MinimumBalance(space int) uint64 {
	return l.rent.MinimumBalance(space)
}

// IsCollateralSufficient reports whether addr exists and is rent exempt.
func (l *Ledger) IsCollateralSufficient(addr model.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collateralLocked(addr)
}

func (l *Ledger) collateralLocked(addr model.Address) bool {
	acct, ok := l.accounts[addr]
	if !ok {
		return false
	}
	return l.rent.IsExempt(acct.Lamports, len(acct.Data))
}

// Submit verifies tx and runs its instruction against the escrow account.
// The escrow storage is only replaced when the program succeeds; lamports
// moved before a program failure stay where they are.
func (l *Ledger) Submit(tx Transaction) (*Receipt, error) {
	if _, err := uuid.Parse(tx.ID); err != nil {
		return nil, fmt.Errorf("%w: id %q: %v", ErrInvalidTx, tx.ID, err)
	}

	signers := processor.NewSignerSet()
	if tx.Signer != "" && len(tx.Signature) > 0 && keys.Verify(tx.Signer, tx.Message(), tx.Signature) {
		signers[tx.Signer] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[tx.ID]; dup {
		return nil, fmt.Errorf("submit %s: %w", tx.ID, ErrDuplicateTx)
	}
	escrow, ok := l.accounts[tx.Escrow]
	if !ok {
		return nil, fmt.Errorf("submit %s: escrow %s: %w", tx.ID, tx.Escrow, ErrAccountNotFound)
	}
	// Recorded before the program runs: a failed bet may already have moved lamports.
	l.seen[tx.ID] = struct{}{}

	receipt := &Receipt{ID: tx.ID, Logs: []string{}}
	storage := append([]byte(nil), escrow.Data...)
	env := &processor.Env{
		Escrow:     tx.Escrow,
		Storage:    storage,
		Bettor:     tx.Signer,
		Bank:       lockedView{l},
		Collateral: lockedView{l},
		Signers:    signers,
		Oracle:     l.oracle,
		Sink:       receiptSink{receipt},
	}
	if err := processor.Process(env, tx.Data); err != nil {
		receipt.Error = err.Error()
		receipt.Code = string(processor.CodeOf(err))
		log.Printf("[WARN] tx %s failed: %v", tx.ID, err)
		return receipt, err
	}

	escrow.Data = storage
	escrow.UpdatedAt = time.Now()
	log.Printf("[INFO] tx %s ok: %d log lines", tx.ID, len(receipt.Logs))
	return receipt, nil
}

// lockedView exposes the ledger to the program while Submit holds the lock.
type lockedView struct {
	l *Ledger
}

func (v lockedView) Transfer(from, to model.Address, amount uint64) error {
	return v.l.transferLocked(from, to, amount)
}

func (v lockedView) Balance(addr model.Address) uint64 {
	if acct, ok := v.l.accounts[addr]; ok {
		return acct.Lamports
	}
	return 0
}

func (v lockedView) IsCollateralSufficient(addr model.Address) bool {
	return v.l.collateralLocked(addr)
}
