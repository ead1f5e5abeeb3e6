package ledger

import "time"

// AccountStorageOverhead is the per-account byte overhead charged for rent.
const AccountStorageOverhead = 128

// Rent decides how much value an account must hold to stay allocated.
type Rent struct {
	LamportsPerByteYear     uint64
	ExemptionThresholdYears uint64
}

// DefaultRent mirrors the mainnet parameters: 3480 lamports per byte-year, two years.
func DefaultRent() Rent {
	return Rent{LamportsPerByteYear: 3480, ExemptionThresholdYears: 2}
}

// MinimumBalance is the rent-exempt balance for an account with size bytes of storage.
func (r Rent) MinimumBalance(size int) uint64 {
	return (AccountStorageOverhead + uint64(size)) * r.LamportsPerByteYear * r.ExemptionThresholdYears
}

// IsExempt reports whether lamports covers the minimum balance for size.
func (r Rent) IsExempt(lamports uint64, size int) bool {
	return lamports >= r.MinimumBalance(size)
}

// SystemClock reads wall-clock Unix seconds.
type SystemClock struct{}

func (SystemClock) UnixTimestamp() (int64, error) {
	return time.Now().Unix(), nil
}

// FixedClock always reports the same timestamp.
type FixedClock int64

func (c FixedClock) UnixTimestamp() (int64, error) {
	return int64(c), nil
}
