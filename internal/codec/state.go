// Package codec converts escrow records and instructions to and from their
// fixed binary layout. All integers are little-endian; booleans are a single
// byte that must be 0 or 1.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"CoinFlip/internal/model"
)

// StateSize is the encoded length of an EscrowState: bool + u64 + u64.
const StateSize = 1 + 8 + 8

// ErrDecode is returned (wrapped) for any malformed state or instruction buffer.
var ErrDecode = errors.New("decode error")

// DecodeState reads an EscrowState from the prefix of buf. Bytes past StateSize
// are ignored, since account storage may be larger than the record.
func DecodeState(buf []byte) (model.EscrowState, error) {
	if len(buf) < StateSize {
		return model.EscrowState{}, fmt.Errorf("%w: state needs %d bytes, got %d", ErrDecode, StateSize, len(buf))
	}
	initialized, err := readBool(buf[0])
	if err != nil {
		return model.EscrowState{}, fmt.Errorf("%w: is_initialized: %v", ErrDecode, err)
	}
	return model.EscrowState{
		IsInitialized:      initialized,
		TotalBets:          binary.LittleEndian.Uint64(buf[1:9]),
		TotalAmountWagered: binary.LittleEndian.Uint64(buf[9:17]),
	}, nil
}

// EncodeState returns the StateSize-byte encoding of s.
func EncodeState(s model.EscrowState) []byte {
	buf := make([]byte, StateSize)
	putState(buf, s)
	return buf
}

// PutState writes s into the prefix of dst. It fails without touching dst
// when dst cannot hold the record.
func PutState(dst []byte, s model.EscrowState) error {
	if len(dst) < StateSize {
		return fmt.Errorf("%w: account storage holds %d bytes, record needs %d", ErrDecode, len(dst), StateSize)
	}
	putState(dst, s)
	return nil
}

func putState(buf []byte, s model.EscrowState) {
	buf[0] = writeBool(s.IsInitialized)
	binary.LittleEndian.PutUint64(buf[1:9], s.TotalBets)
	binary.LittleEndian.PutUint64(buf[9:17], s.TotalAmountWagered)
}

func readBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool discriminant %d", b)
	}
}

func writeBool(v bool) byte {
	if v {
		return 1
	}
	return 0
}
