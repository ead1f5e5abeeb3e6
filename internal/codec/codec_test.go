package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"CoinFlip/internal/model"
)

func TestStateRoundTrip(t *testing.T) {
	records := []model.EscrowState{
		{},
		{IsInitialized: true},
		{IsInitialized: true, TotalBets: 1, TotalAmountWagered: 100},
		{IsInitialized: true, TotalBets: math.MaxUint64, TotalAmountWagered: math.MaxUint64},
	}
	for _, r := range records {
		buf := EncodeState(r)
		if len(buf) != StateSize {
			t.Fatalf("encoded length %d, want %d", len(buf), StateSize)
		}
		got, err := DecodeState(buf)
		if err != nil {
			t.Fatalf("decode %+v: %v", r, err)
		}
		if got != r {
			t.Errorf("round trip: got %+v, want %+v", got, r)
		}
	}
}

func TestStateLayout(t *testing.T) {
	buf := EncodeState(model.EscrowState{IsInitialized: true, TotalBets: 2, TotalAmountWagered: 0x0102})
	want := []byte{1, 2, 0, 0, 0, 0, 0, 0, 0, 0x02, 0x01, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf, want) {
		t.Errorf("layout: got %v, want %v", buf, want)
	}
}

func TestDecodeStateFreshAccount(t *testing.T) {
	got, err := DecodeState(make([]byte, StateSize))
	if err != nil {
		t.Fatalf("decode zeroed storage: %v", err)
	}
	if got != (model.EscrowState{}) {
		t.Errorf("fresh account decoded to %+v", got)
	}
}

func TestDecodeStateIgnoresTrailingStorage(t *testing.T) {
	buf := append(EncodeState(model.EscrowState{IsInitialized: true, TotalBets: 7}), 0xff, 0xff)
	got, err := DecodeState(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalBets != 7 {
		t.Errorf("TotalBets = %d, want 7", got.TotalBets)
	}
}

func TestDecodeStateErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short", make([]byte, StateSize-1)},
		{"bad bool", append([]byte{2}, make([]byte, StateSize-1)...)},
	}
	for _, tt := range tests {
		if _, err := DecodeState(tt.buf); !errors.Is(err, ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", tt.name, err)
		}
	}
}

func TestPutState(t *testing.T) {
	dst := make([]byte, StateSize+3)
	dst[StateSize] = 9
	if err := PutState(dst, model.EscrowState{IsInitialized: true, TotalBets: 1, TotalAmountWagered: 5}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if dst[StateSize] != 9 {
		t.Error("PutState wrote past the record")
	}

	small := []byte{7, 7}
	if err := PutState(small, model.EscrowState{IsInitialized: true}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for small buffer, got %v", err)
	}
	if small[0] != 7 {
		t.Error("PutState modified a buffer it rejected")
	}
}

func TestInstructionRoundTrip(t *testing.T) {
	for _, ix := range []model.Instruction{
		model.NewInitialize(),
		model.NewPlaceBet(100, model.Heads),
		model.NewPlaceBet(math.MaxUint64, model.Tails),
	} {
		buf, err := EncodeInstruction(ix)
		if err != nil {
			t.Fatalf("encode %+v: %v", ix, err)
		}
		got, err := DecodeInstruction(buf)
		if err != nil {
			t.Fatalf("decode %v: %v", buf, err)
		}
		if got != ix {
			t.Errorf("round trip: got %+v, want %+v", got, ix)
		}
	}
}

func TestDecodeInstructionPlaceBetLayout(t *testing.T) {
	ix, err := DecodeInstruction([]byte{1, 0x64, 0, 0, 0, 0, 0, 0, 0, 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ix.Kind != model.InstructionPlaceBet || ix.Amount != 100 || ix.Side != model.Heads {
		t.Errorf("decoded %+v", ix)
	}
}

func TestDecodeInstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", []byte{}},
		{"unknown tag", []byte{2}},
		{"initialize with payload", []byte{0, 1}},
		{"short bet", []byte{1, 1, 2, 3}},
		{"long bet", []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0}},
		{"bad side", []byte{1, 1, 0, 0, 0, 0, 0, 0, 0, 5}},
	}
	for _, tt := range tests {
		if _, err := DecodeInstruction(tt.buf); !errors.Is(err, ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", tt.name, err)
		}
	}
}

func TestEncodeInstructionUnknownKind(t *testing.T) {
	if _, err := EncodeInstruction(model.Instruction{Kind: 9}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
