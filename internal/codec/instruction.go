package codec

import (
	"encoding/binary"
	"fmt"

	"CoinFlip/internal/model"
)

// placeBetSize is tag + u64 amount + bool side.
const placeBetSize = 1 + 8 + 1

// DecodeInstruction parses an instruction buffer: one discriminant byte
// followed by the variant's payload. Trailing bytes are rejected.
func DecodeInstruction(buf []byte) (model.Instruction, error) {
	if len(buf) == 0 {
		return model.Instruction{}, fmt.Errorf("%w: empty instruction", ErrDecode)
	}
	switch kind := model.InstructionKind(buf[0]); kind {
	case model.InstructionInitialize:
		if len(buf) != 1 {
			return model.Instruction{}, fmt.Errorf("%w: Initialize takes no payload, got %d trailing bytes", ErrDecode, len(buf)-1)
		}
		return model.NewInitialize(), nil
	case model.InstructionPlaceBet:
		if len(buf) != placeBetSize {
			return model.Instruction{}, fmt.Errorf("%w: PlaceBet needs %d bytes, got %d", ErrDecode, placeBetSize, len(buf))
		}
		side, err := readBool(buf[9])
		if err != nil {
			return model.Instruction{}, fmt.Errorf("%w: side: %v", ErrDecode, err)
		}
		return model.NewPlaceBet(binary.LittleEndian.Uint64(buf[1:9]), model.Side(side)), nil
	default:
		return model.Instruction{}, fmt.Errorf("%w: unknown instruction discriminant %d", ErrDecode, buf[0])
	}
}

// EncodeInstruction returns the wire form of ix.
func EncodeInstruction(ix model.Instruction) ([]byte, error) {
	switch ix.Kind {
	case model.InstructionInitialize:
		return []byte{byte(model.InstructionInitialize)}, nil
	case model.InstructionPlaceBet:
		buf := make([]byte, placeBetSize)
		buf[0] = byte(model.InstructionPlaceBet)
		binary.LittleEndian.PutUint64(buf[1:9], ix.Amount)
		buf[9] = writeBool(bool(ix.Side))
		return buf, nil
	default:
		return nil, fmt.Errorf("encode instruction: unknown kind %d", ix.Kind)
	}
}
