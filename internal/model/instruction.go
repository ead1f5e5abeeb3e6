package model

// InstructionKind is the wire discriminant of an Instruction.
type InstructionKind uint8

const (
	InstructionInitialize InstructionKind = 0
	InstructionPlaceBet   InstructionKind = 1
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionInitialize:
		return "Initialize"
	case InstructionPlaceBet:
		return "PlaceBet"
	default:
		return "Unknown"
	}
}

// Instruction is a decoded program instruction. Amount and Side are only
// meaningful for InstructionPlaceBet.
type Instruction struct {
	Kind   InstructionKind
	Amount uint64
	Side   Side
}

// NewInitialize builds an Initialize instruction.
func NewInitialize() Instruction {
	return Instruction{Kind: InstructionInitialize}
}

// NewPlaceBet builds a PlaceBet instruction.
func NewPlaceBet(amount uint64, side Side) Instruction {
	return Instruction{Kind: InstructionPlaceBet, Amount: amount, Side: side}
}
