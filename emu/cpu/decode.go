package cpu

// Instruction is a raw opcode split into its fields. Every field is filled
// regardless of which operation the opcode selects.
type Instruction struct {
	Raw uint16
	Op  uint8  // bits 15-12
	X   uint8  // bits 11-8
	Y   uint8  // bits 7-4
	N   uint8  // bits 3-0
	NN  uint8  // bits 7-0
	NNN uint16 // bits 11-0
}

func Decode(raw uint16) Instruction {
	return Instruction{
		Raw: raw,
		Op:  uint8(raw >> 12),
		X:   uint8(raw>>8) & 0x0F,
		Y:   uint8(raw>>4) & 0x0F,
		N:   uint8(raw) & 0x0F,
		NN:  uint8(raw),
		NNN: raw & 0x0FFF,
	}
}

// Key is the dispatch key of the instruction: the opcode nibble in the top
// bits plus whatever selects the operation inside its group.
func (in Instruction) Key() uint16 {
	op := uint16(in.Op) << 12
	switch in.Op {
	case 0x0:
		if in.Raw == 0x00E0 || in.Raw == 0x00EE {
			return in.Raw
		}
		return 0x0000
	case 0x8:
		return op | uint16(in.N)
	case 0xE, 0xF:
		return op | uint16(in.NN)
	default:
		return op
	}
}
