package cpu

// operation executes a decoded instruction and returns the next pc.
type operation struct {
	name string
	exec func(*EMU, Instruction) (uint16, error)
}

var operations = map[uint16]operation{
	0x0000: {"SYS", (*EMU).opSYS},
	0x00E0: {"CLS", (*EMU).opCLS},
	0x00EE: {"RET", (*EMU).opRET},
	0x1000: {"JP", (*EMU).opJP},
	0x2000: {"CALL", (*EMU).opCALL},
	0x3000: {"SE", (*EMU).opSEByte},
	0x4000: {"SNE", (*EMU).opSNEByte},
	0x5000: {"SE", (*EMU).opSEReg},
	0x6000: {"LD", (*EMU).opLDByte},
	0x7000: {"ADD", (*EMU).opADDByte},
	0x8000: {"LD", (*EMU).opLDReg},
	0x8001: {"OR", (*EMU).opOR},
	0x8002: {"AND", (*EMU).opAND},
	0x8003: {"XOR", (*EMU).opXOR},
	0x8004: {"ADD", (*EMU).opADDReg},
	0x8005: {"SUB", (*EMU).opSUB},
	0x8006: {"SHR", (*EMU).opSHR},
	0x8007: {"SUBN", (*EMU).opSUBN},
	0x800E: {"SHL", (*EMU).opSHL},
	0x9000: {"SNE", (*EMU).opSNEReg},
	0xA000: {"LD", (*EMU).opLDI},
	0xB000: {"JP", (*EMU).opJPV0},
	0xC000: {"RND", (*EMU).opRND},
	0xD000: {"DRW", (*EMU).opDRW},
	0xE09E: {"SKP", (*EMU).opSKP},
	0xE0A1: {"SKNP", (*EMU).opSKNP},
	0xF007: {"LD", (*EMU).opLDVxDT},
	0xF00A: {"LD", (*EMU).opLDVxK},
	0xF015: {"LD", (*EMU).opLDDTVx},
	0xF018: {"LD", (*EMU).opLDSTVx},
	0xF01E: {"ADD", (*EMU).opADDI},
	0xF029: {"LD", (*EMU).opLDF},
	0xF033: {"LD", (*EMU).opLDB},
	0xF055: {"LD", (*EMU).opStore},
	0xF065: {"LD", (*EMU).opLoad},
}

func lookup(in Instruction) (operation, bool) {
	op, ok := operations[in.Key()]
	return op, ok
}

// Mnemonic returns the assembler name of the operation the instruction
// selects.
func Mnemonic(in Instruction) (string, bool) {
	op, ok := lookup(in)
	return op.name, ok
}

const flag = 0xF

func (emu *EMU) next() uint16 {
	return emu.pc + 2
}

func (emu *EMU) skipIf(cond bool) uint16 {
	if cond {
		return emu.pc + 4
	}
	return emu.pc + 2
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// machine code routines are not supported
func (emu *EMU) opSYS(in Instruction) (uint16, error) {
	return emu.next(), nil
}

func (emu *EMU) opCLS(in Instruction) (uint16, error) {
	emu.display.Clear()
	return emu.next(), nil
}

func (emu *EMU) opRET(in Instruction) (uint16, error) {
	return emu.stack.Pop()
}

func (emu *EMU) opJP(in Instruction) (uint16, error) {
	return in.NNN, nil
}

// the return address pushed is the instruction after the call
func (emu *EMU) opCALL(in Instruction) (uint16, error) {
	if in.NNN > maxPC {
		return 0, memoryFault(int(in.NNN) + 1)
	}
	if err := emu.stack.Push(emu.next()); err != nil {
		return 0, err
	}
	return in.NNN, nil
}

func (emu *EMU) opSEByte(in Instruction) (uint16, error) {
	return emu.skipIf(emu.V[in.X] == in.NN), nil
}

func (emu *EMU) opSNEByte(in Instruction) (uint16, error) {
	return emu.skipIf(emu.V[in.X] != in.NN), nil
}

func (emu *EMU) opSEReg(in Instruction) (uint16, error) {
	return emu.skipIf(emu.V[in.X] == emu.V[in.Y]), nil
}

func (emu *EMU) opSNEReg(in Instruction) (uint16, error) {
	return emu.skipIf(emu.V[in.X] != emu.V[in.Y]), nil
}

func (emu *EMU) opLDByte(in Instruction) (uint16, error) {
	emu.V[in.X] = in.NN
	return emu.next(), nil
}

func (emu *EMU) opADDByte(in Instruction) (uint16, error) {
	emu.V[in.X] += in.NN
	return emu.next(), nil
}

func (emu *EMU) opLDReg(in Instruction) (uint16, error) {
	emu.V[in.X] = emu.V[in.Y]
	return emu.next(), nil
}

func (emu *EMU) opOR(in Instruction) (uint16, error) {
	emu.V[in.X] |= emu.V[in.Y]
	return emu.next(), nil
}

func (emu *EMU) opAND(in Instruction) (uint16, error) {
	emu.V[in.X] &= emu.V[in.Y]
	return emu.next(), nil
}

func (emu *EMU) opXOR(in Instruction) (uint16, error) {
	emu.V[in.X] ^= emu.V[in.Y]
	return emu.next(), nil
}

// Arithmetic ops compute the flag from the operands first and write VF last,
// so VF holds the flag even when it is also the destination.

func (emu *EMU) opADDReg(in Instruction) (uint16, error) {
	sum := uint16(emu.V[in.X]) + uint16(emu.V[in.Y])
	emu.V[in.X] = uint8(sum)
	emu.V[flag] = bit(sum > 0xFF)
	return emu.next(), nil
}

func (emu *EMU) opSUB(in Instruction) (uint16, error) {
	vx, vy := emu.V[in.X], emu.V[in.Y]
	emu.V[in.X] = vx - vy
	emu.V[flag] = bit(vx > vy)
	return emu.next(), nil
}

func (emu *EMU) opSUBN(in Instruction) (uint16, error) {
	vx, vy := emu.V[in.X], emu.V[in.Y]
	emu.V[in.X] = vy - vx
	emu.V[flag] = bit(vy > vx)
	return emu.next(), nil
}

func (emu *EMU) shiftSource(in Instruction) uint8 {
	if emu.quirks.Shift == ShiftInPlace {
		return emu.V[in.X]
	}
	return emu.V[in.Y]
}

func (emu *EMU) opSHR(in Instruction) (uint16, error) {
	src := emu.shiftSource(in)
	emu.V[in.X] = src >> 1
	emu.V[flag] = src & 0x01
	return emu.next(), nil
}

func (emu *EMU) opSHL(in Instruction) (uint16, error) {
	src := emu.shiftSource(in)
	emu.V[in.X] = src << 1
	emu.V[flag] = src >> 7
	return emu.next(), nil
}

func (emu *EMU) opLDI(in Instruction) (uint16, error) {
	emu.I = in.NNN
	return emu.next(), nil
}

func (emu *EMU) opJPV0(in Instruction) (uint16, error) {
	return in.NNN + uint16(emu.V[0]), nil
}

func (emu *EMU) opRND(in Instruction) (uint16, error) {
	emu.V[in.X] = uint8(emu.rand.Intn(256)) & in.NN
	return emu.next(), nil
}

// DRW only reads the sprite rows that land on screen.
func (emu *EMU) opDRW(in Instruction) (uint16, error) {
	x := emu.V[in.X] % 64
	y := emu.V[in.Y] % 32
	rows := int(in.N)
	if visible := 32 - int(y); rows > visible {
		rows = visible
	}
	sprite, err := emu.memory.Slice(emu.I, rows)
	if err != nil {
		return 0, err
	}
	emu.V[flag] = bit(emu.display.Draw(x, y, sprite))
	return emu.next(), nil
}

func (emu *EMU) opSKP(in Instruction) (uint16, error) {
	return emu.skipIf(emu.input.IsPressed(emu.V[in.X])), nil
}

func (emu *EMU) opSKNP(in Instruction) (uint16, error) {
	return emu.skipIf(!emu.input.IsPressed(emu.V[in.X])), nil
}

func (emu *EMU) opLDVxDT(in Instruction) (uint16, error) {
	emu.V[in.X] = emu.timers.Delay
	return emu.next(), nil
}

// FX0A parks the interpreter, pc stays on this opcode until a key goes down.
// Presses recorded before this point do not count.
func (emu *EMU) opLDVxK(in Instruction) (uint16, error) {
	emu.input.NextPress()
	emu.mode = WaitingForKey
	emu.waitReg = in.X
	return emu.pc, nil
}

func (emu *EMU) opLDDTVx(in Instruction) (uint16, error) {
	emu.timers.Delay = emu.V[in.X]
	return emu.next(), nil
}

func (emu *EMU) opLDSTVx(in Instruction) (uint16, error) {
	emu.timers.Sound = emu.V[in.X]
	return emu.next(), nil
}

func (emu *EMU) opADDI(in Instruction) (uint16, error) {
	emu.I += uint16(emu.V[in.X])
	return emu.next(), nil
}

func (emu *EMU) opLDF(in Instruction) (uint16, error) {
	emu.I = FontBase + glyphSize*uint16(emu.V[in.X])
	return emu.next(), nil
}

// BCD of VX, hundreds first
func (emu *EMU) opLDB(in Instruction) (uint16, error) {
	v := emu.V[in.X]
	if int(emu.I)+2 > lastAddress {
		return 0, memoryFault(int(emu.I) + 2)
	}
	emu.memory[emu.I] = v / 100
	emu.memory[emu.I+1] = (v / 10) % 10
	emu.memory[emu.I+2] = v % 10
	return emu.next(), nil
}

func (emu *EMU) opStore(in Instruction) (uint16, error) {
	n := int(in.X) + 1
	if end := int(emu.I) + n - 1; end > lastAddress {
		return 0, memoryFault(end)
	}
	copy(emu.memory[emu.I:], emu.V[:n])
	if emu.quirks.StoreAdvancesIndex {
		emu.I += uint16(n)
	}
	return emu.next(), nil
}

func (emu *EMU) opLoad(in Instruction) (uint16, error) {
	n := int(in.X) + 1
	regs, err := emu.memory.Slice(emu.I, n)
	if err != nil {
		return 0, err
	}
	copy(emu.V[:n], regs)
	if emu.quirks.StoreAdvancesIndex {
		emu.I += uint16(n)
	}
	return emu.next(), nil
}
