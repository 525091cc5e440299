// Package disasm turns CHIP-8 opcodes into assembler mnemonics.
package disasm

import (
	"fmt"
	"io"

	"github.com/beanboi7/chyp-8/emu/cpu"
)

// Format returns the assembler text of a single opcode and whether the
// opcode is a known instruction. Unknown opcodes are rendered as data.
func Format(opcode uint16) (string, bool) {
	in := cpu.Decode(opcode)
	name, ok := cpu.Mnemonic(in)
	if !ok {
		return fmt.Sprintf(".word $%04X", opcode), false
	}
	if params := operands(in); params != "" {
		return name + " " + params, true
	}
	return name, true
}

func operands(in cpu.Instruction) string {
	switch in.Key() {
	case 0x00E0, 0x00EE:
		return ""
	case 0x0000, 0x1000, 0x2000:
		return fmt.Sprintf("$%03X", in.NNN)
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return fmt.Sprintf("V%X, $%02X", in.X, in.NN)
	case 0x5000, 0x9000, 0x8000, 0x8001, 0x8002, 0x8003, 0x8004, 0x8005, 0x8006, 0x8007, 0x800E:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", in.NNN)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", in.NNN)
	case 0xD000:
		return fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)
	case 0xE09E, 0xE0A1:
		return fmt.Sprintf("V%X", in.X)
	case 0xF007:
		return fmt.Sprintf("V%X, DT", in.X)
	case 0xF00A:
		return fmt.Sprintf("V%X, K", in.X)
	case 0xF015:
		return fmt.Sprintf("DT, V%X", in.X)
	case 0xF018:
		return fmt.Sprintf("ST, V%X", in.X)
	case 0xF01E:
		return fmt.Sprintf("I, V%X", in.X)
	case 0xF029:
		return fmt.Sprintf("F, V%X", in.X)
	case 0xF033:
		return fmt.Sprintf("B, V%X", in.X)
	case 0xF055:
		return fmt.Sprintf("[I], V%X", in.X)
	case 0xF065:
		return fmt.Sprintf("V%X, [I]", in.X)
	}
	return ""
}

// Write emits a listing of a program loaded at 0x200, one opcode per line.
func Write(w io.Writer, rom []byte) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 program, %d bytes\n.org $%03X\n\n", len(rom), cpu.ProgramStart); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i+1 < len(rom); i += 2 {
		opcode := uint16(rom[i])<<8 | uint16(rom[i+1])
		text, _ := Format(opcode)
		line := "    " + text
		if _, err := fmt.Fprintf(w, "%-32s ; %03X: %04X\n", line, cpu.ProgramStart+i, opcode); err != nil {
			return fmt.Errorf("writing opcode at $%03X: %w", cpu.ProgramStart+i, err)
		}
	}

	if len(rom)%2 == 1 {
		last := len(rom) - 1
		line := fmt.Sprintf("    .byte $%02X", rom[last])
		if _, err := fmt.Fprintf(w, "%-32s ; %03X\n", line, cpu.ProgramStart+last); err != nil {
			return fmt.Errorf("writing trailing byte: %w", err)
		}
	}
	return nil
}
