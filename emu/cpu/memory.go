package cpu

import "fmt"

const (
	MemorySize     = 4096
	ProgramStart   = 0x200
	MaxProgramSize = MemorySize - ProgramStart
	FontBase       = 0x050
	glyphSize      = 5
	lastAddress    = MemorySize - 1
)

var FontSet = [80]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat address space shared by code and data.
type Memory [MemorySize]uint8

func newMemory() Memory {
	var m Memory
	copy(m[FontBase:], FontSet[:])
	return m
}

func memoryFault(addr int) error {
	return fmt.Errorf("%w: address 0x%04X", ErrMemoryFault, addr)
}

func (m *Memory) Read(addr uint16) (uint8, error) {
	if int(addr) > lastAddress {
		return 0, memoryFault(int(addr))
	}
	return m[addr], nil
}

func (m *Memory) Write(addr uint16, value uint8) error {
	if int(addr) > lastAddress {
		return memoryFault(int(addr))
	}
	m[addr] = value
	return nil
}

// ReadWord combines the bytes at addr and addr+1 big-endian.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 > lastAddress {
		return 0, memoryFault(int(addr) + 1)
	}
	return uint16(m[addr])<<8 | uint16(m[addr+1]), nil
}

// Slice returns a copy of n bytes starting at addr.
func (m *Memory) Slice(addr uint16, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	end := int(addr) + n - 1
	if end > lastAddress {
		return nil, memoryFault(end)
	}
	out := make([]byte, n)
	copy(out, m[addr:end+1])
	return out, nil
}

// Load copies a program to ProgramStart, clearing whatever was there before.
// The font is left untouched.
func (m *Memory) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	for i := ProgramStart; i < MemorySize; i++ {
		m[i] = 0
	}
	copy(m[ProgramStart:], program)
	return nil
}
