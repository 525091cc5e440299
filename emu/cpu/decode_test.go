package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	in := Decode(0xD12F)
	assert.Equal(t, uint16(0xD12F), in.Raw)
	assert.Equal(t, uint8(0xD), in.Op)
	assert.Equal(t, uint8(0x1), in.X)
	assert.Equal(t, uint8(0x2), in.Y)
	assert.Equal(t, uint8(0xF), in.N)
	assert.Equal(t, uint8(0x2F), in.NN)
	assert.Equal(t, uint16(0x12F), in.NNN)
}

func TestDecodeIsPure(t *testing.T) {
	for raw := 0; raw <= 0xFFFF; raw += 0x0101 {
		assert.True(t, Decode(uint16(raw)) == Decode(uint16(raw)))
	}
}

func TestInstructionKey(t *testing.T) {
	tests := []struct {
		raw  uint16
		key  uint16
		name string
	}{
		{0x00E0, 0x00E0, "CLS"},
		{0x00EE, 0x00EE, "RET"},
		{0x0123, 0x0000, "SYS"},
		{0x1ABC, 0x1000, "JP"},
		{0x5AB0, 0x5000, "SE"},
		{0x8AB4, 0x8004, "ADD"},
		{0x8ABE, 0x800E, "SHL"},
		{0xEA9E, 0xE09E, "SKP"},
		{0xFA65, 0xF065, "LD"},
	}

	for _, tt := range tests {
		in := Decode(tt.raw)
		assert.Equal(t, tt.key, in.Key())
		name, ok := Mnemonic(in)
		assert.True(t, ok)
		assert.Equal(t, tt.name, name)
	}

	_, ok := Mnemonic(Decode(0x8AB9))
	assert.False(t, ok)
}
